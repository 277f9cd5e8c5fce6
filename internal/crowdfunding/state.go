package crowdfunding

import (
	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

type State struct {
	PlatformFeeBps uint32       `json:"platform_fee_bps"`
	FeeCollector   string       `json:"fee_collector"`
	Campaigns      []Campaign   `json:"campaigns"`
	Tiers          []RewardTier `json:"tiers"`
	Pledges        []Pledge     `json:"pledges"`
}

func (m *Market) Export() State {
	s := State{
		PlatformFeeBps: m.platformFeeBps,
		FeeCollector:   m.feeCollector,
		Campaigns:      m.GetCampaigns(),
		Pledges:        make([]Pledge, 0, len(m.pledges)),
	}
	for _, c := range m.campaigns {
		for _, t := range m.tiers[c.ID] {
			s.Tiers = append(s.Tiers, *t)
		}
	}
	for _, p := range m.pledges {
		s.Pledges = append(s.Pledges, *p)
	}
	return s
}

// Import rebuilds a market from s. Ids must be dense and in order, as Export
// produces them.
func Import(l *ledger.Ledger, auth types.Authorizer, escrowAccount string, s State) (*Market, error) {
	m, err := NewMarket(l, auth, escrowAccount, s.FeeCollector, s.PlatformFeeBps)
	if err != nil {
		return nil, err
	}
	for i, c := range s.Campaigns {
		if c.ID != uint64(i)+1 {
			return nil, types.Errorf(types.InvalidState, "campaign id %d out of sequence", c.ID)
		}
		c := c
		m.campaigns = append(m.campaigns, &c)
	}
	for _, t := range s.Tiers {
		if _, err := m.campaign(t.CampaignID); err != nil {
			return nil, err
		}
		if t.ID != uint64(len(m.tiers[t.CampaignID]))+1 {
			return nil, types.Errorf(types.InvalidState, "tier id %d of campaign %d out of sequence", t.ID, t.CampaignID)
		}
		t := t
		m.tiers[t.CampaignID] = append(m.tiers[t.CampaignID], &t)
	}
	for i, p := range s.Pledges {
		if p.ID != uint64(i)+1 {
			return nil, types.Errorf(types.InvalidState, "pledge id %d out of sequence", p.ID)
		}
		if _, err := m.campaign(p.CampaignID); err != nil {
			return nil, err
		}
		p := p
		m.pledges = append(m.pledges, &p)
		m.pledgesByCampaign[p.CampaignID] = append(m.pledgesByCampaign[p.CampaignID], p.ID)
		m.pledgesByBacker[p.Backer] = append(m.pledgesByBacker[p.Backer], p.ID)
	}
	return m, nil
}
