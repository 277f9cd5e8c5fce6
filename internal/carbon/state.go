package carbon

import (
	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

type State struct {
	PlatformFeeBps        uint32          `json:"platform_fee_bps"`
	FeeCollector          string          `json:"fee_collector"`
	Projects              []OffsetProject `json:"projects"`
	Offsets               []CarbonOffset  `json:"offsets"`
	TotalEmissionsTracked uint64          `json:"total_emissions_tracked"`
	TotalEmissionsOffset  uint64          `json:"total_emissions_offset"`
}

func (m *Market) Export() State {
	s := State{
		PlatformFeeBps:        m.platformFeeBps,
		FeeCollector:          m.feeCollector,
		Projects:              m.GetProjects(),
		Offsets:               make([]CarbonOffset, 0, len(m.offsets)),
		TotalEmissionsTracked: m.totalEmissionsTracked,
		TotalEmissionsOffset:  m.totalEmissionsOffset,
	}
	for _, o := range m.offsets {
		s.Offsets = append(s.Offsets, *o)
	}
	return s
}

func Import(l *ledger.Ledger, auth types.Authorizer, treasury string, s State) (*Market, error) {
	m, err := NewMarket(l, auth, treasury, s.FeeCollector, s.PlatformFeeBps)
	if err != nil {
		return nil, err
	}
	for i, p := range s.Projects {
		if p.ID != uint64(i)+1 {
			return nil, types.Errorf(types.InvalidState, "offset project id %d out of sequence", p.ID)
		}
		if p.Beneficiary != treasury {
			if err := types.ValidatePayoutAccount(p.Beneficiary, "beneficiary"); err != nil {
				return nil, err
			}
		}
		if p.RemainingCapacity > p.TotalCapacity {
			return nil, types.Errorf(types.InvalidState, "offset project %d has more capacity left than in total", p.ID)
		}
		p := p
		m.projects = append(m.projects, &p)
	}
	for i, o := range s.Offsets {
		if o.ID != uint64(i)+1 {
			return nil, types.Errorf(types.InvalidState, "carbon offset id %d out of sequence", o.ID)
		}
		if _, err := m.project(o.ProjectID); err != nil {
			return nil, err
		}
		o := o
		m.offsets = append(m.offsets, &o)
		m.offsetsByPayer[o.Payer] = append(m.offsetsByPayer[o.Payer], o.ID)
		m.offsetsByProject[o.ProjectID] = append(m.offsetsByProject[o.ProjectID], o.ID)
	}
	m.totalEmissionsTracked = s.TotalEmissionsTracked
	m.totalEmissionsOffset = s.TotalEmissionsOffset
	return m, nil
}
