// Package carbon sells carbon offsets from capacity-limited projects and keeps
// the running totals of emissions tracked and offset.
package carbon

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

type Market struct {
	ledger         *ledger.Ledger
	auth           types.Authorizer
	treasury       string
	feeCollector   string
	platformFeeBps uint32

	projects []*OffsetProject
	offsets  []*CarbonOffset

	offsetsByPayer   map[string][]uint64
	offsetsByProject map[uint64][]uint64

	totalEmissionsTracked uint64 // grams
	totalEmissionsOffset  uint64 // tons
}

func NewMarket(
	l *ledger.Ledger, auth types.Authorizer, treasury, feeCollector string, platformFeeBps uint32,
) (*Market, error) {
	if err := types.ValidateFeeBps(platformFeeBps, MaxPlatformFeeBps); err != nil {
		return nil, err
	}
	if treasury == "" {
		return nil, types.Errorf(types.InvalidArgument, "treasury must be set")
	}
	if err := types.ValidatePayoutAccount(feeCollector, "fee collector"); err != nil {
		return nil, err
	}
	return &Market{
		ledger:           l,
		auth:             auth,
		treasury:         treasury,
		feeCollector:     feeCollector,
		platformFeeBps:   platformFeeBps,
		offsetsByPayer:   make(map[string][]uint64),
		offsetsByProject: make(map[uint64][]uint64),
	}, nil
}

func (m *Market) AddOffsetProject(caller string, req ProjectRequest) (OffsetProject, error) {
	if err := m.requireProjectAdmin(caller); err != nil {
		return OffsetProject{}, err
	}
	if req.PricePerTon.IsNil() || !req.PricePerTon.IsPositive() {
		return OffsetProject{}, types.Errorf(types.InvalidAmount, "price per ton must be positive")
	}
	if req.TotalCapacity == 0 {
		return OffsetProject{}, types.Errorf(types.InvalidAmount, "total capacity must be positive")
	}
	beneficiary := req.Beneficiary
	if beneficiary == "" {
		beneficiary = m.treasury
	} else if err := types.ValidatePayoutAccount(beneficiary, "beneficiary"); err != nil {
		return OffsetProject{}, err
	}

	p := &OffsetProject{
		ID:                uint64(len(m.projects)) + 1,
		Name:              req.Name,
		Description:       req.Description,
		Location:          req.Location,
		ProjectType:       req.ProjectType,
		PricePerTon:       req.PricePerTon,
		TotalCapacity:     req.TotalCapacity,
		RemainingCapacity: req.TotalCapacity,
		Active:            true,
		Beneficiary:       beneficiary,
	}
	m.projects = append(m.projects, p)
	return *p, nil
}

// UpdateOffsetProject reprices, toggles or tops up a project. Adding capacity
// is the only way remaining capacity ever grows.
func (m *Market) UpdateOffsetProject(projectID uint64, caller string, update ProjectUpdate) (OffsetProject, error) {
	if err := m.requireProjectAdmin(caller); err != nil {
		return OffsetProject{}, err
	}
	p, err := m.project(projectID)
	if err != nil {
		return OffsetProject{}, err
	}
	if update.PricePerTon != nil && (update.PricePerTon.IsNil() || !update.PricePerTon.IsPositive()) {
		return OffsetProject{}, types.Errorf(types.InvalidAmount, "price per ton must be positive")
	}
	if update.AddedCapacity > 0 && p.TotalCapacity+update.AddedCapacity < p.TotalCapacity {
		return OffsetProject{}, types.Errorf(types.Overflow, "capacity of project %d overflows", projectID)
	}

	if update.PricePerTon != nil {
		p.PricePerTon = *update.PricePerTon
	}
	if update.Active != nil {
		p.Active = *update.Active
	}
	p.TotalCapacity += update.AddedCapacity
	p.RemainingCapacity += update.AddedCapacity
	return *p, nil
}

// CalculateOffsetCost prices grams of emissions against a project without
// checking availability.
func (m *Market) CalculateOffsetCost(projectID, grams uint64) (Quote, error) {
	p, err := m.project(projectID)
	if err != nil {
		return Quote{}, err
	}
	return m.quote(p, grams)
}

func (m *Market) quote(p *OffsetProject, grams uint64) (Quote, error) {
	if grams == 0 {
		return Quote{}, types.Errorf(types.InvalidAmount, "emission amount must be positive")
	}
	tons := TonsFor(grams)
	base, err := types.SafeMul(sdkmath.NewIntFromUint64(tons), p.PricePerTon)
	if err != nil {
		return Quote{}, err
	}
	fee, err := types.ApplyBps(base, m.platformFeeBps)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Tons: tons, Base: base, Fee: fee}, nil
}

// CreateOffset buys offsets for payer: the base cost goes to the project
// beneficiary and the fee to the fee collector.
func (m *Market) CreateOffset(payer string, req OffsetRequest, now time.Time) (CarbonOffset, error) {
	p, err := m.project(req.ProjectID)
	if err != nil {
		return CarbonOffset{}, err
	}
	if !p.Active {
		return CarbonOffset{}, types.Errorf(types.InvalidState, "project %d is inactive", p.ID)
	}
	q, err := m.quote(p, req.EmissionAmount)
	if err != nil {
		return CarbonOffset{}, err
	}
	if q.Tons > p.RemainingCapacity {
		return CarbonOffset{}, types.Errorf(types.InsufficientCapacity,
			"project %d has %d tons left, %d requested", p.ID, p.RemainingCapacity, q.Tons)
	}
	if m.totalEmissionsTracked+req.EmissionAmount < m.totalEmissionsTracked {
		return CarbonOffset{}, types.Errorf(types.Overflow, "tracked emissions overflow")
	}

	moves := []ledger.Movement{{From: payer, To: p.Beneficiary, Amount: q.Base}}
	if q.Fee.IsPositive() {
		moves = append(moves, ledger.Movement{From: payer, To: m.feeCollector, Amount: q.Fee})
	}
	if err := m.ledger.TransferMany(moves...); err != nil {
		return CarbonOffset{}, err
	}

	o := &CarbonOffset{
		ID:             uint64(len(m.offsets)) + 1,
		ProjectID:      p.ID,
		Payer:          payer,
		EmissionAmount: req.EmissionAmount,
		OffsetAmount:   q.Tons,
		Cost:           q.Base,
		Fee:            q.Fee,
		Timestamp:      now,
		TravelDetails:  req.TravelDetails,
		OffsetMethod:   req.OffsetMethod,
	}
	m.offsets = append(m.offsets, o)
	m.offsetsByPayer[payer] = append(m.offsetsByPayer[payer], o.ID)
	m.offsetsByProject[p.ID] = append(m.offsetsByProject[p.ID], o.ID)

	p.RemainingCapacity -= q.Tons
	m.totalEmissionsTracked += req.EmissionAmount
	m.totalEmissionsOffset += q.Tons
	return *o, nil
}

// VerifyOffset marks an offset verified. It reports whether this call changed
// anything; verifying twice is not an error.
func (m *Market) VerifyOffset(offsetID uint64, verifier string) (CarbonOffset, bool, error) {
	if !types.HasAnyRole(m.auth, verifier, types.RoleOracle, types.RoleAdmin) {
		return CarbonOffset{}, false, types.Errorf(types.NotAuthorized, "%s is not an oracle or admin", verifier)
	}
	o, err := m.offset(offsetID)
	if err != nil {
		return CarbonOffset{}, false, err
	}
	if o.Verified {
		return *o, false, nil
	}
	o.Verified = true
	o.VerifiedBy = verifier
	return *o, true, nil
}

func (m *Market) UpdatePlatformFee(bps uint32, caller string) error {
	if !types.HasAnyRole(m.auth, caller, types.RoleAdmin) {
		return types.Errorf(types.NotAuthorized, "%s is not an admin", caller)
	}
	if err := types.ValidateFeeBps(bps, MaxPlatformFeeBps); err != nil {
		return err
	}
	m.platformFeeBps = bps
	return nil
}

func (m *Market) PlatformFeeBps() uint32        { return m.platformFeeBps }
func (m *Market) TotalEmissionsTracked() uint64 { return m.totalEmissionsTracked }
func (m *Market) TotalEmissionsOffset() uint64  { return m.totalEmissionsOffset }

func (m *Market) GetProject(id uint64) (OffsetProject, error) {
	p, err := m.project(id)
	if err != nil {
		return OffsetProject{}, err
	}
	return *p, nil
}

func (m *Market) GetProjects() []OffsetProject {
	out := make([]OffsetProject, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, *p)
	}
	return out
}

func (m *Market) GetOffset(id uint64) (CarbonOffset, error) {
	o, err := m.offset(id)
	if err != nil {
		return CarbonOffset{}, err
	}
	return *o, nil
}

func (m *Market) GetPayerOffsets(payer string) []CarbonOffset {
	return m.collect(m.offsetsByPayer[payer])
}

func (m *Market) GetProjectOffsets(projectID uint64) ([]CarbonOffset, error) {
	if _, err := m.project(projectID); err != nil {
		return nil, err
	}
	return m.collect(m.offsetsByProject[projectID]), nil
}

func (m *Market) collect(ids []uint64) []CarbonOffset {
	out := make([]CarbonOffset, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.offsets[id-1])
	}
	return out
}

func (m *Market) project(id uint64) (*OffsetProject, error) {
	if id == 0 || id > uint64(len(m.projects)) {
		return nil, types.Errorf(types.NotFound, "offset project %d not found", id)
	}
	return m.projects[id-1], nil
}

func (m *Market) offset(id uint64) (*CarbonOffset, error) {
	if id == 0 || id > uint64(len(m.offsets)) {
		return nil, types.Errorf(types.NotFound, "carbon offset %d not found", id)
	}
	return m.offsets[id-1], nil
}

func (m *Market) requireProjectAdmin(caller string) error {
	if types.HasAnyRole(m.auth, caller, types.RoleAdmin, types.RoleProjectAdmin) {
		return nil
	}
	return types.Errorf(types.NotAuthorized, "%s is not a project admin", caller)
}
