package engine

import (
	"context"
	"strconv"

	"github.com/carbonpledge-labs/token-economy-engine/internal/carbon"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

func (e *Engine) AddOffsetProject(ctx context.Context, caller string, req carbon.ProjectRequest) (carbon.OffsetProject, error) {
	now := e.begin()
	defer e.end()

	p, err := e.carbon.AddOffsetProject(caller, req)
	if err != nil {
		return carbon.OffsetProject{}, failed(ctx, "add offset project", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeOffsetProjectAdded,
		"projectId", id(p.ID), "name", p.Name, "pricePerTon", p.PricePerTon.String(),
		"totalCapacity", id(p.TotalCapacity), "beneficiary", p.Beneficiary))
	return p, nil
}

func (e *Engine) UpdateOffsetProject(ctx context.Context, caller string, projectID uint64, update carbon.ProjectUpdate) (carbon.OffsetProject, error) {
	now := e.begin()
	defer e.end()

	p, err := e.carbon.UpdateOffsetProject(projectID, caller, update)
	if err != nil {
		return carbon.OffsetProject{}, failed(ctx, "update offset project", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeOffsetProjectUpdated,
		"projectId", id(p.ID), "pricePerTon", p.PricePerTon.String(), "active", strconv.FormatBool(p.Active),
		"totalCapacity", id(p.TotalCapacity), "remainingCapacity", id(p.RemainingCapacity)))
	return p, nil
}

func (e *Engine) CalculateOffsetCost(projectID, grams uint64) (carbon.Quote, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carbon.CalculateOffsetCost(projectID, grams)
}

func (e *Engine) CreateOffset(ctx context.Context, caller string, req carbon.OffsetRequest) (carbon.CarbonOffset, error) {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller); err != nil {
		return carbon.CarbonOffset{}, failed(ctx, "create offset", err)
	}
	o, err := e.carbon.CreateOffset(caller, req, now)
	if err != nil {
		return carbon.CarbonOffset{}, failed(ctx, "create offset", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeOffsetCreated,
		"offsetId", id(o.ID), "projectId", id(o.ProjectID), "payer", o.Payer,
		"emissionGrams", id(o.EmissionAmount), "offsetTons", id(o.OffsetAmount),
		"cost", o.Cost.String(), "fee", o.Fee.String()))
	return o, nil
}

// VerifyOffset is idempotent: only the first verification is recorded.
func (e *Engine) VerifyOffset(ctx context.Context, caller string, offsetID uint64) (carbon.CarbonOffset, error) {
	now := e.begin()
	defer e.end()

	o, changed, err := e.carbon.VerifyOffset(offsetID, caller)
	if err != nil {
		return carbon.CarbonOffset{}, failed(ctx, "verify offset", err)
	}
	if changed {
		e.record(ctx, caller, now, newChange(types.ChangeOffsetVerified,
			"offsetId", id(o.ID), "verifier", caller))
	}
	return o, nil
}

func (e *Engine) UpdateOffsetPlatformFee(ctx context.Context, caller string, bps uint32) error {
	now := e.begin()
	defer e.end()

	if err := e.carbon.UpdatePlatformFee(bps, caller); err != nil {
		return failed(ctx, "update offset platform fee", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeOffsetPlatformFeeUpdated, "bps", strconv.FormatUint(uint64(bps), 10)))
	return nil
}

func (e *Engine) GetOffsetProject(projectID uint64) (carbon.OffsetProject, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carbon.GetProject(projectID)
}

func (e *Engine) GetOffsetProjects() []carbon.OffsetProject {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carbon.GetProjects()
}

func (e *Engine) GetOffset(offsetID uint64) (carbon.CarbonOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carbon.GetOffset(offsetID)
}

func (e *Engine) GetPayerOffsets(payer string) []carbon.CarbonOffset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carbon.GetPayerOffsets(payer)
}

func (e *Engine) GetProjectOffsets(projectID uint64) ([]carbon.CarbonOffset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.carbon.GetProjectOffsets(projectID)
}
