package carbon

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

const (
	GramsPerTon       = 1_000_000
	MaxPlatformFeeBps = 2000
)

type OffsetProject struct {
	ID                uint64      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Location          string      `json:"location"`
	ProjectType       string      `json:"project_type"`
	PricePerTon       sdkmath.Int `json:"price_per_ton"`
	TotalCapacity     uint64      `json:"total_capacity"`
	RemainingCapacity uint64      `json:"remaining_capacity"`
	Active            bool        `json:"active"`
	Beneficiary       string      `json:"beneficiary"`
}

type CarbonOffset struct {
	ID             uint64      `json:"id"`
	ProjectID      uint64      `json:"project_id"`
	Payer          string      `json:"payer"`
	EmissionAmount uint64      `json:"emission_amount"` // grams CO2
	OffsetAmount   uint64      `json:"offset_amount"`   // tons
	Cost           sdkmath.Int `json:"cost"`
	Fee            sdkmath.Int `json:"fee"`
	Verified       bool        `json:"verified"`
	VerifiedBy     string      `json:"verified_by,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	TravelDetails  string      `json:"travel_details"`
	OffsetMethod   string      `json:"offset_method"`
}

type ProjectRequest struct {
	Name          string
	Description   string
	Location      string
	ProjectType   string
	PricePerTon   sdkmath.Int
	TotalCapacity uint64
	// Beneficiary receives the base cost of offsets; empty selects the treasury.
	Beneficiary string
}

// ProjectUpdate changes only the fields that are set.
type ProjectUpdate struct {
	PricePerTon   *sdkmath.Int
	Active        *bool
	AddedCapacity uint64
}

type OffsetRequest struct {
	ProjectID      uint64
	EmissionAmount uint64
	TravelDetails  string
	OffsetMethod   string
}

// Quote is the price of offsetting an amount of emissions with one project.
type Quote struct {
	Tons uint64
	Base sdkmath.Int
	Fee  sdkmath.Int
}

// TonsFor rounds grams up to whole tons.
func TonsFor(grams uint64) uint64 {
	tons := grams / GramsPerTon
	if grams%GramsPerTon != 0 {
		tons++
	}
	return tons
}
