package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/carbonpledge-labs/token-economy-engine/internal/engine"
	"github.com/carbonpledge-labs/token-economy-engine/internal/staking"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

type EngineConfig struct {
	// MaxSupply is in whole tokens and may carry a fraction, e.g. "1000000.5".
	MaxSupply             string        `mapstructure:"max-supply"`
	MinimumStakingPeriod  time.Duration `mapstructure:"minimum-staking-period"`
	EarlyWithdrawalFeeBps uint32        `mapstructure:"early-withdrawal-fee-bps"`
	CrowdfundingFeeBps    uint32        `mapstructure:"crowdfunding-fee-bps"`
	CarbonFeeBps          uint32        `mapstructure:"carbon-fee-bps"`
	FeeCollector          string        `mapstructure:"fee-collector"`
	CarbonFeeCollector    string        `mapstructure:"carbon-fee-collector"`
	ChangeLogRetention    int           `mapstructure:"change-log-retention"`
	RestoreFromSnapshot   bool          `mapstructure:"restore-from-snapshot"`
}

func (cfg *EngineConfig) Validate() error {
	if _, err := cfg.Params(); err != nil {
		return err
	}
	if cfg.ChangeLogRetention < 0 {
		return errors.New("change-log-retention must not be negative")
	}
	return nil
}

// Params converts the config into engine parameters.
func (cfg *EngineConfig) Params() (engine.Params, error) {
	maxSupply, err := types.ParseTokens(cfg.MaxSupply)
	if err != nil {
		return engine.Params{}, fmt.Errorf("invalid max-supply %q: %w", cfg.MaxSupply, err)
	}
	if !maxSupply.IsPositive() {
		return engine.Params{}, errors.New("max-supply must be positive")
	}
	if cfg.MinimumStakingPeriod < 0 {
		return engine.Params{}, errors.New("minimum-staking-period must not be negative")
	}
	if cfg.EarlyWithdrawalFeeBps > types.BpsDenominator {
		return engine.Params{}, fmt.Errorf("early-withdrawal-fee-bps must be at most %d", types.BpsDenominator)
	}
	if cfg.FeeCollector == "" {
		return engine.Params{}, errors.New("fee-collector is required")
	}
	for key, account := range map[string]string{
		"fee-collector":        cfg.FeeCollector,
		"carbon-fee-collector": cfg.CarbonFeeCollector,
	} {
		if types.IsSystemAccount(account) {
			return engine.Params{}, fmt.Errorf("%s cannot be the reserved account %s", key, account)
		}
	}
	return engine.Params{
		MaxSupply: maxSupply,
		Staking: staking.Params{
			MinimumStakingPeriod:  cfg.MinimumStakingPeriod,
			EarlyWithdrawalFeeBps: cfg.EarlyWithdrawalFeeBps,
		},
		CrowdfundingFeeBps: cfg.CrowdfundingFeeBps,
		CarbonFeeBps:       cfg.CarbonFeeBps,
		FeeCollector:       cfg.FeeCollector,
		CarbonFeeCollector: cfg.CarbonFeeCollector,
		ChangeLogRetention: cfg.ChangeLogRetention,
	}, nil
}
