package config

import (
	"errors"
	"fmt"
	"time"
)

type DbConfig struct {
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	DbName         string        `mapstructure:"db-name"`
	Address        string        `mapstructure:"address"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Username == "" {
		return errors.New("missing db username")
	}
	if cfg.Password == "" {
		return errors.New("missing db password")
	}
	if cfg.Address == "" {
		return errors.New("missing db address")
	}
	if cfg.DbName == "" {
		return errors.New("missing db name")
	}
	if cfg.ConnectTimeout < 0 {
		return fmt.Errorf("connect-timeout must not be negative, got %s", cfg.ConnectTimeout)
	}
	return nil
}
