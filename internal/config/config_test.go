package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		SimMode:        "DIRECTED",
		DistanceMode:   "EUCLIDEAN",
		SimRounds:      10,
		SimVehicles:    4,
		TollRate:       "0.05",
		StepKm:         4,
		InitialBalance: "100",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "unknown sim mode", mutate: func(c *Config) { c.SimMode = "TELEPORT" }, wantErr: true},
		{name: "unknown distance mode", mutate: func(c *Config) { c.DistanceMode = "MANHATTAN" }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.TollRate = "-0.05" }, wantErr: true},
		{name: "malformed rate", mutate: func(c *Config) { c.TollRate = "cheap" }, wantErr: true},
		{name: "negative balance", mutate: func(c *Config) { c.InitialBalance = "-1" }, wantErr: true},
		{name: "zero step", mutate: func(c *Config) { c.StepKm = 0 }, wantErr: true},
		{name: "no vehicles", mutate: func(c *Config) { c.SimVehicles = 0 }, wantErr: true},
		{name: "no rounds", mutate: func(c *Config) { c.SimRounds = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOwnerNames(t *testing.T) {
	cfg := validConfig()
	cfg.Owners = "alice, bob"
	cfg.SimVehicles = 4

	names := cfg.OwnerNames()
	assert.Equal(t, []string{"alice", "bob", "owner-3", "owner-4"}, names)
}

func TestOwnerNamesTruncatesToVehicleCount(t *testing.T) {
	cfg := validConfig()
	cfg.Owners = "a,b,c,d,e"
	cfg.SimVehicles = 2

	assert.Equal(t, []string{"a", "b"}, cfg.OwnerNames())
}
