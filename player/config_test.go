package player

import (
	"errors"
	"testing"
	"time"
)

// TestConfigValidate tests the configuration range checks.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "zero countdown disables the delay",
			mutate: func(c *Config) { c.Countdown = 0 },
		},
		{
			name:      "negative countdown",
			mutate:    func(c *Config) { c.Countdown = -time.Second },
			expectErr: true,
		},
		{
			name:      "zero countdown tick",
			mutate:    func(c *Config) { c.CountdownTick = 0 },
			expectErr: true,
		},
		{
			name:      "negative gap bound",
			mutate:    func(c *Config) { c.RepeatGapMin = -time.Second },
			expectErr: true,
		},
		{
			name: "inverted gap window",
			mutate: func(c *Config) {
				c.RepeatGapMin = 2 * time.Second
				c.RepeatGapMax = time.Second
			},
			expectErr: true,
		},
		{
			name: "gap window in order",
			mutate: func(c *Config) {
				c.RepeatGapMin = time.Second
				c.RepeatGapMax = 2 * time.Second
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("Validate() expected error but got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}
