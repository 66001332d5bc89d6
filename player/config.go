package player

import (
	"fmt"
	"time"
)

// Config contains player configuration options.
type Config struct {
	// Instruction gate settings
	Countdown     time.Duration `yaml:"countdown" env:"SLGTI_PLAYER_COUNTDOWN" envDefault:"5s"`
	CountdownTick time.Duration `yaml:"countdown_tick" env:"SLGTI_PLAYER_COUNTDOWN_TICK" envDefault:"1s"`

	// Gap policy overrides (zero keeps the mode defaults)
	RepeatGapMin time.Duration `yaml:"repeat_gap_min" env:"SLGTI_PLAYER_REPEAT_GAP_MIN"`
	RepeatGapMax time.Duration `yaml:"repeat_gap_max" env:"SLGTI_PLAYER_REPEAT_GAP_MAX"`

	// Persistence
	ReportProgress bool `yaml:"report_progress" env:"SLGTI_PLAYER_REPORT_PROGRESS" envDefault:"true"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Countdown:      5 * time.Second,
		CountdownTick:  time.Second,
		ReportProgress: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Countdown < 0 {
		return fmt.Errorf("%w: countdown must not be negative, got %v", ErrInvalidConfig, c.Countdown)
	}
	if c.CountdownTick <= 0 {
		return fmt.Errorf("%w: countdown_tick must be positive, got %v", ErrInvalidConfig, c.CountdownTick)
	}
	if c.RepeatGapMin < 0 || c.RepeatGapMax < 0 {
		return fmt.Errorf("%w: gap bounds must not be negative", ErrInvalidConfig)
	}
	if c.RepeatGapMax > 0 && c.RepeatGapMin > c.RepeatGapMax {
		return fmt.Errorf("%w: repeat_gap_min %v exceeds repeat_gap_max %v",
			ErrInvalidConfig, c.RepeatGapMin, c.RepeatGapMax)
	}
	return nil
}
