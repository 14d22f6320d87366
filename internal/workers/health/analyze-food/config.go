package analyzefood

import (
	"fmt"
	"time"

	"foodlens/internal/common/validation"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	// InputSchema, when set, is checked against the raw job variables.
	InputSchema *validation.Schema `mapstructure:"-"`
	// EmailReports allows jobs to request an emailed report.
	EmailReports bool `mapstructure:"email_reports"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       3 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
