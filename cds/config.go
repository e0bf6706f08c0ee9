package cds

import "fmt"

// Config holds the protection leg discretisation density.
type Config struct {
	// TimestepsPerYear is the grid density of the protection leg.
	TimestepsPerYear int `mapstructure:"timesteps_per_year" yaml:"timesteps_per_year"`

	// MinTimesteps is the floor on the number of grid intervals, whatever the maturity.
	MinTimesteps int `mapstructure:"min_timesteps" yaml:"min_timesteps"`
}

// DefaultConfig is monthly steps with at least five intervals.
var DefaultConfig = Config{
	TimestepsPerYear: 12,
	MinTimesteps:     5,
}

// Validate rejects densities that cannot produce a grid.
func (c Config) Validate() error {
	if c.TimestepsPerYear < 1 {
		return fmt.Errorf("timesteps_per_year must be at least 1, got %d", c.TimestepsPerYear)
	}
	if c.MinTimesteps < 1 {
		return fmt.Errorf("min_timesteps must be at least 1, got %d", c.MinTimesteps)
	}
	return nil
}
