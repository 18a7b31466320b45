package config

import (
	"errors"
	"fmt"
	"time"
)

// WorldConfig describes the world a server hosts.
// Passed by value into world.New and never mutated afterwards.
type WorldConfig struct {
	Name string `yaml:"name"`

	// Grid spans -Width..Width-1 and -Height..Height-1.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	VisibilityRange int `yaml:"visibility_range"`
	MaxShields      int `yaml:"max_shields"`
	MaxShots        int `yaml:"max_shots"`

	ReloadTime time.Duration `yaml:"reload_time"`
	RepairTime time.Duration `yaml:"repair_time"`

	// Randomly generated obstacles
	Mountains       int   `yaml:"mountains"`
	Lakes           int   `yaml:"lakes"`
	Pits            int   `yaml:"pits"`
	MaxObstacleSize int   `yaml:"max_obstacle_size"`
	Seed            int64 `yaml:"seed"` // 0 = random

	LaunchAttempts int `yaml:"launch_attempts"` // random cells tried before "No more space"
}

// DefaultWorld returns an empty 100x100 world (-50..49 on both axes).
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Name:            "default",
		Width:           50,
		Height:          50,
		VisibilityRange: 10,
		MaxShields:      5,
		MaxShots:        5,
		ReloadTime:      5 * time.Second,
		RepairTime:      5 * time.Second,
		MaxObstacleSize: 5,
		LaunchAttempts:  1000,
	}
}

// Validate rejects configurations the world cannot be built from.
func (c WorldConfig) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.VisibilityRange < 0 {
		errs = append(errs, fmt.Errorf("visibility_range must not be negative, got %d", c.VisibilityRange))
	}
	if c.MaxShields < 0 || c.MaxShots < 0 {
		errs = append(errs, fmt.Errorf("max_shields/max_shots must not be negative"))
	}
	if c.ReloadTime < 0 || c.RepairTime < 0 {
		errs = append(errs, fmt.Errorf("reload_time/repair_time must not be negative"))
	}
	if c.Mountains < 0 || c.Lakes < 0 || c.Pits < 0 {
		errs = append(errs, fmt.Errorf("obstacle counts must not be negative"))
	}
	return errors.Join(errs...)
}
