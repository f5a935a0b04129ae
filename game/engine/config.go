package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate energy and fuel
	if config.InitialEnergy < MinEnergy || config.InitialEnergy > MaxEnergy {
		return fmt.Errorf("config validation: initial_energy must be between %d and %d, got %d", MinEnergy, MaxEnergy, config.InitialEnergy)
	}
	if config.FuelMin < 0 || config.FuelMin > MaxFuelAmount {
		return fmt.Errorf("config validation: fuel_min must be between 0 and %d, got %d", MaxFuelAmount, config.FuelMin)
	}
	if config.FuelMax < config.FuelMin || config.FuelMax > MaxFuelAmount {
		return fmt.Errorf("config validation: fuel_max must be between fuel_min (%d) and %d, got %d", config.FuelMin, MaxFuelAmount, config.FuelMax)
	}

	// Validate search radius
	if config.SearchRadius < 1 || config.SearchRadius > MaxSearchRadius {
		return fmt.Errorf("config validation: search_radius must be between 1 and %d, got %d", MaxSearchRadius, config.SearchRadius)
	}

	// Validate format strings
	templates := []struct {
		key   string
		value string
		verbs int
	}{
		{"victory", config.Messages.Victory, 1},
		{"moved", config.Messages.Moved, 1},
		{"fuel_collected", config.Messages.FuelCollected, 2},
	}
	for _, tmpl := range templates {
		if tmpl.value != "" && strings.Count(tmpl.value, "%d") != tmpl.verbs {
			return fmt.Errorf("config validation: messages.%s must contain %d %%d verb(s)", tmpl.key, tmpl.verbs)
		}
	}

	return nil
}

// DefaultGameConfig returns the classic rules: a 10x10 grid, 5 starting energy,
// fuel deposits of 2 to 10 and a search radius of 2
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:          "classic",
		Description:   "The original Traska space race on a 10x10 grid",
		GridSize:      DefaultGridSize,
		InitialEnergy: DefaultInitialEnergy,
		FuelMin:       DefaultFuelMin,
		FuelMax:       DefaultFuelMax,
		SearchRadius:  DefaultSearchRadius,
	}
	config.Messages.Welcome = "Welcome aboard! Reach the finish with as few moves as possible."
	config.Messages.Restarted = "Back at the start line."
	config.Messages.Moved = "Energy: %d"
	config.Messages.FuelCollected = "Collected %d fuel! Energy: %d"
	config.Messages.Victory = "Victory in %d moves!"
	config.Messages.InsufficientEnergy = "Not enough energy to move!"
	config.Messages.InvalidTarget = "You can't fly there!"
	return config
}

// ParseGameConfig decodes a configuration in the format implied by the file extension
func ParseGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(configPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}
