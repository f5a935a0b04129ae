// Package config provides configuration management for the Traska space race.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Configuration validation through the engine
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each file in the configs directory defines the grid size, starting energy,
// fuel range, search radius, an optional map seed and the game messages.
// A config is identified by its file name without extension, so
// "configs/small.yaml" is the config "small".
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When the directory has no classic config the first valid file becomes the
// default, and without any valid file the built-in classic rules are used.
package config
