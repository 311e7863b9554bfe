// Package config handles loading and validating the desktop shell configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with WEBUI_DESKTOP_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - MQTT credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("WEBUI_DESKTOP_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Backend.Command)
package config
