// Package config handles loading and validating Sparky Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The device cloud access token should be set via SPARKY_ACCESS_TOKEN
//   - The config file should have restricted permissions (0600)
//   - The admin JWT secret must be at least 32 characters when set
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Site.Name)
package config
