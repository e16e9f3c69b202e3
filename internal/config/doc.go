// Package config provides configuration management for AWO.
//
// Configuration is loaded from environment variables using the env
// package. All values have development defaults except the policy
// file; with no rules loaded the gate denies everything (fail closed).
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
