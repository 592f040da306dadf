// Package config provides configuration management for the resource
// prediction server.
//
// Configuration is loaded from environment variables using the env package.
// The defaults match a plain deployment: port 5000 and the three artifacts
// in the working directory.
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
