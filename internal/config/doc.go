// Package config provides configuration parsing for ledgerdash projects.
//
// The configuration is stored in ledgerdash.json at the project root. Every
// field is optional; missing fields take the defaults below, which match the
// dashboard's desktop shell expectations (a fixed port it can connect to).
//
// # Configuration File Structure
//
//	{
//	  "mode": "development",
//	  "envPrefix": ["VITE_", "TAURI_"],
//	  "clearScreen": false,
//	  "dev": {
//	    "port": 1420,
//	    "host": "localhost",
//	    "strictPort": true,
//	    "portAttempts": 10,
//	    "hotReload": true,
//	    "ignore": ["*.map"]
//	  },
//	  "static": {
//	    "dir": "dist"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  }
//	}
//
// # Environment Overrides
//
// After the file is read, LEDGERDASH_-prefixed environment variables
// override it: LEDGERDASH_PORT, LEDGERDASH_HOST, LEDGERDASH_STRICT_PORT,
// LEDGERDASH_PORT_ATTEMPTS, LEDGERDASH_HOT_RELOAD, LEDGERDASH_MODE,
// LEDGERDASH_ENV_PREFIX (comma separated) and LEDGERDASH_STATIC_DIR.
// Command line flags override both.
//
// # Usage
//
//	cfg, err := config.Discover(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Dev server:", cfg.DevURL())
package config
