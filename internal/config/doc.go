// Package config handles configuration loading for fitcheck.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. Anything the file omits keeps the value from Default, so an
// empty file is a valid configuration.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from FITCHECK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/fitcheck/studio.yaml
//  3. ~/.config/fitcheck/studio.yaml
//
// The database defaults to studio.db under $XDG_DATA_HOME/fitcheck or
// ~/.local/share/fitcheck.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	generation:
//	  api_key: "${FITCHECK_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	generation:
//	  timeout: "90s"
//
// # Configuration Sections
//
// Storage:
//
//	storage:
//	  driver: sqlite            # sqlite | memory | s3
//	  path: ~/.local/share/fitcheck/studio.db
//	  s3:
//	    bucket: fitcheck-assets
//	    region: us-east-1
//	    endpoint: http://localhost:9000   # MinIO
//	    path_style: true
//	    prefix: studio/
//
// With the s3 driver, assets go to the bucket and the wardrobe library stays
// in the SQLite file at storage.path.
//
// Registry:
//
//	registry:
//	  max_transient: 10
//
// Generation:
//
//	generation:
//	  endpoint: http://localhost:8787/generate
//	  api_key: "${FITCHECK_API_KEY}"
//	  model: gemini-2.5-flash-image
//	  timeout: "90s"
//
// Catalog, logging and metrics:
//
//	catalog:
//	  path: ./wardrobe.toml
//	logging:
//	  level: info      # debug | info | warn | error
//	  format: text     # text | json
//	metrics:
//	  enabled: false
//	  addr: 127.0.0.1:9464
//	  path: /metrics
package config
