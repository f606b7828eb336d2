// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// Environment variables override file values: PIPELINE_MAX_CHUNK_BYTES sets
// pipeline.max_chunk_bytes, SERVER_PORT sets server.port, and so on.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("podscribe", &cfg, config.WithConfigFile(path))
package config
