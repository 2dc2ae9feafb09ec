// Package config loads typed configuration structs from environment
// variables, optionally seeded from a .env file during development.
//
// Each configuration type is parsed once per process and cached, so any
// package may call Load for its own Config without coordination:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
