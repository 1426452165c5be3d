// Package config provides type-safe environment variable loading with
// per-type caching using Go generics.
//
// Configuration is declared as plain structs with caarlos0/env tags:
//
//	type DispatcherConfig struct {
//		SweepEvery int  `env:"DISPATCH_SWEEP_EVERY" envDefault:"64"`
//		Debug      bool `env:"DISPATCH_DEBUG" envDefault:"false"`
//	}
//
//	var cfg DispatcherConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure, for start-up code:
//	config.MustLoad(&cfg)
//
// A .env file in the working directory is loaded into the process environment
// the first time Load runs; a missing file is ignored.
//
// # Caching Behavior
//
// Each configuration type parses the environment exactly once per process;
// subsequent Load calls for the same type return the cached value, so two
// components loading the same config type always observe identical values.
// Distinct types are cached independently.
package config
