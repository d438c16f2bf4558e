// Package config loads typed configuration structs from the environment.
//
// Values are read with github.com/caarlos0/env/v11 using `env` and
// `envDefault` struct tags. A .env file in the working directory is loaded
// once through github.com/joho/godotenv before the first parse; a missing
// file is not an error.
//
// Each struct type is parsed at most once per process and cached, so packages
// can call Load for their own Config without coordinating:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Reset clears the cache and is intended for tests that change environment
// variables between cases.
package config
