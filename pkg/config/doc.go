// Package config loads typed configuration from the environment.
//
// Each package declares a Config struct with caarlos0/env tags. The service
// nests them into one struct and calls Load once at startup, after LoadEnv
// has merged any .env files into the environment.
package config
