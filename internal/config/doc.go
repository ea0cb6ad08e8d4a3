// Package config provides configuration structures and utilities for seoscan.
// It defines the analysis thresholds, the service settings of the HTTP API
// and the optional YAML file carrying per-project threshold overrides.
package config
