// Package config loads YAML configuration with ${VAR} environment
// substitution, default values, and validation.
package config
