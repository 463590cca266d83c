// Package config loads YAML configuration with environment variable
// substitution, default values, and validation.
package config
