// Package config loads the agent configuration from a YAML file.
package config
