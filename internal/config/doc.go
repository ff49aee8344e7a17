// Package config handles configuration loading and validation for the
// ingester, the lookup server and the migration tool.
//
// Configuration is read from a YAML file (config.yml by default, or the path
// in AIRPORT_CONFIG), layered over built-in defaults, then overridden by a
// small set of environment variables. Validation uses struct tags.
package config
