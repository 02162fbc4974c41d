// Package config provides configuration loading, merging, and validation
// facilities for dashkeys.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. JSON or YAML config file
//  3. Environment variables
//  4. Command-line flags
//
// The main entry point is [GetStructuredConfig].
package config
