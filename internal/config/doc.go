// Package config provides configuration loading, merging, and validation
// facilities for the directory and relay server.
//
// Configuration is environment-only: there is no command-line flag surface
// and no JSON config file. Values are assembled in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//
// The entry point is [GetStructuredConfig].
package config
