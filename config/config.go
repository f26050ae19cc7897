// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config holds the global key-value configuration consulted by the
// checker and the transformation passes. Recognised keys:
//
//	suppress-warnings  comma list of relation names; "*" mutes all
//	magic-transform    comma list of relation names; "*" transforms all
//	engine             evaluation engine selector, owned by the driver
package config

import "strings"

// Config is a mutable string-to-string map with comma-list helpers.
type Config struct {
	values map[string]string
}

// New returns an empty configuration.
func New() *Config {
	return &Config{values: map[string]string{}}
}

// Get returns the raw value for key, or "".
func (c *Config) Get(key string) string {
	return c.values[key]
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Set stores a value for key.
func (c *Config) Set(key, value string) {
	c.values[key] = value
}

// Unset removes key.
func (c *Config) Unset(key string) {
	delete(c.values, key)
}

// List splits the value for key on commas, dropping empty entries.
func (c *Config) List(key string) []string {
	var out []string
	for _, part := range strings.Split(c.values[key], ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Matches reports whether the list under key names name, honouring the "*"
// wildcard.
func (c *Config) Matches(key, name string) bool {
	for _, entry := range c.List(key) {
		if entry == "*" || entry == name {
			return true
		}
	}
	return false
}
