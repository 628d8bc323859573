// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cfg holds the tuning flags described in the mount CLI's
// configuration surface, bound to both command-line flags and an optional
// YAML config file via viper.
package cfg

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the flat record of tuning toggles controlling tree shape and
// cache behavior. Populated once at startup and never mutated afterward.
type Config struct {
	CacheTTLSeconds             int  `mapstructure:"cache-ttl-seconds"`
	ExcludeEmptyKinds           bool `mapstructure:"exclude-empty-kinds"`
	ExcludeEmptyResourceGroups  bool `mapstructure:"exclude-empty-resource-groups"`
	ExpandCoreResourceGroup     bool `mapstructure:"expand-core-resource-group"`
	ExpandUndottedResourceGroup bool `mapstructure:"expand-undotted-resource-groups"`
	MaxParallelRequests         int  `mapstructure:"max-parallel-requests"`
}

// Default returns the documented default tuning configuration.
func Default() Config {
	return Config{
		CacheTTLSeconds:             5,
		ExcludeEmptyKinds:           true,
		ExcludeEmptyResourceGroups:  true,
		ExpandCoreResourceGroup:     true,
		ExpandUndottedResourceGroup: true,
		MaxParallelRequests:         20,
	}
}

// CacheTTL is CacheTTLSeconds as a time.Duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// PrefixResourceGroups reports whether either expansion flag is set, which
// is when resource-group directory names must be disambiguated with a
// leading underscore against hoisted kind names.
func (c Config) PrefixResourceGroups() bool {
	return c.ExpandCoreResourceGroup || c.ExpandUndottedResourceGroup
}

// BindFlags registers the tuning flags on the given flag set, with the
// documented defaults, and binds each to its viper key so that either a
// config file or the flag itself can supply the value,
// mirroring the teacher's cfg.BindFlags.
func BindFlags(flags *pflag.FlagSet) error {
	d := Default()

	flags.Int("cache-ttl-seconds", d.CacheTTLSeconds, "TTL in seconds for directory listing and object body caches")
	flags.Bool("exclude-empty-kinds", d.ExcludeEmptyKinds, "prune Kind directories that would list no objects")
	flags.Bool("exclude-empty-resource-groups", d.ExcludeEmptyResourceGroups, "prune resource-group directories that would list no kinds")
	flags.Bool("expand-core-resource-group", d.ExpandCoreResourceGroup, "hoist the core (\"\") resource group's kinds to the namespace level")
	flags.Bool("expand-undotted-resource-groups", d.ExpandUndottedResourceGroup, "hoist kinds from any dotless group name to the namespace level")
	flags.Int("max-parallel-requests", d.MaxParallelRequests, "concurrency cap for per-kind empty-directory pruning")

	for _, key := range []string{
		"cache-ttl-seconds",
		"exclude-empty-kinds",
		"exclude-empty-resource-groups",
		"expand-core-resource-group",
		"expand-undotted-resource-groups",
		"max-parallel-requests",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			return err
		}
	}

	return nil
}
