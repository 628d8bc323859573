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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smpio/kubefs/internal/cfg"
	"github.com/smpio/kubefs/internal/logger"
)

var (
	cfgFile       string
	debugLog      bool
	jsonLog       bool
	bindErr       error
	configFileErr error
	unmarshalErr  error
	mountConfig   cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "kubefs [flags] mount_point",
	Short: "Mount a Kubernetes cluster as a local FUSE filesystem",
	Long: `kubefs exposes a live Kubernetes cluster as a browsable directory
tree: namespace/resource-group/kind/object.yaml, each object readable
and writable as a plain file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(os.Stderr, jsonLog, debugLog)

		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}

		mountPoint, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving mount point: %w", err)
		}

		return mount(cmd.Context(), mountPoint, mountConfig)
	},
}

// Execute runs the root command, printing any error to stderr and exiting
// nonzero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "log FUSE upcalls at debug level")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "emit logs as JSON instead of text")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	mountConfig = cfg.Default()

	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&mountConfig)
		return
	}

	resolved, err := filepath.Abs(cfgFile)
	if err != nil {
		configFileErr = fmt.Errorf("resolving config file path: %w", err)
		return
	}
	viper.SetConfigFile(resolved)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&mountConfig)
}
