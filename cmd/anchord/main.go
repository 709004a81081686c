// Copyright 2025 OpenAnchor Labs
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
	"log/slog"
	"os"
	"strings"

	"github.com/openanchor-io/anchord/database/plugin"
	"github.com/openanchor-io/anchord/internal/config"
	"github.com/openanchor-io/anchord/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "anchord"

var (
	flagDebug  bool
	flagConfig string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: programName,
		// Running with no subcommand serves
		Run: runServe,
	}
	rootCmd.PersistentFlags().
		BoolVarP(&flagDebug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		StringP("blob", "b", config.DefaultBlobPlugin, "blob store plugin to use, 'list' to show available")
	rootCmd.PersistentFlags().
		StringP("metadata", "m", config.DefaultMetadataPlugin, "metadata store plugin to use, 'list' to show available")
	if err := plugin.PopulateCmdlineOptions(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to add plugin flags: %v\n", err)
		os.Exit(1)
	}
	rootCmd.PersistentPreRunE = prepareConfig
	rootCmd.AddCommand(
		serveCommand(),
		listCommand(),
		versionCommand(),
	)
	return rootCmd
}

// prepareConfig loads the config file and environment, applies command
// line overrides, and stashes the result in the command context
func prepareConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	blobPlugin, _ := flags.GetString("blob")
	metadataPlugin, _ := flags.GetString("metadata")

	// A plugin name of "list" prints the available plugins and exits
	if blobPlugin == "list" || metadataPlugin == "list" {
		if blobPlugin == "list" {
			fmt.Print(pluginList(plugin.PluginTypeBlob))
		}
		if metadataPlugin == "list" {
			fmt.Print(pluginList(plugin.PluginTypeMetadata))
		}
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// Command line flags win over file and environment values
	if blobPlugin != config.DefaultBlobPlugin {
		cfg.BlobPlugin = blobPlugin
	}
	if metadataPlugin != config.DefaultMetadataPlugin {
		cfg.MetadataPlugin = metadataPlugin
	}
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

func pluginList(pluginType plugin.PluginType) string {
	var buf strings.Builder
	switch pluginType {
	case plugin.PluginTypeBlob:
		buf.WriteString("Available blob plugins:\n")
	case plugin.PluginTypeMetadata:
		buf.WriteString("Available metadata plugins:\n")
	}
	for _, p := range plugin.GetPlugins(pluginType) {
		fmt.Fprintf(&buf, "  %s: %s\n", p.Name, p.Description)
	}
	return buf.String()
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all available plugins",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(pluginList(plugin.PluginTypeBlob))
			fmt.Println()
			fmt.Print(pluginList(plugin.PluginTypeMetadata))
		},
	}
}

// setupLogger builds the process-wide JSON logger and pins GOMAXPROCS to
// the container CPU quota
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: flagDebug,
			Level:     level,
		}),
	)
	slog.SetDefault(logger)
	_, err := maxprocs.Set(maxprocs.Logger(func(f string, v ...any) {
		logger.Info(fmt.Sprintf(f, v...), "component", programName)
	}))
	if err != nil {
		// If we hit this, something really wrong happened
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}
