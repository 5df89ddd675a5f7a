/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"

	"github.com/ssargent/wubitab/pkg/config"
	"github.com/ssargent/wubitab/pkg/convert"
	"github.com/ssargent/wubitab/pkg/di"
)

var (
	container *di.Container
	cfg       *config.Config
)

// traced lists the trace selectors of the library packages.
var traced = []string{"wubitab.codec", "wubitab.convert", "wubitab.codebook"}

// SetContainer injects the dependency container used by the commands.
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wubitab",
	Short: "Wubi input method table tools",
	Long: `wubitab decodes the binary tables of a Wubi input method into editable
bitmaps and CSV files, encodes them back, and exports the merged code
table for other input methods.

The merged table can also be imported into a local store and served
over HTTP for lookups and prefix completion.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.config/wubitab/config.yaml)")
}

// loadConfig reads the config file named by --config, or the default one
// when it exists, and applies its logging level.
func loadConfig(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	switch {
	case config.ConfigExists(configPath):
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	case explicit:
		return fmt.Errorf("config file %s does not exist (run 'wubitab config init')", configPath)
	default:
		cfg = config.DefaultConfig()
	}

	setTraceLevel(cfg.Logging.Level)
	return nil
}

func setTraceLevel(level string) {
	if level == "" {
		level = "error"
	}
	for _, key := range traced {
		tracing.Select(key).SetTraceLevel(tracing.TraceLevelFromString(level))
	}
}

func requireContainer() error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}
	return nil
}

// versionIDs returns the version given by --version or every configured one.
func versionIDs(cmd *cobra.Command) ([]string, error) {
	id, _ := cmd.Flags().GetString("version")
	if id != "" {
		if _, ok := cfg.Version(id); !ok {
			return nil, fmt.Errorf("unknown version %q", id)
		}
		return []string{id}, nil
	}
	ids := make([]string, len(cfg.Versions))
	for i, v := range cfg.Versions {
		ids[i] = v.ID
	}
	return ids, nil
}

// sourcePaths returns the fullcode and shortcut CSV files of a version.
func sourcePaths(dir, version string) (string, string) {
	base := filepath.Join(dir, "wmwb"+version)
	return base + "qm.dat.txt", base + "jm.dat.txt"
}

func printWarnings(cmd *cobra.Command, ws []convert.Warning) {
	for _, w := range ws {
		cmd.PrintErrf("warning: %s\n", w)
	}
	if len(ws) > 0 {
		cmd.PrintErrf("%d warnings\n", len(ws))
	}
}
