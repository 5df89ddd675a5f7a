/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/wubitab/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the wubitab configuration",
	// config init must work without a readable config file
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file. With --base-dir every folder of the
configuration is placed below that directory.

Examples:
  wubitab config init
  wubitab config init --config ./wubitab.yaml --base-dir ./work --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		baseDir, _ := cmd.Flags().GetString("base-dir")
		force, _ := cmd.Flags().GetBool("force")

		created, err := initConfig(configPath, baseDir, force)
		if err != nil {
			return err
		}
		cmd.Printf("✅ Configuration written to %s\n", created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("base-dir", "", "Directory the configured folders are placed in")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}

// initConfig writes the default configuration and returns its path.
func initConfig(configPath, baseDir string, force bool) (string, error) {
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	if config.ConfigExists(configPath) && !force {
		return "", fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
	}
	if _, err := config.BootstrapConfig(configPath, baseDir); err != nil {
		return "", err
	}
	return configPath, nil
}
