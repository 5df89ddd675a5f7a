/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/wubitab/pkg/api"
	"github.com/ssargent/wubitab/pkg/storage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lookup API server",
	Long: `Serve the imported code table over HTTP.

Routes:
  GET /api/v1/health
  GET /api/v1/codes/{code}
  GET /api/v1/complete?prefix=&limit=
  GET /metrics

Examples:
  wubitab serve
  wubitab serve --port 9000 --api-key mysecretkey`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		apiKey, _ := cmd.Flags().GetString("api-key")

		// Only override config if explicitly set
		if !cmd.Flags().Changed("port") {
			port = cfg.Server.Port
		}
		if !cmd.Flags().Changed("bind") {
			bind = cfg.Server.Bind
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		build, err := s.BuildID()
		if errors.Is(err, storage.ErrNoBuild) {
			return fmt.Errorf("store is empty (run 'wubitab import' first)")
		}
		if err != nil {
			return err
		}
		version, err := s.Version()
		if err != nil {
			return err
		}
		cmd.Printf("Serving version %s, build %s\n", version, build)

		return container.GetServerStarter()(cmd.Context(), s, api.ServerConfig{
			Bind:   bind,
			Port:   port,
			APIKey: apiKey,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "Require this key in the X-API-Key header")
	serveCmd.Flags().StringP("data-dir", "d", "", "Store directory (default from config)")
}
