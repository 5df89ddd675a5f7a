/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/wubitab/pkg/codebook"
	"github.com/ssargent/wubitab/pkg/storage"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a merged code table into the local store",
	Long: `Build the merged code table of one version and replace the content of
the local store with it. Every import gets a new build id.

Examples:
  wubitab import --version 86
  wubitab import --version 06 --data-dir ./data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("version")
		if _, ok := cfg.Version(id); !ok {
			return fmt.Errorf("unknown version %q", id)
		}
		src, _ := cmd.Flags().GetString("src")
		if src == "" {
			src = cfg.SourceDir
		}

		fullcodePath, shortcutPath := sourcePaths(src, id)
		book, _, ws, err := codebook.Load(id, fullcodePath, shortcutPath)
		printWarnings(cmd, ws)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		build, err := s.Import(book)
		if err != nil {
			return err
		}
		cmd.Printf("Imported %d codes of version %s\n", book.Len(), id)
		cmd.Printf("Build: %s\n", build)
		return nil
	},
}

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <code>...",
	Short: "Look up codes in the local store",
	Long: `Print the values of each code from the local store. With --prefix the
arguments are treated as prefixes and every completion is printed.

Examples:
  wubitab lookup gg
  wubitab lookup --prefix --limit 5 g`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetBool("prefix")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, code := range args {
			if prefix {
				entries, err := s.Complete(code, limit)
				if err != nil {
					return err
				}
				for _, e := range entries {
					cmd.Printf("%s\t%s\n", e.Code, strings.Join(e.Values, " "))
				}
				continue
			}
			values, err := s.Lookup(code)
			if errors.Is(err, codebook.ErrNotFound) {
				cmd.PrintErrf("%s: not found\n", code)
				continue
			}
			if err != nil {
				return err
			}
			cmd.Printf("%s\t%s\n", code, strings.Join(values, " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("version", "", "Version to import (required)")
	importCmd.Flags().String("src", "", "Folder with the CSV files (default from config)")
	if err := importCmd.MarkFlagRequired("version"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().Bool("prefix", false, "Complete the arguments as prefixes")
	lookupCmd.Flags().Int("limit", 20, "Maximum completions per prefix")

	for _, c := range []*cobra.Command{importCmd, lookupCmd} {
		c.Flags().StringP("data-dir", "d", "", "Store directory (default from config)")
	}
}

func openStore(cmd *cobra.Command) (*storage.CodebookStore, error) {
	if err := requireContainer(); err != nil {
		return nil, err
	}
	dir, _ := cmd.Flags().GetString("data-dir")
	if dir == "" {
		dir = cfg.StoreDir
	}
	return container.GetStoreOpener()(dir)
}
