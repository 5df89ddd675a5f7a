/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/wubitab/pkg/codebook"
	"github.com/ssargent/wubitab/pkg/config"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export merged code tables for other input methods",
	Long: `Build the merged code table of each version from its fullcode and
shortcut CSV files and write it in every supported format: Jidian, QQ,
Xiaoya, Baidu, the Jidian index and the Baidu phone dictionary.

Each format goes into its own folder below the output directory.

Examples:
  wubitab export
  wubitab export --version 86 --out ./release`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := versionIDs(cmd)
		if err != nil {
			return err
		}
		src, _ := cmd.Flags().GetString("src")
		out, _ := cmd.Flags().GetString("out")
		if src == "" {
			src = cfg.SourceDir
		}
		if out == "" {
			out = cfg.OutputDir
		}

		for _, id := range ids {
			version, _ := cfg.Version(id)
			paths, err := exportVersion(cmd, src, out, version)
			if err != nil {
				return err
			}
			for _, p := range paths {
				cmd.Printf("  %s\n", p)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("version", "", "Export only this version (default: every configured version)")
	exportCmd.Flags().String("src", "", "Folder with the CSV files (default from config)")
	exportCmd.Flags().String("out", "", "Output folder (default from config)")
}

func exportVersion(cmd *cobra.Command, src, out string, version config.Version) ([]string, error) {
	fullcodePath, shortcutPath := sourcePaths(src, version.ID)
	book, fullcode, ws, err := codebook.Load(version.ID, fullcodePath, shortcutPath)
	printWarnings(cmd, ws)
	if err != nil {
		return nil, err
	}
	cmd.Printf("Exporting %s (%s): %d codes\n", version.ID, version.Name, book.Len())
	return codebook.ExportAll(out, version.Name, book, fullcode)
}
