/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/wubitab/pkg/convert"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode binary tables into bitmaps and CSV files",
	Long: `Decode every *zg.dat, *jm.dat and *qm.dat table in the binary folder.

Radical tables become folders of bitmaps, shortcut and fullcode tables
become CSV files. The raw header of each table is kept in a .header
sidecar next to its CSV file. The destination folder is recreated.

Examples:
  wubitab decode
  wubitab decode --src ./dat --dst ./csv --header-size 16`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst, opts, err := convertOptions(cmd, cfg.BinaryDir, cfg.SourceDir)
		if err != nil {
			return err
		}
		ws, err := convert.DecodeFolder(cmd.Context(), src, dst, opts)
		printWarnings(cmd, ws)
		if err != nil {
			return err
		}
		cmd.Printf("Decoded %s into %s\n", src, dst)
		return nil
	},
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode bitmaps and CSV files back into binary tables",
	Long: `Encode the bitmap folders and CSV files produced by decode back into
binary tables. Tables without a .header sidecar get the configured header.

Semantic mismatches, such as a word whose length disagrees with its text
or a character whose decomposition disagrees with its code, are reported
as warnings and do not stop the encode.

Examples:
  wubitab encode
  wubitab encode --src ./csv --dst ./dat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst, opts, err := convertOptions(cmd, cfg.SourceDir, cfg.BinaryDir)
		if err != nil {
			return err
		}
		ws, err := convert.EncodeFolder(cmd.Context(), src, dst, opts)
		printWarnings(cmd, ws)
		if err != nil {
			return err
		}
		cmd.Printf("Encoded %s into %s\n", src, dst)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{decodeCmd, encodeCmd} {
		rootCmd.AddCommand(c)
		c.Flags().String("src", "", "Source folder (default from config)")
		c.Flags().String("dst", "", "Destination folder, recreated (default from config)")
		c.Flags().Int("header-size", -1, "Table header size in bytes (default from config)")
		c.Flags().Int("workers", 0, "Maximum number of tables converted at once (0: one per table)")
	}
}

func convertOptions(cmd *cobra.Command, defaultSrc, defaultDst string) (string, string, convert.Options, error) {
	src, _ := cmd.Flags().GetString("src")
	dst, _ := cmd.Flags().GetString("dst")
	headerSize, _ := cmd.Flags().GetInt("header-size")
	workers, _ := cmd.Flags().GetInt("workers")

	if src == "" {
		src = defaultSrc
	}
	if dst == "" {
		dst = defaultDst
	}
	if headerSize < 0 {
		headerSize = cfg.Header.Size
	}
	header, err := cfg.HeaderBlob()
	if err != nil {
		return "", "", convert.Options{}, err
	}
	return src, dst, convert.Options{HeaderSize: headerSize, Header: header, Workers: workers}, nil
}
