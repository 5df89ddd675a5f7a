/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ssargent/wubitab/pkg/codec"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Summarize binary tables",
	Long: `Print a summary of each binary table: record counts for radical,
shortcut and fullcode tables, and a full listing of Baidu phone
dictionaries (.def). With --code, radical and shortcut tables print the
records stored under that code instead.

Examples:
  wubitab inspect dat/wmwb86qm.dat
  wubitab inspect --code gg dat/wmwb86jm.dat
  wubitab inspect out/baidu-phone/wmwb86.def`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headerSize, _ := cmd.Flags().GetInt("header-size")
		code, _ := cmd.Flags().GetString("code")
		if headerSize < 0 {
			headerSize = cfg.Header.Size
		}
		out := cmd.OutOrStdout()
		for _, path := range args {
			if isTerminal(out) {
				cmd.Printf("== %s ==\n", path)
			}
			if err := inspectFile(out, path, headerSize, code); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Int("header-size", -1, "Table header size in bytes (default from config)")
	inspectCmd.Flags().String("code", "", "Print the records of this code (radical and shortcut tables)")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// inspectFile picks the table kind from the file name. A non-empty code
// selects the records of one code in radical and shortcut tables.
func inspectFile(w io.Writer, path string, headerSize int, code string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	switch {
	case strings.HasSuffix(path, "zg.dat"):
		table, err := codec.ReadRadicalTable(r)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if code != "" {
			rec, ok := table.Get(code)
			if !ok {
				return fmt.Errorf("%s: radical %s not found", path, code)
			}
			fmt.Fprintf(w, "%s % x\n", rec.Code, rec.Data[:])
			return nil
		}
		fmt.Fprintf(w, "radical table: %d records\n", table.Len())
		if recs := table.Records(); len(recs) > 0 {
			fmt.Fprintf(w, "codes: %s .. %s\n", recs[0].Code, recs[len(recs)-1].Code)
		}
	case strings.HasSuffix(path, "jm.dat"):
		table, err := codec.ReadShortcutTable(r, headerSize)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if code != "" {
			recs := table.Get(code)
			if len(recs) == 0 {
				return fmt.Errorf("%s: shortcut %s not found", path, code)
			}
			for _, rec := range recs {
				fmt.Fprintf(w, "%s %s\n", rec.Code, rec.Value)
			}
			return nil
		}
		byLength := map[int]int{}
		for _, rec := range table.Records() {
			byLength[len(rec.Code)]++
		}
		fmt.Fprintf(w, "shortcut table: %d records, %d codes\n", table.Len(), len(table.Codes()))
		for n := 1; n <= 3; n++ {
			fmt.Fprintf(w, "  level %d: %d\n", n, byLength[n])
		}
	case strings.HasSuffix(path, "qm.dat"):
		table, err := codec.ReadFullcodeTable(r, headerSize)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		byTag := map[codec.Tag]int{}
		for _, rec := range table.Records() {
			byTag[rec.Tag]++
		}
		fmt.Fprintf(w, "fullcode table: %d records\n", table.Len())
		for _, tag := range []codec.Tag{codec.TagNull, codec.TagChar, codec.TagExtendedChar, codec.TagWord, codec.TagVariable, codec.TagSymbol} {
			if byTag[tag] > 0 {
				fmt.Fprintf(w, "  %-13s %d\n", tag, byTag[tag])
			}
		}
	case strings.HasSuffix(path, ".def"):
		file, err := codec.ReadPhoneFile(r)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return file.Dump(w)
	default:
		return fmt.Errorf("%s: unknown table kind", path)
	}
	return nil
}
