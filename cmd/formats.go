package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabimport/internal/importer"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List recognized input extensions and output formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input:  %s\n", strings.Join(importer.FileExtensions(), ", "))
		fmt.Fprintln(out, "export: xlsx, arrow, parquet, json, markdown")
		fmt.Fprintln(out, "plot:   png, svg, pdf, jpg, tif, eps")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
