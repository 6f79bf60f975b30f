package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/tabimport/internal/analysis"
	"github.com/KaramelBytes/tabimport/internal/export"
	"github.com/KaramelBytes/tabimport/internal/importer"
	"github.com/KaramelBytes/tabimport/internal/table"
	"github.com/KaramelBytes/tabimport/internal/utils"
	"github.com/spf13/cobra"
)

// importFlags are the reader settings shared by import and plot.
type importFlags struct {
	separator  string
	whitespace string
	ignore     int
	header     bool
	numeric    bool
	locale     string
	name       string
	workers    int
}

func (f *importFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.separator, "separator", "s", "", "field separator: literal string or tab|space|comma|semicolon (default from config)")
	c.Flags().StringVar(&f.whitespace, "whitespace", "", "line cleanup before splitting: none|simplify|trim")
	c.Flags().IntVar(&f.ignore, "ignore-lines", 0, "number of leading lines to skip")
	c.Flags().BoolVar(&f.header, "header", true, "first row names the columns")
	c.Flags().BoolVar(&f.numeric, "numeric", false, "convert every column to numbers")
	c.Flags().StringVar(&f.locale, "locale", "", "numeric locale, e.g. C, en-US, de_DE")
	c.Flags().StringVar(&f.name, "name", "", "table name (default: file name)")
	c.Flags().IntVar(&f.workers, "workers", 0, "parallel column conversions (default from config)")
}

// options applies the flags the user set on top of the configured defaults.
func (f *importFlags) options(c *cobra.Command) (importer.Options, error) {
	opt, err := baseOptions()
	if err != nil {
		return opt, err
	}
	fl := c.Flags()
	if fl.Changed("separator") {
		opt.Separator = importer.ParseSeparator(f.separator)
	}
	if fl.Changed("whitespace") {
		ws, err := importer.ParseWhitespace(f.whitespace)
		if err != nil {
			return opt, err
		}
		opt.Whitespace = ws
	}
	if fl.Changed("ignore-lines") {
		opt.IgnoredLines = f.ignore
	}
	if fl.Changed("header") {
		opt.FirstRowNamesColumns = f.header
	}
	if fl.Changed("numeric") {
		opt.ConvertToNumeric = f.numeric
	}
	if fl.Changed("locale") {
		opt.NumericLocale = f.locale
	}
	if fl.Changed("workers") {
		opt.Workers = f.workers
	}
	opt.TableName = f.name
	return opt, nil
}

var (
	impFlags      importFlags
	impOutputPath string
	impXLSX       string
	impArrow      string
	impParquet    string
	impJSON       string
	impSampleRows int
	impQuiet      bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a delimited text file and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := impFlags.options(cmd)
		if err != nil {
			return err
		}
		stderr := cmd.ErrOrStderr()
		if !importer.CanImport(path) {
			fmt.Fprintf(stderr, "⚠ Warning: %s is not a .txt, .csv or .dat file; importing anyway\n", path)
		}
		res, err := importer.ImportFile(cmd.Context(), path, opt)
		if err != nil {
			if res == nil {
				return err
			}
			fmt.Fprintf(stderr, "⚠ Warning: %v; keeping %d row(s) read before the failure\n", err, res.Table.NumRows())
		}
		warnings := res.Stats.Warnings()
		for _, w := range warnings {
			fmt.Fprintf(stderr, "⚠ %s\n", w)
		}

		t := res.Table
		outputs := []struct {
			path  string
			label string
			write func(io.Writer, *table.Table) error
		}{
			{impXLSX, "XLSX", export.WriteXLSX},
			{impArrow, "Arrow", export.WriteArrow},
			{impParquet, "Parquet", export.WriteParquet},
			{impJSON, "JSON", export.WriteJSON},
		}
		for _, o := range outputs {
			if o.path == "" {
				continue
			}
			err := utils.WriteFileWith(o.path, func(w io.Writer) error { return o.write(w, t) })
			if errors.Is(err, export.ErrNoColumns) {
				fmt.Fprintf(stderr, "⚠ Skipped %s output: %v\n", o.label, err)
				continue
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", o.label, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", o.label, o.path)
		}

		if impQuiet && impOutputPath == "" {
			return nil
		}
		aopt := analysis.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			aopt.SampleRows = impSampleRows
		}
		md := analysis.Summarize(t, aopt, warnings...).Markdown()
		if impOutputPath != "" {
			if err := utils.SafeWriteFile(impOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", impOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	impFlags.register(importCmd)
	importCmd.Flags().StringVarP(&impOutputPath, "output", "o", "", "write the Markdown summary to this path instead of stdout")
	importCmd.Flags().StringVar(&impXLSX, "xlsx", "", "also write the table as an XLSX workbook")
	importCmd.Flags().StringVar(&impArrow, "arrow", "", "also write the table as an Arrow IPC file")
	importCmd.Flags().StringVar(&impParquet, "parquet", "", "also write the table as a Parquet file")
	importCmd.Flags().StringVar(&impJSON, "json", "", "also write the table as JSON")
	importCmd.Flags().IntVar(&impSampleRows, "sample-rows", 5, "number of leading rows shown in the summary")
	importCmd.Flags().BoolVarP(&impQuiet, "quiet", "q", false, "do not print the summary")
}
