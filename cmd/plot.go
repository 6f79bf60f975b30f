package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/tabimport/internal/importer"
	"github.com/KaramelBytes/tabimport/internal/plotting"
	"github.com/KaramelBytes/tabimport/internal/utils"
	"github.com/spf13/cobra"
)

var (
	plotFlags  importFlags
	plotOutput string
	plotWidth  float64
	plotHeight float64
)

var plotCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Import a file numerically and draw every Y column against X",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := plotting.FormatFromPath(plotOutput)
		if err != nil {
			return err
		}
		opt, err := plotFlags.options(cmd)
		if err != nil {
			return err
		}
		opt.ConvertToNumeric = true
		res, err := importer.ImportFile(cmd.Context(), args[0], opt)
		if err != nil {
			return err
		}
		for _, w := range res.Stats.Warnings() {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
		}
		err = utils.WriteFileWith(plotOutput, func(w io.Writer) error {
			return plotting.Render(res.Table, w, format, plotWidth, plotHeight)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote plot to %s\n", plotOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotFlags.register(plotCmd)
	// plot always converts; hide the switch
	_ = plotCmd.Flags().MarkHidden("numeric")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "image path; format from extension (png, svg, pdf, jpg, tif, eps)")
	plotCmd.Flags().Float64Var(&plotWidth, "width", plotting.DefaultWidth, "image width in points")
	plotCmd.Flags().Float64Var(&plotHeight, "height", plotting.DefaultHeight, "image height in points")
	_ = plotCmd.MarkFlagRequired("output")
}
