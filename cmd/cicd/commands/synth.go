package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cicd/internal/app"
)

func (c *CLI) newSynthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the pipeline templates into the cloud assembly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			stdout, _ := cmd.Flags().GetBool("stdout")

			_, err := c.app.Synth(cmd.Context(), app.SynthOptions{
				Stages: stages(cmd),
				Output: out,
				Format: format,
				Stdout: stdout,
			})
			return err
		},
	}
	addStageFlag(cmd)
	cmd.Flags().String("out", "", "Assembly directory or blob URL (file://, s3://), overrides cicd.yaml")
	cmd.Flags().StringP("format", "f", "json", "Template format: json or yaml")
	cmd.Flags().Bool("stdout", false, "Print the templates instead of writing the assembly")
	return cmd
}
