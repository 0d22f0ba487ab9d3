package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cicd/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Synthesize again whenever cicd.yaml or an environment file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			debounce, _ := cmd.Flags().GetDuration("debounce")

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				Synth: app.SynthOptions{
					Stages: stages(cmd),
					Output: out,
					Format: format,
				},
				Debounce: debounce,
			})
		},
	}
	addStageFlag(cmd)
	cmd.Flags().String("out", "", "Assembly directory or blob URL (file://, s3://), overrides cicd.yaml")
	cmd.Flags().StringP("format", "f", "json", "Template format: json or yaml")
	cmd.Flags().Duration("debounce", 0, "Quiet period after a change before synthesizing (default 200ms)")
	return cmd
}
