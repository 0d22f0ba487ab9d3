package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cicd/internal/app"
)

func (c *CLI) newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the deployed stacks with the synthesized templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fail, _ := cmd.Flags().GetBool("fail")

			_, err := c.app.Diff(cmd.Context(), app.DiffOptions{
				Stages: stages(cmd),
				Fail:   fail,
			})
			return err
		},
	}
	addStageFlag(cmd)
	cmd.Flags().Bool("fail", false, "Exit with status 2 when any stack differs")
	return cmd
}
