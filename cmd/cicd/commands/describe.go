package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cicd/internal/app"
)

func (c *CLI) newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Show the stages, actions and artifacts of the declared pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := c.app.Describe(cmd.Context(), app.DescribeOptions{Stages: stages(cmd)})
			return err
		},
	}
	addStageFlag(cmd)
	return cmd
}
