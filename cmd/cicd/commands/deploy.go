package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cicd/internal/app"
)

func (c *CLI) newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Synthesize and create or update the pipeline stacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noWait, _ := cmd.Flags().GetBool("no-wait")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			_, err := c.app.Deploy(cmd.Context(), app.DeployOptions{
				Stages:  stages(cmd),
				Wait:    !noWait,
				Timeout: timeout,
			})
			return err
		},
	}
	addStageFlag(cmd)
	cmd.Flags().Bool("no-wait", false, "Return once the stack operation has started")
	cmd.Flags().Duration("timeout", app.DefaultDeployTimeout, "Maximum time to wait for each stack")
	return cmd
}
