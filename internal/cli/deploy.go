package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/internal/deploy"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Roll the stack out to a remote host",
	Long:  deployDescription,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.Deploy.Host == "" {
			return fmt.Errorf("deploy.host is not configured")
		}
		d := deploy.New(cfg)
		if err := d.Deploy(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("deployment complete")
		return nil
	},
}
