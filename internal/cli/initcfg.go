package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/config"
	"github.com/bwops/metastack/pkg/common"
)

var initCfgForce bool

var initCfgCmd = &cobra.Command{
	Use:   "initcfg",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if common.FileExists(cfgFile) && !initCfgForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", cfgFile)
		}
		if err := config.WriteDefault(cfgFile); err != nil {
			return err
		}
		fmt.Println("wrote", cfgFile)
		return nil
	},
}

func init() {
	initCfgCmd.Flags().BoolVar(&initCfgForce, "force", false, "overwrite an existing file")
}
