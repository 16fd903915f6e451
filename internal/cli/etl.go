package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/internal/etl"
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Import SharePoint workbooks into PostgreSQL",
	Long:  etlDescription,
}

func init() {
	etlCmd.AddCommand(etlRunCmd)
}

var etlRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured imports once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()

		runner := etl.NewRunner(a.Config(), a.DB())
		run, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("result=%s files=%d/%d rows=%d\n",
			run.Result, run.FilesOk, run.FilesTotal, run.RowsLoaded)
		if run.Result != "success" {
			return fmt.Errorf("import %s: %s", run.Result, run.Message)
		}
		return nil
	},
}
