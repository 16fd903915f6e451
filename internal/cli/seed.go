package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/internal/seeder"
)

var seedDrop bool
var seedExport string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the sample BI schema",
	Long:  seedDescription,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()

		s := seeder.New(a.DB())
		if err := s.Run(cmd.Context(), seedDrop); err != nil {
			return err
		}
		if err := s.Verify(); err != nil {
			return err
		}
		fmt.Println("seed complete")

		if seedExport != "" {
			f, err := os.Create(seedExport)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := seeder.ExportSalesCSV(a.DB(), "", f); err != nil {
				return err
			}
			fmt.Println("sales exported to", seedExport)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDrop, "drop", false, "drop and recreate the BI tables first")
	seedCmd.Flags().StringVar(&seedExport, "export", "", "write the sales series to a CSV file after seeding")
}
