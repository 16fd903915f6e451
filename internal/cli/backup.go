package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/internal/backup"
	"github.com/bwops/metastack/internal/domain"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
	Long:  backupDescription,
}

var sqlDumpOut string

func init() {
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd, backupSweepCmd, backupDumpCmd)
	backupDumpCmd.Flags().StringVarP(&sqlDumpOut, "out", "o", "", "output file (default stdout)")
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a compressed pg_dump backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		svc := backup.NewService(a.Config(), a.DB())
		rec, err := svc.Create(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("backup written: %s (%d bytes)\n", rec.Path, rec.SizeBytes)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		svc := backup.NewService(a.Config(), a.DB())
		recs, err := svc.List()
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Printf("%s  %10d  %s  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.SizeBytes, r.Result, r.Filename)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore a backup archive via psql",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		svc := backup.NewService(a.Config(), a.DB())
		if err := svc.Restore(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("restore complete")
		return nil
	},
}

var backupSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete backups beyond the retention count",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		svc := backup.NewService(a.Config(), a.DB())
		return svc.Sweep()
	},
}

var backupDumpCmd = &cobra.Command{
	Use:   "sqldump",
	Short: "Write a logical SQL dump of the BI tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()

		out := os.Stdout
		if sqlDumpOut != "" {
			f, err := os.Create(sqlDumpOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return backup.DumpSQL(a.DB(), domain.BiTableNames, out)
	},
}
