package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bwops/metastack/internal/adminapi"
	"github.com/bwops/metastack/internal/webserver"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the controller daemon",
	Long:  serverDescription,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		a.StartBackgroundJobs(ctx)

		webserver.Init(a)
		adminapi.Register()

		errCh := make(chan error, 1)
		go func() {
			errCh <- webserver.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			zap.L().Info("shutting down", zap.String("signal", sig.String()))
			return nil
		case err := <-errCh:
			return err
		}
	},
}
