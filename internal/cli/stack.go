package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/internal/stack"
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Control the docker compose services",
	Long:  stackDescription,
}

var stackFollow bool

func init() {
	stackCmd.AddCommand(stackUpCmd, stackDownCmd, stackRestartCmd, stackStatusCmd, stackLogsCmd)
	stackLogsCmd.Flags().BoolVarP(&stackFollow, "follow", "f", false, "follow log output")
}

var stackUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the stack and wait until it answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		sm := stack.NewManager(loadConfig())
		if err := sm.CheckPrereq(); err != nil {
			return err
		}
		if err := sm.Up(cmd.Context()); err != nil {
			return err
		}
		if err := sm.WaitReady(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("stack is up")
		return nil
	},
}

var stackDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		sm := stack.NewManager(loadConfig())
		return sm.Down(cmd.Context())
	},
}

var stackRestartCmd = &cobra.Command{
	Use:   "restart [service]",
	Short: "Restart one service or the whole stack",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := ""
		if len(args) > 0 {
			service = args[0]
		}
		sm := stack.NewManager(loadConfig())
		return sm.Restart(cmd.Context(), service)
	},
}

var stackStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe every service and print a health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		sm := stack.NewManager(loadConfig())
		report := sm.Health(cmd.Context())
		fmt.Println(report.Summary())
		if !report.Healthy() {
			return fmt.Errorf("stack unhealthy")
		}
		return nil
	},
}

var stackLogsCmd = &cobra.Command{
	Use:   "logs [service]",
	Short: "Show service logs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := ""
		if len(args) > 0 {
			service = args[0]
		}
		sm := stack.NewManager(loadConfig())
		return sm.Logs(cmd.Context(), service, stackFollow)
	},
}
