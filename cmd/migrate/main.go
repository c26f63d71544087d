package main

import (
	"fmt"
	"os"
	"roombooking/config"
	"roombooking/helper"
	"roombooking/shared/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database maintenance for the room booking service",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cfg := config.Get()

		logger.InitLogger(cfg.Server.Env)
		logger.SetLogLevel(cfg)
	},
	SilenceUsage: true,
}

func actionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return helper.Runner(config.Get(), action)
		},
	}
}

func createAdminCmd() *cobra.Command {
	req := helper.AdminRequest{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote the account that already owns the email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("ADMIN_PASSWORD")
			}

			return helper.CreateAdmin(cmd.Context(), config.Get(), req)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "login password, falls back to ADMIN_PASSWORD")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func main() {
	rootCmd.AddCommand(
		actionCmd(helper.ActionUp, "Apply all pending migrations"),
		actionCmd(helper.ActionDown, "Roll back the latest migration"),
		actionCmd(helper.ActionStepUp, "Apply the next pending migration"),
		actionCmd(helper.ActionDrop, "Roll back every migration"),
		createAdminCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
