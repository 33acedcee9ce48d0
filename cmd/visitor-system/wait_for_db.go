package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thorsignia/visitor-system/internal/infrastructure/db/gormstore"
)

func waitForDBCmd(a *app) *cobra.Command {
	var (
		retries int
		delay   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait-for-db",
		Short: "Block until the database accepts connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Waiting for database...")
			db, err := gormstore.WaitForDB(cmd.Context(), storeConfig(a.cfg), retries, delay, a.log)
			if err != nil {
				return err
			}
			defer gormstore.Close(db)

			fmt.Fprintln(cmd.OutOrStdout(), "Database available!")
			return nil
		},
	}

	cmd.Flags().IntVar(&retries, "max-retries", 10, "Maximum connection attempts")
	cmd.Flags().DurationVar(&delay, "initial-delay", time.Second, "Delay before the second attempt; doubles each retry up to 1m")
	return cmd
}
