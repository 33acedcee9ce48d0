// Command visitor-system runs the visitor check-in API and its maintenance tasks.
//
// @title        Visitor System API
// @version      1.0
// @description  Visitor check-in, check-out, history and export.
// @BasePath     /api
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thorsignia/visitor-system/internal/pkg/config"
	"github.com/thorsignia/visitor-system/pkg/logger"
)

const serviceName = "visitor-system"

// app holds what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Visitor check-in and check-out service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.IsDevelopment(),
				Service: serviceName,
			})
			return nil
		},
	}

	rootCmd.AddCommand(
		serveCmd(a),
		migrateCmd(a),
		createAdminCmd(a),
		waitForDBCmd(a),
		exportCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
