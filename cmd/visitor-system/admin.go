package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/service"
	"github.com/thorsignia/visitor-system/internal/infrastructure/db/gormstore"
)

func createAdminCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer gormstore.Close(db)

			// Only CreateAdmin is used here, so no session store or limiter is needed.
			admins := service.NewAdminService(gormstore.NewAdminRepository(db), nil, nil, a.cfg.Session.Secret, a.cfg.Session.TTL, a.log)
			admin, err := admins.CreateAdmin(cmd.Context(), email, password)
			switch {
			case errors.Is(err, domain.ErrAdminExists):
				fmt.Fprintf(cmd.OutOrStdout(), "Admin with email %s already exists\n", email)
				return nil
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created admin: %s\n", admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
