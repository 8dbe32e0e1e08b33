package cmd

import (
	"context"
	"fmt"

	"accesshub/internal/config"
	"accesshub/portal/db"
	"accesshub/portal/repository"
	"accesshub/portal/service"

	"github.com/spf13/cobra"
)

// promote mints a system administrator from the operator's shell. This
// is the bootstrap path: the gated admin API needs an existing admin.
func newPromoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "promote <email>",
		Short:        "promote grants the system administrator role on every service",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewConfigManager().LoadConf(cmd); err != nil {
				return err
			}
			gdb, err := db.Connect(&config.Conf.Database)
			if err != nil {
				return err
			}

			email := args[0]
			err = service.Promote(context.Background(),
				repository.NewUserRepository(gdb),
				repository.NewCatalogRepository(gdb),
				repository.NewPermissionRepository(gdb),
				config.Conf.AdminRole, email)
			if err != nil {
				return err
			}
			fmt.Printf("promoted %s\n", email)
			return nil
		},
	}
	return cmd
}
