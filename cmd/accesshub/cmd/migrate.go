package cmd

import (
	"accesshub/internal/config"
	"accesshub/portal/db"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "migrate creates or updates the portal schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewConfigManager().LoadConf(cmd); err != nil {
				return err
			}
			gdb, err := db.Connect(&config.Conf.Database)
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			if seed {
				return db.Seed(gdb, config.Conf.AdminRole)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&seed, "seed", "", false, "seed the service, role and department catalogs")
	return cmd
}
