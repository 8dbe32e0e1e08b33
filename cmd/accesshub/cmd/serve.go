package cmd

import (
	"time"

	"accesshub/internal/config"
	"accesshub/pkg/log"
	"accesshub/pkg/redis"
	"accesshub/portal/db"
	portalhttp "accesshub/portal/http"
	"accesshub/portal/metrics"
	"accesshub/portal/service"
	"accesshub/portal/utils"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	Listen   string
	LogLevel string
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "serve starts the portal server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.Listen, "listen", "l", "", "portal listen address")
	fs.StringVarP(&opts.LogLevel, "log-level", "", "", "log level (silent, info, error, warning, verbose)")
	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	if err := config.NewConfigManager().LoadConf(cmd); err != nil {
		return err
	}
	conf := config.Conf

	if opts.LogLevel != "" {
		conf.LogLevel = opts.LogLevel
	}
	log.SetLogLevel(conf.LogLevel)
	utils.SetJWTSecret(conf.Session.Secret)

	gdb, err := db.Connect(&conf.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	var rdb *redis.Client
	if conf.Redis.Enabled {
		rdb, err = redis.NewClient(&redis.ClientConfig{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	listen := conf.Listen
	if opts.Listen != "" {
		listen = opts.Listen
	}

	queues := metrics.NewQueueWorker(gdb, 30*time.Second)
	queues.Start(cmd.Context())
	defer queues.Stop()

	server, err := portalhttp.NewServer(&portalhttp.ServerConfig{
		Listen:    listen,
		DB:        gdb,
		Rdb:       rdb,
		Mail:      service.NewMailSender(&conf.SMTP),
		BaseURL:   conf.BaseURL,
		AdminRole: conf.AdminRole,
		OIDC:      &conf.OIDC,
	})
	if err != nil {
		return err
	}
	return server.Start()
}
