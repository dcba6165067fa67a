package main

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/internal/hub"
	"github.com/dmitrymomot/storefront/pkg/config"
	"github.com/dmitrymomot/storefront/pkg/jwt"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

func loadHubConfig() (hub.Config, error) {
	var cfg hub.Config
	if err := config.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newHubCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "hub",
		Short: "Run the notification hub",
		Long: `Run the reference notification hub: the socket endpoint, the REST API
and the health check. Configured with HUB_* variables; Postgres and Redis are
used when PG_CONN_URL and REDIS_URL are set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadHubConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			ln, err := net.Listen("tcp", cfg.HTTP.Addr)
			if err != nil {
				return fmt.Errorf("hub: %w", err)
			}
			defer func() { _ = ln.Close() }()
			log := a.logger(cmd, logger.WithContextExtractors(jwt.LoggerExtractor()))
			return hub.Run(cmd.Context(), cfg, ln, log, func(*hub.Hub) {
				log.Info("Hub started", slog.String("addr", ln.Addr().String()))
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $HUB_ADDR)")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token signed with the hub secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadHubConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return hub.ErrMissingJWTSecret
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}
			svc, err := jwt.NewFromString(cfg.JWTSecret, jwt.WithIssuer(cfg.JWTIssuer), jwt.WithTTL(ttl))
			if err != nil {
				return err
			}
			token, err := svc.Issue(args[0], role)
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role claim, \"admin\" may send to any user")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default $HUB_TOKEN_TTL)")
	return cmd
}
