package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/pkg/config"
	"github.com/dmitrymomot/storefront/pkg/credentials"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifyclient"
	"github.com/dmitrymomot/storefront/pkg/notifyclient/wstransport"
)

// app carries the settings and collaborators shared by every command.
type app struct {
	server      string
	profile     string
	credentials string
	verbose     bool
	jsonLogs    bool

	dialer notifyclient.Dialer
}

func newApp() *app {
	return &app{dialer: wstransport.Dial}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "notifyctl",
		Short:        "Storefront notification hub and client",
		Long:         `Run the reference notification hub, or log in and work with your notifications from the terminal.`,
		SilenceUsage: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", "", "hub URL (default $NOTIFY_SERVER_URL)")
	flags.StringVar(&a.profile, "profile", "", "credential profile (default $NOTIFY_PROFILE)")
	flags.StringVar(&a.credentials, "credentials", "", "credential database path (default $NOTIFY_CREDENTIALS_PATH)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON instead of console lines")

	root.AddCommand(
		newHubCmd(a),
		newTokenCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWatchCmd(a),
		newListCmd(a),
		newUnreadCmd(a),
		newReadCmd(a),
		newReadAllCmd(a),
		newDeleteCmd(a),
		newSendCmd(a),
	)
	return root
}

func (a *app) logger(cmd *cobra.Command, extra ...logger.Option) *slog.Logger {
	opts := append([]logger.Option{logger.WithOutput(cmd.ErrOrStderr()), logger.WithConsoleFormatter()}, extra...)
	if a.jsonLogs {
		opts = append(opts, logger.WithJSONFormatter())
	}
	if a.verbose {
		opts = append(opts, logger.WithLevel(slog.LevelDebug))
	}
	return logger.New(opts...)
}

func (a *app) clientConfig() (notifyclient.Config, error) {
	var cfg notifyclient.Config
	if err := config.Parse(&cfg); err != nil {
		return cfg, err
	}
	if a.server != "" {
		cfg.ServerURL = a.server
	}
	return cfg, nil
}

func (a *app) openStore() (*credentials.SQLiteStore, error) {
	var cfg credentials.Config
	if err := config.Parse(&cfg); err != nil {
		return nil, err
	}
	if a.credentials != "" {
		cfg.Path = a.credentials
	}
	if a.profile != "" {
		cfg.Profile = a.profile
	}
	return credentials.Open(cfg)
}

// session is a client bound to the stored credential. close releases the
// client and the credential database.
type session struct {
	client *notifyclient.Client
	api    *notifyclient.HTTPAPI
	store  *credentials.SQLiteStore
	cfg    notifyclient.Config
	close  func()
}

func (a *app) newSession(cmd *cobra.Command, opts ...notifyclient.Option) (*session, error) {
	cfg, err := a.clientConfig()
	if err != nil {
		return nil, err
	}
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	log := a.logger(cmd)
	api := notifyclient.NewHTTPAPI(cfg.ServerURL, store, notifyclient.WithRequestTimeout(cfg.RequestTimeout))

	client := notifyclient.New(append([]notifyclient.Option{
		notifyclient.WithConfig(cfg),
		notifyclient.WithLogger(log),
		notifyclient.WithCredentials(store),
		notifyclient.WithAPI(api),
		notifyclient.WithDialer(a.dialer),
	}, opts...)...)

	return &session{
		client: client,
		api:    api,
		store:  store,
		cfg:    cfg,
		close: func() {
			client.Disconnect()
			_ = store.Close()
		},
	}, nil
}
