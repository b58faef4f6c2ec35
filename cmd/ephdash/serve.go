package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ghiac/ephdash"
	"github.com/ghiac/ephdash/config"
	"github.com/ghiac/ephdash/engine"
	"github.com/ghiac/ephdash/log"
	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/notify"
	"github.com/ghiac/ephdash/server"
	"github.com/ghiac/ephdash/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Long: `Run the dashboard. Configuration comes from EPHDASH_* environment
variables; the flags below override them.`,
	RunE: runServe,
}

type serveOptions struct {
	port     int
	fakeUser string
	proxy    string
	store    string
}

var serveFlags serveOptions

func init() {
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "HTTP port (overrides EPHDASH_HTTP_PORT)")
	serveCmd.Flags().StringVar(&serveFlags.fakeUser, "auth-fake-user", "", "serve every request as this user (local development)")
	serveCmd.Flags().StringVar(&serveFlags.proxy, "auth-proxy", "", "oauth2 proxy URL used to read the user name")
	serveCmd.Flags().StringVar(&serveFlags.store, "store", "", "env store driver: memory, sqlite or mongodb")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyServeFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Log.SetLevel(cfg.LogLevel)

	log.Log.Infof("=== Ephemeral Env Dashboard %s ===", ephdash.Version())
	log.Log.Infof("Store: %s | Reaper: %v | Chart: %v", cfg.Store.Driver, cfg.Reaper.Enabled, cfg.Features.ChartEnabled)

	allowlist, err := model.LoadAllowlist(cfg.Allowlist, cfg.AllowlistFile)
	if err != nil {
		return err
	}
	log.Log.Infof("Allowlist: %s with %d repos", allowlist.RepoBase, len(allowlist.RepoNames))

	envs, err := openStore(cfg)
	if err != nil {
		return err
	}

	d, err := ephdash.New(allowlist, &ephdash.Options{
		Store:             envs,
		Notifier:          notify.NewSlack(cfg.SlackWebhook),
		Auth:              ephdash.AuthSettings{FakeUser: cfg.Auth.FakeUser, Proxy: cfg.Auth.Proxy},
		DefaultExpiration: cfg.Reaper.DefaultExpiration,
		GatewayHost:       cfg.GatewayHost,
		ChartEnabled:      cfg.Features.ChartEnabled,
	})
	if err != nil {
		envs.Close()
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reaper.Enabled {
		d.StartReaper(ctx, engine.ReaperConfig{
			Interval:          cfg.Reaper.Interval,
			DefaultExpiration: cfg.Reaper.DefaultExpiration,
		})
	}

	return server.NewServer(cfg, d).Start(ctx)
}

func applyServeFlags(cfg *config.Config) {
	if serveFlags.port != 0 {
		cfg.HTTP.Port = serveFlags.port
	}
	if serveFlags.fakeUser != "" {
		cfg.Auth.FakeUser = serveFlags.fakeUser
		cfg.Auth.Proxy = ""
	}
	if serveFlags.proxy != "" {
		cfg.Auth.Proxy = serveFlags.proxy
		cfg.Auth.FakeUser = ""
	}
	if serveFlags.store != "" {
		cfg.Store.Driver = serveFlags.store
	}
}

// openStore builds the env store selected by the configuration
func openStore(cfg *config.Config) (store.EnvStore, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := store.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	case config.DriverMongoDB:
		s, err := store.NewMongoDBStore(store.MongoDBStoreConfig{
			URI:      cfg.Store.MongoDBURI,
			Database: cfg.Store.MongoDBDatabase,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open mongodb store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
