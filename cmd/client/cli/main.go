package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/client/cli"
	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/netwatch"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/authstate"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

func main() {
	cfg := config.MustLoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := filex.EnsureParentDir(cfg.DatabasePath)
	if err != nil {
		config.Exitf("prepare database directory: %v", err)
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		config.Exitf("open local database: %v", err)
	}
	defer db.Close()

	remote := client.NewHTTPClient(client.HTTPClientConfig{
		BaseURL: cfg.ServerURL,
		Endpoints: client.Endpoints{
			Health:   cfg.HealthEndpoint,
			Register: cfg.RegisterEndpoint,
			Login:    cfg.LoginEndpoint,
			Users:    cfg.UsersEndpoint,
		},
		Timeout: cfg.RequestTimeout,
	}, nil)

	monitor := newMonitor(ctx, cfg, logger)

	svc := services.NewAuthService(remote, authstate.NewStore(db), monitor, logger)
	cli.NewApp(cfg, svc, logger).Run(ctx)
}

// newMonitor dials the server's host to track network reachability. Without
// a usable address the network is assumed to be up.
func newMonitor(ctx context.Context, cfg *config.Config, logger logging.Logger) netwatch.Monitor {
	addr := cfg.NetworkProbeAddr()
	if addr == "" {
		return netwatch.NewManual(true)
	}

	m := netwatch.NewDialMonitor(addr, cfg.OnlineCheckInterval, logger)
	m.Check(ctx)
	go m.Run(ctx)
	return m
}
