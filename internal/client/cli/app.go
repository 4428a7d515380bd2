package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	log         logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	mu   sync.Mutex
	Mode Mode
}

// NewApp builds the CLI around an already constructed auth service.
// The App takes ownership of the service and closes it when Run returns.
func NewApp(c *config.Config, as services.AuthService, log logging.Logger) *App {
	return &App{
		config:      c,
		authService: as,
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		Mode:        ModeOffline,
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.authService.IsAuthenticated(ctx)
}

// Run starts the status watcher and the REPL. It blocks until the user exits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.authService.Close(); err != nil {
			a.log.Warn(ctx, "closing auth service", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to taskkeeper (type 'help' for commands)")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, bufio.NewScanner(a.reader))
	cancel()
	wg.Wait()
}

// StartOnlineStatusWatcher probes the server every interval. A successful
// probe also replays pending operations.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refreshMode(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) refreshMode(ctx context.Context) {
	if a.authService.CheckServerAvailability(ctx) {
		a.setMode(ctx, ModeOnline)
	} else {
		a.setMode(ctx, ModeOffline)
	}
}
