package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/civicstate/internal/client/client"
	"github.com/dmitrijs2005/civicstate/internal/client/config"
	"github.com/dmitrijs2005/civicstate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/civicstate/internal/client/services"
	"github.com/dmitrijs2005/civicstate/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	log    logging.Logger

	api     client.Client
	session *services.Session
	syncer  *services.Syncer
	boot    services.Bootstrapper
	ledger  services.Ledger
	staff   services.StaffService

	closers []io.Closer

	modeMu sync.RWMutex
	Mode   Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the configured local store, builds the REST client and wires
// the services over one shared session.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel, c.LogFormat)

	store, closer, err := openStore(ctx, c)
	if err != nil {
		log.Error(ctx, "error opening local store", "backend", c.StorageBackend, "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout)

	a := newApp(c, log, store, api)
	a.closers = append(a.closers, closer)
	return a, nil
}

func openStore(ctx context.Context, c *config.Config) (kv.Store, io.Closer, error) {
	switch c.StorageBackend {
	case config.BackendRedis:
		rdb, err := kv.NewRedisClient(ctx, kv.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return kv.NewRedisStore(rdb, c.RedisPrefix), rdb, nil
	case config.BackendPostgres:
		db, err := client.InitPostgres(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewPostgresStore(db), db, nil
	default:
		db, err := client.InitDatabase(ctx, c.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewSQLiteStore(db), db, nil
	}
}

func newApp(c *config.Config, log logging.Logger, store kv.Store, api client.Client) *App {
	session := services.NewSession()
	syncer := services.NewSyncer(log, c.SyncRetries, c.SyncRetryBase)

	deps := services.Deps{
		Store:   store,
		API:     api,
		Session: session,
		Syncer:  syncer,
		Logger:  log,
	}
	boot := services.NewBootstrapper(deps)

	return &App{
		config:  c,
		log:     log,
		api:     api,
		session: session,
		syncer:  syncer,
		boot:    boot,
		ledger:  services.NewLedger(deps, c.StreakGraceDays),
		staff:   services.NewStaffService(deps, boot),
		Mode:    ModeOffline,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

func (a *App) mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.Mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), fmt.Sprintf("Switched to %s mode", mode))
	}
}

// start resolves the session and, on the main screen, counts today's visit
// toward the streak.
func (a *App) start(ctx context.Context) error {
	screen, err := a.boot.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if a.staff.Restore(ctx) {
		a.log.Info(ctx, "staff session restored")
	}
	if screen == services.ScreenMain {
		if _, err := a.ledger.UpdateStreak(ctx); err != nil {
			a.log.Warn(ctx, "streak update failed", "error", err)
		}
	}
	return nil
}

// Run bootstraps the session, starts the connectivity watcher and blocks in
// the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.start(ctx); err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

// Close waits for background sync to settle and releases the local store.
func (a *App) Close() error {
	a.syncer.Wait()

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
