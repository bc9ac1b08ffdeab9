package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/civicstate/internal/client/config"
	"github.com/dmitrijs2005/civicstate/internal/client/services"
	"github.com/dmitrijs2005/civicstate/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	app := &App{log: logging.New(&buf, "info", "text")}

	app.setMode(ModeOnline)
	if app.mode() != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.mode())
	}
	if !strings.Contains(buf.String(), "Switched to online mode") {
		t.Fatalf("expected log output on mode change, got %q", buf.String())
	}

	buf.Reset()

	app.setMode(ModeOnline)
	if got := buf.String(); got != "" {
		t.Fatalf("expected no log output when mode doesn't change, got: %q", got)
	}

	app.setMode(ModeOffline)
	if app.mode() != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.mode())
	}
	if buf.String() == "" {
		t.Fatalf("expected log output on mode change to offline, got empty")
	}
}

func TestStartOnlineStatusWatcher_FollowsBackend(t *testing.T) {
	healthy := make(chan bool, 1)
	healthy <- true
	state := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case state = <-healthy:
		default:
		}
		if !state {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	t.Cleanup(srv.Close)

	env := newTestEnvWithURL(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.app.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return env.app.mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	healthy <- false
	require.Eventually(t, func() bool { return env.app.mode() == ModeOffline }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = "error"
	cfg.SyncRetries = 1
	cfg.SyncRetryBase = time.Millisecond
	return cfg
}

func TestNewApp_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabasePath = filepath.Join(t.TempDir(), "civic.db")

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, app.start(context.Background()))
	assert.Equal(t, services.ScreenFirstTime, app.screen())
	require.NoError(t, app.Close())
}

func TestNewApp_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, app.start(context.Background()))
	require.NoError(t, app.Onboard(context.Background()))
	assert.True(t, mr.Exists("civic:"+services.KeyOnboardingCompleted))
	assert.Equal(t, services.ScreenAnonSetup, app.screen())
	require.NoError(t, app.Close())
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = addr

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
}
