package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/root4loot/loginprobe/pkg/probe"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	bin, found := launcher.LookPath()
	if !found {
		t.Skip("no local Chrome or Chromium found")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<form><input name="username"><input name="password" type="password"><button>Sign in</button></form>`))
	}))
	t.Cleanup(srv.Close)

	options := probe.NewOptions()
	options.TargetURL = srv.URL + "/login"
	options.OutputPath = filepath.Join(t.TempDir(), "login_page.png")
	options.BrowserBin = bin
	options.NoSandbox = os.Geteuid() == 0
	options.Timeout = 20 * time.Second

	fn, err := run(context.Background(), probe.NewProbeWithOptions(options))
	require.NoError(t, err)
	require.Equal(t, options.OutputPath, fn)

	info, err := os.Stat(fn)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}

func TestRunReportsLaunchFailure(t *testing.T) {
	options := probe.NewOptions()
	options.BrowserBin = filepath.Join(t.TempDir(), "no-such-browser")
	options.OutputPath = filepath.Join(t.TempDir(), "login_page.png")
	options.Timeout = 10 * time.Second

	fn, err := run(context.Background(), probe.NewProbeWithOptions(options))
	require.ErrorIs(t, err, probe.ErrLaunch)
	require.Empty(t, fn)

	_, statErr := os.Stat(options.OutputPath)
	require.True(t, os.IsNotExist(statErr))
}
