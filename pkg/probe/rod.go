package probe

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/root4loot/goutils/log"
)

type rodSession struct {
	opts Options
}

func (s *rodSession) launcher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(s.opts.Headless).
		Leakless(false).
		Bin(s.opts.BrowserBin)

	if s.opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	return l
}

func (s *rodSession) capture(ctx context.Context, result *Result) error {
	l := s.launcher(ctx)

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	result.BrowserPID = l.PID()
	defer func() {
		l.Kill()
		l.Cleanup()
		log.Debugf("Released browser pid %d", result.BrowserPID)
	}()

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	page = page.Context(ctx)

	viewport := &proto.EmulationSetDeviceMetricsOverride{
		Width:             s.opts.ViewportWidth,
		Height:            s.opts.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}
	if err := page.SetViewport(viewport); err != nil {
		return fmt.Errorf("%w: setting viewport: %w", ErrLaunch, err)
	}

	targetURL := s.opts.TargetURL

	var e proto.NetworkResponseReceived
	wait := page.WaitEvent(&e)

	if err := page.Navigate(targetURL); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigate, targetURL, err)
	}

	wait()

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigate, targetURL, err)
	}

	if e.Response != nil {
		result.StatusCode = e.Response.Status
	}
	if result.StatusCode >= 400 {
		return fmt.Errorf("%w: %s returned status code %d", ErrNavigate, targetURL, result.StatusCode)
	}

	info, err := page.Info()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigate, targetURL, err)
	}
	result.LandingURL = info.URL

	result.Image, err = page.Screenshot(s.opts.FullPage, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCapture, targetURL, err)
	}

	return nil
}
