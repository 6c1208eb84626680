package probe

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/root4loot/goutils/log"
)

type chromedpSession struct {
	opts Options
}

// allocatorOptions returns chromedp's defaults with the probe's flags appended.
func (s *chromedpSession) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.WindowSize(s.opts.ViewportWidth, s.opts.ViewportHeight),
	)

	opts = append(opts, chromedp.ExecPath(s.opts.BrowserBin))

	if s.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	return opts
}

func (s *chromedpSession) capture(ctx context.Context, result *Result) error {
	allocator, cancelAllocator := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAllocator()

	cctx, cancelContext := chromedp.NewContext(allocator)
	defer func() {
		cancelContext()
		log.Debugf("Released browser pid %d", result.BrowserPID)
	}()

	// An empty Run starts the browser and opens the first tab.
	if err := chromedp.Run(cctx); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	if c := chromedp.FromContext(cctx); c != nil && c.Browser != nil && c.Browser.Process() != nil {
		result.BrowserPID = c.Browser.Process().Pid
	}

	targetURL := s.opts.TargetURL

	if err := chromedp.Run(cctx, chromedp.EmulateViewport(int64(s.opts.ViewportWidth), int64(s.opts.ViewportHeight))); err != nil {
		return fmt.Errorf("%w: setting viewport: %w", ErrLaunch, err)
	}

	resp, err := chromedp.RunResponse(cctx, chromedp.Navigate(targetURL))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigate, targetURL, err)
	}
	if resp != nil {
		result.StatusCode = int(resp.Status)
	}
	if result.StatusCode >= 400 {
		return fmt.Errorf("%w: %s returned status code %d", ErrNavigate, targetURL, result.StatusCode)
	}

	var buf []byte

	// Quality 100 keeps full page captures in PNG.
	capture := chromedp.CaptureScreenshot(&buf)
	if s.opts.FullPage {
		capture = chromedp.FullScreenshot(&buf, 100)
	}

	if err := chromedp.Run(cctx, chromedp.Location(&result.LandingURL), capture); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCapture, targetURL, err)
	}
	result.Image = buf

	return nil
}
