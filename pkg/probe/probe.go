package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/root4loot/goutils/log"
)

// Engine selects the browser automation library driving the capture.
type Engine int

const (
	EngineRod Engine = iota
	EngineChromedp
)

func (e Engine) String() string {
	switch e {
	case EngineRod:
		return "rod"
	case EngineChromedp:
		return "chromedp"
	}
	return fmt.Sprintf("engine(%d)", int(e))
}

var (
	ErrLaunch   = errors.New("browser launch failed")
	ErrNavigate = errors.New("navigation failed")
	ErrCapture  = errors.New("capture failed")
	ErrWrite    = errors.New("artifact write failed")
)

// Probe captures a single screenshot of a known page.
type Probe struct {
	Options Options
}

// Result contains the outcome of a probe run.
type Result struct {
	TargetURL  string
	LandingURL string
	StatusCode int
	Image      Image
	Width      int
	Height     int
	Path       string
	BrowserPID int

	// Similarity to the artifact that was overwritten, when one existed and
	// both images were large enough to score.
	PreviousSimilarity int
	HasPreviousScore   bool
}

type Image []byte

// Options contains the options for a probe run.
type Options struct {
	TargetURL      string        // Page to capture
	OutputPath     string        // Artifact path, parent dir must exist
	Headless       bool          // Run the browser without a window
	ViewportWidth  int           // Width of the capture
	ViewportHeight int           // Height of the capture
	FullPage       bool          // Capture the whole document instead of the viewport
	Timeout        time.Duration // Budget for the whole run
	Engine         Engine        // Automation library
	NoSandbox      bool          // Pass --no-sandbox to the browser
	BrowserBin     string        // Browser binary, looked up when empty
}

// NewOptions returns the fixed configuration of the login page probe.
func NewOptions() Options {
	return Options{
		TargetURL:      "http://localhost:5173/login",
		OutputPath:     "jules-scratch/verification/login_page.png",
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		FullPage:       false,
		Timeout:        30 * time.Second,
		Engine:         EngineRod,
	}
}

// NewProbe creates a Probe with the fixed configuration.
func NewProbe() *Probe {
	return &Probe{Options: NewOptions()}
}

// NewProbeWithOptions creates a Probe with the provided options.
func NewProbeWithOptions(options Options) *Probe {
	return &Probe{Options: options}
}

// session is one browser acquisition. capture must release everything it
// spawned before returning, whatever the outcome.
type session interface {
	capture(ctx context.Context, result *Result) error
}

func (p *Probe) session() (session, error) {
	opts := p.Options

	bin, err := browserBin(opts.BrowserBin, launcher.LookPath)
	if err != nil {
		return nil, err
	}
	opts.BrowserBin = bin

	switch opts.Engine {
	case EngineRod:
		return &rodSession{opts: opts}, nil
	case EngineChromedp:
		return &chromedpSession{opts: opts}, nil
	}
	return nil, fmt.Errorf("%w: unknown engine %s", ErrLaunch, opts.Engine)
}

// browserBin returns the configured browser binary, or the one found by
// lookPath. A missing browser is a launch failure, never a download.
func browserBin(bin string, lookPath func() (string, bool)) (string, error) {
	if bin != "" {
		return bin, nil
	}

	found, ok := lookPath()
	if !ok || found == "" {
		return "", fmt.Errorf("%w: no Chrome or Chromium installation found", ErrLaunch)
	}
	return found, nil
}

// Run launches the browser, navigates to the target, captures the page and
// writes the artifact. The browser is released before Run returns. Nothing is
// written unless the capture succeeded.
func (p *Probe) Run(ctx context.Context) (*Result, error) {
	result := &Result{TargetURL: p.Options.TargetURL}

	if p.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Options.Timeout)
		defer cancel()
	}

	s, err := p.session()
	if err != nil {
		return nil, err
	}

	log.Debugf("Capturing %s with %s", p.Options.TargetURL, p.Options.Engine)

	if err := s.capture(ctx, result); err != nil {
		return result, err
	}

	result.Width, result.Height, err = DecodeDimensions(result.Image)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrCapture, p.Options.TargetURL, err)
	}

	if err := result.WriteArtifact(p.Options.OutputPath); err != nil {
		return result, err
	}

	log.Debugf("Captured %s (%d) as %dx%d", result.LandingURL, result.StatusCode, result.Width, result.Height)

	return result, nil
}
