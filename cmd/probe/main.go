package main

import (
	"context"

	"github.com/root4loot/goutils/log"
	"github.com/root4loot/loginprobe/pkg/probe"
)

func init() {
	log.Init("probe")
	log.SetLevel(log.InfoLevel)
}

func main() {
	fn, err := run(context.Background(), probe.NewProbe())
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}

	log.Infof("Screenshot saved to %s", fn)
}

// run performs one probe pass. The browser has been released by the time it
// returns, so the caller may exit immediately on error.
func run(ctx context.Context, p *probe.Probe) (string, error) {
	log.Debugf("Verifying %s", p.Options.TargetURL)

	result, err := p.Run(ctx)
	if err != nil {
		return "", err
	}

	if result.HasPreviousScore {
		log.Infof("Similarity to previous capture: %d", result.PreviousSimilarity)
	}

	return result.Path, nil
}
