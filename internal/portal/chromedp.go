// Package portal interacts with the remote result portal: a headless
// credential probe, the response classifier, and a cheap reachability
// ping.
package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/monitor"
)

const (
	rollSelector   = `input[name="Srollno"]`
	dobSelector    = `input[name="Password"]`
	submitSelector = `button[type="submit"]`
)

// Config controls the behavior of the headless probe.
type Config struct {
	// URL is the portal login page.
	URL string
	// Timeout is the ceiling for one full probe. Defaults to 60s.
	Timeout time.Duration
	// SettleDelay is how long to wait after submitting before reading
	// the page back. Defaults to 3s.
	SettleDelay time.Duration
	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
}

// Prober implements monitor.Prober with chromedp and headless Chrome.
// Each probe runs in its own browser context so one subscriber's
// session and cookies cannot leak into another's.
type Prober struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// NewProber creates a headless prober backed by chromedp.
func NewProber(cfg Config, logger *zap.Logger) (*Prober, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("portal url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Prober{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// Close cancels the allocator context and tears down the browser.
func (p *Prober) Close() {
	p.allocCancel()
}

// Probe submits the subscriber's credentials and classifies the page
// that comes back. It never returns an error: anything that goes wrong
// in transit maps to OutcomeNoResult so a transient glitch is not
// confused with a portal outage and cannot abort a sweep.
func (p *Prober) Probe(ctx context.Context, roll, dob string) monitor.Outcome {
	roll = monitor.NormalizeRoll(roll)

	taskCtx, taskCancel := chromedp.NewContext(p.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, p.cfg.Timeout)
	defer cancel()

	// The browser context does not descend from the caller's context,
	// so propagate its cancellation by hand.
	stopWatch := context.AfterFunc(ctx, cancel)
	defer stopWatch()

	html, err := p.submit(taskCtx, roll, dob)
	if err != nil {
		p.logger.Debug("probe failed, treating as no result",
			zap.String("roll", roll),
			zap.Error(err),
		)
		return monitor.NoResult()
	}
	return Classify(html)
}

func (p *Prober) submit(ctx context.Context, roll, dob string) (string, error) {
	var html string
	actions := []chromedp.Action{
		p.networkSetupAction(),
		chromedp.Navigate(p.cfg.URL),
		chromedp.WaitVisible(rollSelector, chromedp.ByQuery),
		chromedp.SendKeys(rollSelector, roll, chromedp.ByQuery),
		chromedp.SendKeys(dobSelector, dob, chromedp.ByQuery),
		chromedp.Click(submitSelector, chromedp.ByQuery),
		chromedp.Sleep(p.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

func (p *Prober) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if p.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(p.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}
