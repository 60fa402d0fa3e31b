package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// PingConfig controls the reachability check.
type PingConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Pinger performs a plain GET against the portal landing page. It is
// much cheaper than a full headless probe and lets the health check
// separate "portal unreachable" from "portal up, database down".
type Pinger struct {
	cfg           PingConfig
	baseCollector *colly.Collector
}

// NewPinger builds a Pinger around a Colly collector.
func NewPinger(cfg PingConfig) (*Pinger, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("portal url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	return &Pinger{
		cfg:           cfg,
		baseCollector: c,
	}, nil
}

// Ping visits the portal landing page and returns an error if it cannot
// be reached before the timeout or the caller's context ends.
func (p *Pinger) Ping(ctx context.Context) error {
	collector := p.baseCollector.Clone()
	collector.SetRequestTimeout(p.cfg.Timeout)

	var visitErr error
	collector.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(p.cfg.URL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("portal ping canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("portal unreachable: %w", err)
		}
		if visitErr != nil {
			return fmt.Errorf("portal unreachable: %w", visitErr)
		}
		return nil
	}
}
