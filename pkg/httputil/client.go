package httputil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"
)

// DNSRefreshInterval is how often [NewClient] refreshes its cached lookups.
const DNSRefreshInterval = 5 * time.Minute

// NewClient returns an HTTP client whose dialer caches DNS lookups. The
// cache is refreshed in the background until ctx is done.
func NewClient(ctx context.Context, timeout time.Duration) *http.Client {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(DNSRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				resolver.Refresh(true)
			}
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				if err != nil {
					return nil, err
				}
				var lastErr error
				for _, ip := range ips {
					conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						return conn, nil
					}
					lastErr = err
				}
				return nil, fmt.Errorf("dial %s: %w", host, lastErr)
			},
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// ErrBreakerOpen is returned by [Breakers.Call] while a host's breaker is
// tripped.
var ErrBreakerOpen = circuit.ErrBreakerOpen

// Breakers keeps one circuit breaker per host. A breaker trips after
// Threshold consecutive failures and lets a trial request through once its
// backoff elapses.
type Breakers struct {
	Threshold int64
	Initial   time.Duration // first reset backoff
	Max       time.Duration // longest reset backoff

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// NewBreakers creates breakers that trip after threshold consecutive
// failures.
func NewBreakers(threshold int64) *Breakers {
	return &Breakers{
		Threshold: threshold,
		Initial:   30 * time.Second,
		Max:       5 * time.Minute,
		breakers:  make(map[string]*circuit.Breaker),
	}
}

func (b *Breakers) get(host string) *circuit.Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if br, ok := b.breakers[host]; ok {
		return br
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = b.Initial
	expBackoff.MaxInterval = b.Max
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	br := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(b.Threshold),
	})
	b.breakers[host] = br
	return br
}

// Call runs fn under the breaker of rawURL's host. It returns ErrBreakerOpen
// without calling fn while the breaker is tripped.
func (b *Breakers) Call(rawURL string, fn func() error) error {
	br := b.get(hostOf(rawURL))
	if !br.Ready() {
		return ErrBreakerOpen
	}
	return br.Call(fn, 0)
}

// Tripped reports whether the breaker for rawURL's host is open.
func (b *Breakers) Tripped(rawURL string) bool {
	return b.get(hostOf(rawURL)).Tripped()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
