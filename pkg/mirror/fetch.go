package mirror

import (
	"bytes"
	"compress/bzip2"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"

	"github.com/AnClark/cygpm-prototype/pkg/buildinfo"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
	"github.com/AnClark/cygpm-prototype/pkg/httputil"
)

// DefaultArch is the architecture directory used when none is given.
const DefaultArch = "x86_64"

// Compression selects which manifest file is downloaded from the mirror.
type Compression string

const (
	CompressionNone  Compression = ""    // setup.ini
	CompressionZstd  Compression = "zst" // setup.zst
	CompressionBzip2 Compression = "bz2" // setup.bz2
)

// ParseCompression accepts "", "none", "zst", "zstd", "bz2", and "bzip2".
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "zst", "zstd":
		return CompressionZstd, nil
	case "bz2", "bzip2":
		return CompressionBzip2, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown compression %q (want none, zst, or bz2)", s)
}

// FileName returns the manifest file name on the mirror.
func (c Compression) FileName() string {
	switch c {
	case CompressionZstd:
		return "setup.zst"
	case CompressionBzip2:
		return "setup.bz2"
	}
	return "setup.ini"
}

// ManifestURL returns the location of the manifest for arch on mirror.
func ManifestURL(mirror, arch string, c Compression) (string, error) {
	if arch == "" {
		arch = DefaultArch
	}
	u, err := url.Parse(mirror)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid mirror URL %q", mirror)
	}
	return u.JoinPath(arch, c.FileName()).String(), nil
}

// Fetcher downloads manifests. Cache and Breakers are optional.
type Fetcher struct {
	Client    *http.Client
	Cache     *httputil.Cache
	Breakers  *httputil.Breakers
	Attempts  int
	Delay     time.Duration // first retry delay
	UserAgent string
	Logger    *log.Logger
}

// New creates a fetcher with 3 attempts, a 500ms initial retry delay, and
// breakers that trip after 5 consecutive failures. A nil client means
// http.DefaultClient; a nil logger discards output.
func New(client *http.Client, cache *httputil.Cache, logger *log.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Fetcher{
		Client:    client,
		Cache:     cache,
		Breakers:  httputil.NewBreakers(5),
		Attempts:  3,
		Delay:     500 * time.Millisecond,
		UserAgent: buildinfo.UserAgent(),
		Logger:    logger,
	}
}

// Result is a downloaded manifest.
type Result struct {
	URL         string
	Body        []byte // decompressed manifest text
	FromCache   bool   // served from a fresh cache entry without a request
	Revalidated bool   // a stale cache entry was confirmed by 304 Not Modified
}

// Fetch downloads the manifest for arch from mirror and returns it
// decompressed. A fresh cache entry is returned without contacting the
// mirror; a stale one is revalidated with If-None-Match and
// If-Modified-Since.
func (f *Fetcher) Fetch(ctx context.Context, mirror, arch string, c Compression) (*Result, error) {
	u, err := ManifestURL(mirror, arch, c)
	if err != nil {
		return nil, err
	}

	var stale *httputil.Entry
	if f.Cache != nil {
		e, err := f.Cache.Get(u)
		switch {
		case err == nil && e != nil:
			f.Logger.Debug("manifest cache hit", "url", u, "fetched_at", e.FetchedAt)
			return decoded(&Result{URL: u, Body: e.Body, FromCache: true}, c)
		case stderrors.Is(err, httputil.ErrExpired):
			stale = e
		case err != nil:
			f.Logger.Warn("manifest cache unreadable", "url", u, "err", err)
		}
	}

	entry, notModified, err := f.download(ctx, u, stale)
	if err != nil {
		return nil, err
	}

	if f.Cache != nil {
		var cerr error
		if notModified {
			cerr = f.Cache.Touch(u, entry)
		} else {
			cerr = f.Cache.Set(u, entry)
		}
		if cerr != nil {
			f.Logger.Warn("manifest cache write failed", "url", u, "err", cerr)
		}
	}

	f.Logger.Info("fetched manifest", "url", u, "bytes", len(entry.Body), "not_modified", notModified)
	return decoded(&Result{URL: u, Body: entry.Body, Revalidated: notModified}, c)
}

// download performs the conditional GET with retries. Only transient
// failures count against the host's circuit breaker.
func (f *Fetcher) download(ctx context.Context, u string, stale *httputil.Entry) (*httputil.Entry, bool, error) {
	var (
		entry       *httputil.Entry
		notModified bool
		permanent   error
	)

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			permanent = errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", u)
			return nil
		}
		req.Header.Set("User-Agent", f.UserAgent)
		if stale != nil {
			if stale.ETag != "" {
				req.Header.Set("If-None-Match", stale.ETag)
			}
			if stale.LastModified != "" {
				req.Header.Set("If-Modified-Since", stale.LastModified)
			}
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				permanent = ctx.Err()
				return nil
			}
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return &httputil.RetryableError{Err: fmt.Errorf("read body: %w", err)}
			}
			entry = &httputil.Entry{
				Body:         body,
				URL:          u,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
			}
			return nil
		case resp.StatusCode == http.StatusNotModified && stale != nil:
			entry, notModified = stale, true
			return nil
		case resp.StatusCode == http.StatusNotFound:
			permanent = errors.New(errors.ErrCodeInvalidInput, "no manifest at %s", u)
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &httputil.RetryableError{
				Err:   fmt.Errorf("%s: %s", u, resp.Status),
				After: retryAfter(resp.Header.Get("Retry-After")),
			}
		default:
			permanent = errors.New(errors.ErrCodeNetwork, "%s: unexpected status %s", u, resp.Status)
			return nil
		}
	}

	err := httputil.Retry(ctx, f.Attempts, f.Delay, func() error {
		if f.Breakers == nil {
			return attempt()
		}
		err := f.Breakers.Call(u, attempt)
		if stderrors.Is(err, httputil.ErrBreakerOpen) {
			return errors.Wrap(errors.ErrCodeNetwork, err, "mirror for %s is unavailable", u)
		}
		return err
	})
	switch {
	case permanent != nil:
		return nil, false, permanent
	case errors.GetCode(err) != "":
		return nil, false, err
	case err != nil && ctx.Err() != nil:
		return nil, false, ctx.Err()
	case err != nil:
		return nil, false, errors.Wrap(errors.ErrCodeNetwork, err, "download %s", u)
	}
	return entry, notModified, nil
}

// retryAfter parses a delay-seconds Retry-After value. HTTP dates are
// ignored.
func retryAfter(v string) time.Duration {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func decoded(r *Result, c Compression) (*Result, error) {
	body, err := decompress(r.Body, c)
	if err != nil {
		return nil, err
	}
	r.Body = body
	return r, nil
}

func decompress(body []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "init zstd")
		}
		defer dec.Close()
		out, err := dec.DecodeAll(body, nil)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decompress setup.zst")
		}
		return out, nil
	case CompressionBzip2:
		out, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decompress setup.bz2")
		}
		return out, nil
	}
	return body, nil
}
