// Package httputil provides the HTTP plumbing used to download manifests
// from package mirrors.
//
// # Overview
//
//   - [NewClient]: an http.Client with a DNS-caching dialer
//   - [Retry]: retries transient failures with exponential backoff
//   - [Breakers]: per-host circuit breakers
//   - [Cache]: on-disk response cache with ETag revalidation
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried. Wrap network errors,
// 429, and 5xx responses; return 4xx responses as they are:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// # Caching
//
// [Cache] keeps the body of each response next to its validators. A stale
// entry is returned together with [ErrExpired] so the caller can send
// If-None-Match and, on 304, keep the body with [Cache.Touch]:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	e, err := cache.Get(url)
//	switch {
//	case err == nil && e != nil:
//	    // fresh
//	case errors.Is(err, httputil.ErrExpired):
//	    // revalidate with e.ETag
//	}
//
// The default cache directory is $XDG_CACHE_HOME/cygpm.
package httputil
