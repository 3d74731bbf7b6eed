// Package mirror downloads setup.ini manifests from Cygwin package mirrors.
//
// A mirror serves one manifest per architecture at
// <mirror>/<arch>/setup.ini, with compressed copies next to it. [Fetcher]
// retries transient failures, stops calling a host whose circuit breaker has
// tripped, and keeps downloaded manifests in an on-disk cache:
//
//	cache, _ := httputil.NewCache("", 24*time.Hour)
//	f := mirror.New(httputil.NewClient(ctx, time.Minute), cache, logger)
//	res, err := f.Fetch(ctx, "https://mirrors.kernel.org/sourceware/cygwin", "x86_64", mirror.CompressionZstd)
//	loader.Load(ctx, bytes.NewReader(res.Body), res.URL)
//
// The returned body is always the plain manifest text.
package mirror
