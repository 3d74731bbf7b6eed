package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Ingest hooks
	i := NoopIngestHooks{}
	i.OnLoadStart(ctx, "setup.ini")
	i.OnAnomaly(ctx, "orphan-prev", 1)
	i.OnLoadComplete(ctx, "setup.ini", 10000, time.Second, nil)
	i.OnDependencyMapComplete(ctx, 42000, time.Second, errors.New("boom"))

	// Resolve hooks
	r := NoopResolveHooks{}
	r.OnResolveStart(ctx, "bash", "")
	r.OnResolveComplete(ctx, "bash", 12, time.Millisecond, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/packages/bash")
	h.OnResponse(ctx, "GET", "/packages/bash", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Ingest().(NoopIngestHooks); !ok {
		t.Error("Ingest() should return NoopIngestHooks by default")
	}
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Resolve() should return NoopResolveHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customIngest := &testIngestHooks{}
	SetIngestHooks(customIngest)
	if Ingest() != customIngest {
		t.Error("SetIngestHooks should set custom hooks")
	}

	customResolve := &testResolveHooks{}
	SetResolveHooks(customResolve)
	if Resolve() != customResolve {
		t.Error("SetResolveHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Ingest().(NoopIngestHooks); !ok {
		t.Error("Reset() should restore NoopIngestHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testIngestHooks{}
	SetIngestHooks(custom)

	// Setting nil should be ignored
	SetIngestHooks(nil)

	if Ingest() != custom {
		t.Error("SetIngestHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testIngestHooks struct{ NoopIngestHooks }
type testResolveHooks struct{ NoopResolveHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
