package cmd

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tierdev/tier-cli/internal/auth"
	"github.com/tierdev/tier-cli/internal/testutil"
)

func TestMCPBackendConcurrentCalls(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	ms.HandleJSON("GET", "/v1/pull", 200, map[string]interface{}{"plans": map[string]interface{}{}})
	ms.HandleJSON("GET", "/v1/whoami", 200, map[string]string{"org": "org:acme"})

	h := newHarness(t, "TIER_API_URL="+ms.URL())
	if err := h.store.Put(auth.Key{APIHost: hostOf(t, ms.URL()), ProjectRoot: h.project}, auth.Record{Token: "tok"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var opens int32
	h.app.OpenStore = func(string, func(string) string) (*auth.Store, error) {
		atomic.AddInt32(&opens, 1)
		return h.store, nil
	}

	b := &mcpBackend{inv: newInvocation(h.app, map[string]string{})}

	const workers = 5
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := b.Pull(context.Background()); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := b.Whoami(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent call: %v", err)
	}
	if got := atomic.LoadInt32(&opens); got != 1 {
		t.Errorf("store opened %d times, want 1", got)
	}
	if got := len(ms.Requests()); got != workers*2 {
		t.Errorf("requests = %d, want %d", got, workers*2)
	}
}

func TestMCPBackendProjectDir(t *testing.T) {
	h := newHarness(t)
	b := &mcpBackend{inv: newInvocation(h.app, map[string]string{})}
	if got := b.ProjectDir(); got != h.project {
		t.Errorf("ProjectDir() = %q, want %q", got, h.project)
	}
}
