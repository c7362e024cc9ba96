package cmd

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tierdev/tier-cli/internal/auth"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
	"github.com/tierdev/tier-cli/internal/testutil"
)

func handleDeviceAuthorization(ms *testutil.MockServer) {
	ms.HandleJSON("POST", "/auth/cli", http.StatusOK, map[string]interface{}{
		"device_code":               "dc_1",
		"user_code":                 "ABCD-EFGH",
		"verification_uri":          "https://tier.run/device",
		"verification_uri_complete": "https://tier.run/device?code=ABCD-EFGH",
		"expires_in":                600,
		"interval":                  1,
	})
}

func TestLogin(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	handleDeviceAuthorization(ms)
	ms.HandleSequence("POST", "/auth/token",
		[]int{http.StatusBadRequest, http.StatusBadRequest, http.StatusOK},
		[]interface{}{
			map[string]string{"error": "authorization_pending"},
			map[string]string{"error": "authorization_pending"},
			map[string]string{"access_token": "tok_new", "token_type": "bearer"},
		})

	h := newHarness(t, "TIER_API_URL="+ms.URL(), "TIER_WEB_URL="+ms.URL())
	if err := h.run("login"); err != nil {
		t.Fatalf("login: %v (stderr: %s)", err, h.stderr.String())
	}

	if got, want := h.stdout.String(), "Logged into tier!\nproject: "+h.project+"\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if !strings.Contains(h.stderr.String(), "ABCD-EFGH") {
		t.Errorf("user code missing from stderr: %s", h.stderr.String())
	}
	if h.keyring.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", h.keyring.Writes())
	}

	rec, err := h.store.Get(auth.Key{APIHost: hostOf(t, ms.URL()), ProjectRoot: h.project})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec == nil || rec.Token != "tok_new" || rec.AuthType != "bearer" {
		t.Fatalf("stored record = %+v", rec)
	}

	reqs := ms.Requests()
	if len(reqs) != 4 {
		t.Fatalf("requests = %d, want 4", len(reqs))
	}
	for _, r := range reqs {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("%s %s sent Authorization %q", r.Method, r.Path, r.Header.Get("Authorization"))
		}
	}

	var initBody map[string]string
	if err := json.Unmarshal(reqs[0].Body, &initBody); err != nil {
		t.Fatalf("decode init body: %v", err)
	}
	if initBody["scope"] != h.project {
		t.Errorf("scope = %q, want %q", initBody["scope"], h.project)
	}
}

func TestLoginThenPull(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	handleDeviceAuthorization(ms)
	ms.HandleJSON("POST", "/auth/token", http.StatusOK, map[string]string{"access_token": "tok_new"})
	ms.HandleJSON("GET", "/v1/pull", http.StatusOK, map[string]interface{}{"plans": map[string]interface{}{}})

	h := newHarness(t, "TIER_API_URL="+ms.URL(), "TIER_WEB_URL="+ms.URL())
	if err := h.run("login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := h.run("pull"); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if got := ms.LastRequest().Header.Get("Authorization"); got != "Bearer tok_new" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestLoginDenied(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	handleDeviceAuthorization(ms)
	ms.HandleJSON("POST", "/auth/token", http.StatusBadRequest, map[string]string{
		"error":             "access_denied",
		"error_description": "the user said no",
	})

	h := newHarness(t, "TIER_API_URL="+ms.URL(), "TIER_WEB_URL="+ms.URL())
	err := h.run("login")
	if !clierrors.IsFlowError(err) {
		t.Fatalf("expected FlowError, got %v", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d", ExitCode(err))
	}
	if h.keyring.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", h.keyring.Writes())
	}
	if h.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", h.stdout.String())
	}
}

func TestLoginInitError(t *testing.T) {
	ms := testutil.NewMockServer()
	defer ms.Close()
	ms.HandleJSON("POST", "/auth/cli", http.StatusBadRequest, map[string]string{"error": "invalid_scope"})

	h := newHarness(t, "TIER_API_URL="+ms.URL(), "TIER_WEB_URL="+ms.URL())
	if err := h.run("login"); err == nil {
		t.Fatal("expected error")
	}
	if h.keyring.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", h.keyring.Writes())
	}
	if len(ms.Requests()) != 1 {
		t.Errorf("requests = %d, want 1", len(ms.Requests()))
	}
}

func TestLogoutRemovesOnlyCurrentProject(t *testing.T) {
	h := newHarness(t, "TIER_API_URL=https://api.example.test")
	current := auth.Key{APIHost: "api.example.test", ProjectRoot: h.project}
	other := auth.Key{APIHost: "api.example.test", ProjectRoot: filepath.Join(h.home, "other")}
	for _, k := range []auth.Key{current, other} {
		if err := h.store.Put(k, auth.Record{Token: "tok"}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	if err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if rec, _ := h.store.Get(current); rec != nil {
		t.Errorf("current project credential still present: %+v", rec)
	}
	if rec, _ := h.store.Get(other); rec == nil {
		t.Error("other project credential was removed")
	}
	if !strings.Contains(h.stderr.String(), "Logged out of api.example.test") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestLogoutWithoutCredential(t *testing.T) {
	h := newHarness(t)
	if err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func TestDumpconfRedactsKey(t *testing.T) {
	h := newHarness(t, "TIER_KEY=sk_live_secret", "TIER_API_URL=https://api.example.test")
	if err := h.run("dumpconf"); err != nil {
		t.Fatalf("dumpconf: %v", err)
	}

	out := h.stdout.String()
	if strings.Contains(out, "sk_live_secret") {
		t.Fatalf("key leaked: %s", out)
	}

	var dump map[string]interface{}
	if err := json.Unmarshal([]byte(out), &dump); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dump["key"] != "{redacted}" {
		t.Errorf("key = %v", dump["key"])
	}
	if dump["api_host"] != "api.example.test" {
		t.Errorf("api_host = %v", dump["api_host"])
	}
	if dump["project_dir"] != h.project {
		t.Errorf("project_dir = %v", dump["project_dir"])
	}
	sources, _ := dump["sources"].(map[string]interface{})
	if sources["key"] != "env" || sources["web_url"] != "default" {
		t.Errorf("sources = %v", sources)
	}
	env, _ := dump["env"].(map[string]interface{})
	if env["TIER_KEY"] != "{redacted}" {
		t.Errorf("env TIER_KEY = %v", env["TIER_KEY"])
	}
}

func TestDumpconfYAML(t *testing.T) {
	h := newHarness(t, "TIER_API_URL=https://api.example.test")
	if err := h.run("dumpconf", "-o", "yaml"); err != nil {
		t.Fatalf("dumpconf: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "api_host: api.example.test\n") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}
