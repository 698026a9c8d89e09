package caniuse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/packcat/internal/fetch"
)

const featureDoc = `{
  "title": "File System Access API",
  "description": "API for manipulating files on the device file system.",
  "stats": {
    "chrome": {"85": "y", "84": "n"},
    "edge": {"86": "y"},
    "firefox": {"120": "n"},
    "safari": {"17": "a #1"},
    "opera": {"72": "y"},
    "and_chr": {"120": "n d #2"},
    "newbrowser": {"1": "y"}
  }
}`

func TestSupported(t *testing.T) {
	var data FeatureData
	if !fetch.ParseJSON([]byte(featureDoc), &data) {
		t.Fatal("fixture did not parse")
	}

	got := Supported(data)
	want := []string{"Google Chrome", "Microsoft Edge", "Opera"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Supported() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_SupportedBrowsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fs.json":
			w.Write([]byte(featureDoc))
		case "/broken.json":
			w.Write([]byte(`{"stats":`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(fetch.NewClient(fetch.Options{Timeout: 5 * time.Second})).WithFeatures(map[string]string{
		"fs":      srv.URL + "/fs.json",
		"broken":  srv.URL + "/broken.json",
		"missing": srv.URL + "/missing.json",
	})
	ctx := context.Background()

	got, err := c.SupportedBrowsers(ctx, "fs")
	if err != nil {
		t.Fatalf("SupportedBrowsers() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("SupportedBrowsers() = %v, want 3 browsers", got)
	}

	if _, err := c.SupportedBrowsers(ctx, "nope"); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("unknown feature error = %v, want ErrUnknownFeature", err)
	}
	if _, err := c.SupportedBrowsers(ctx, "broken"); !errors.Is(err, ErrBadFeatureData) {
		t.Errorf("broken feature error = %v, want ErrBadFeatureData", err)
	}
	var statusErr *fetch.StatusError
	if _, err := c.SupportedBrowsers(ctx, "missing"); !errors.As(err, &statusErr) {
		t.Errorf("missing feature error = %v, want StatusError", err)
	}

	if diff := cmp.Diff([]string{"broken", "fs", "missing"}, c.FeatureKeys()); diff != "" {
		t.Errorf("FeatureKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowser_DisplayName(t *testing.T) {
	if got := Browser("ios_saf").DisplayName(); got != "iOS Safari" {
		t.Errorf("DisplayName(ios_saf) = %q", got)
	}
	if got := Browser("zzz").DisplayName(); got != "" {
		t.Errorf("DisplayName(zzz) = %q, want empty", got)
	}
}
