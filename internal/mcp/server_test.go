package mcp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/honeycarbs/jobboard-client/internal/config"
)

func TestServer_HealthzAndTools(t *testing.T) {
	srv := NewServer(nil, config.Config{Host: "127.0.0.1", Port: "0"}, &Resources{})

	if got := len(srv.Tools()); got != 17 {
		t.Errorf("registered %d tools, want 17: %v", got, srv.Tools())
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestProviders_OptionalIntegrations(t *testing.T) {
	if provideSearchArchive(nil) != nil {
		t.Error("nil repository must yield a nil archive interface")
	}
	if provideSummaryFinder(nil) != nil {
		t.Error("nil repository must yield a nil finder interface")
	}

	r, err := provideReconciler(nil, config.Config{ReconcileInterval: 0}, nil)
	if err != nil || r != nil {
		t.Errorf("disabled reconciler = %v, %v", r, err)
	}

	client, cleanup, err := provideNeo4jClient(t.Context(), config.Config{}, nil)
	if err != nil || client != nil {
		t.Errorf("neo4j without URI = %v, %v", client, err)
	}
	cleanup()

	if e := provideSheetsExporter(t.Context(), config.Config{}, nil); e.Configured() {
		t.Error("sheets exporter configured without credentials")
	}
}

func TestProvideAPIClient(t *testing.T) {
	cfg := config.Config{}
	cfg.API.BaseURL = "http://localhost:9999/api"
	cfg.API.Timeout = time.Second

	client, err := provideAPIClient(cfg)
	if err != nil || client == nil {
		t.Fatalf("provideAPIClient: %v", err)
	}
	if _, err := provideGateway(client); err != nil {
		t.Errorf("provideGateway: %v", err)
	}

	if _, err := provideAPIClient(config.Config{}); err == nil {
		t.Error("missing base URL accepted")
	}
}
