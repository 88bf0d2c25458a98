package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/twinlab/twin/internal/infra/sqlite"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestChecker_HealthyOffline(t *testing.T) {
	c := NewChecker(testDB(t), "")
	c.runAll(context.Background())

	report := c.Report()
	if !report.Healthy {
		t.Errorf("expected healthy, got %+v", report)
	}
	if report.Degraded {
		t.Error("offline mode has no remote check to degrade on")
	}
	if len(report.Checks) != 2 {
		t.Errorf("expected sqlite and cache_freshness checks, got %d", len(report.Checks))
	}
}

func TestChecker_RemoteDownDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	url := srv.URL
	srv.Close()

	c := NewChecker(testDB(t), url)
	c.runAll(context.Background())

	report := c.Report()
	if !report.Healthy {
		t.Error("a dead remote must not mark the daemon unhealthy")
	}
	if !report.Degraded {
		t.Error("a dead remote should degrade the report")
	}
}

func TestChecker_RemoteUpIsClean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewChecker(testDB(t), srv.URL)
	c.runAll(context.Background())

	report := c.Report()
	if !report.Healthy || report.Degraded {
		t.Errorf("expected clean report, got %+v", report)
	}
}

func TestChecker_StaleCacheFails(t *testing.T) {
	db := testDB(t)
	old := time.Now().Add(-48 * time.Hour)
	if err := db.SaveUserBlob("ada", []byte(`{}`), old); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := NewChecker(db, "")
	c.runAll(context.Background())

	report := c.Report()
	if report.Healthy {
		t.Error("a two-day-old cache should fail freshness")
	}
}
