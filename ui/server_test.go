package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gocausal/app"
	"gocausal/internal/config"
	"gocausal/internal/lesson"
	"gocausal/internal/logger"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Run.Lessons = []string{lesson.NameDiffInDiff}
	svc := app.NewService(cfg, &logger.NopLogger{})
	return NewServer(svc, &logger.NopLogger{})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

type runEnvelope struct {
	Manifest struct {
		RunID string `json:"run_id"`
		Seed  int64  `json:"seed"`
	} `json:"manifest"`
	Reports []struct {
		LessonName string `json:"lesson_name"`
	} `json:"reports"`
}

func TestIndexServesHTML(t *testing.T) {
	rec := get(t, testServer(t), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<h1", "Causal Inference Lessons", "<table>"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestReportMarkdown(t *testing.T) {
	rec := get(t, testServer(t), "/report.md")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/markdown") {
		t.Errorf("content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "# Causal Inference Lessons") {
		t.Errorf("unexpected document head: %q", rec.Body.String()[:40])
	}
}

func TestRunJSONCachesBySeed(t *testing.T) {
	s := testServer(t)

	var first runEnvelope
	rec := get(t, s, "/api/run?seed=9")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decoding run: %v", err)
	}
	if first.Manifest.Seed != 9 {
		t.Errorf("seed %d, want 9", first.Manifest.Seed)
	}
	if len(first.Reports) != 1 || first.Reports[0].LessonName != lesson.NameDiffInDiff {
		t.Errorf("unexpected reports %+v", first.Reports)
	}

	var second runEnvelope
	rec = get(t, s, "/api/run?seed=9")
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decoding run: %v", err)
	}
	if second.Manifest.RunID != first.Manifest.RunID {
		t.Errorf("same seed should hit the cache, got a fresh run id")
	}

	var other runEnvelope
	rec = get(t, s, "/api/run?seed=10")
	if err := json.Unmarshal(rec.Body.Bytes(), &other); err != nil {
		t.Fatalf("decoding run: %v", err)
	}
	if other.Manifest.Seed != 10 {
		t.Errorf("seed %d, want 10", other.Manifest.Seed)
	}
	if other.Manifest.RunID == first.Manifest.RunID {
		t.Errorf("a new seed should trigger a fresh run")
	}
}

func TestBadSeedRejected(t *testing.T) {
	rec := get(t, testServer(t), "/api/run?seed=banana")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, testServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if got["status"] != "ok" || got["version"] == "" {
		t.Errorf("unexpected health payload %v", got)
	}
}
