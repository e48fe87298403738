package webserver_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mardens-inc/dbcommon/httperr"
	"github.com/mardens-inc/dbcommon/webserver"
)

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"index.html":     &fstest.MapFile{Data: []byte("<html>index</html>")},
		"assets/app.css": &fstest.MapFile{Data: []byte("body { margin: 0 }")},
		"api/health":     &fstest.MapFile{Data: []byte("static health file")},
	}
}

func newTestServer(t *testing.T, cfg webserver.Config) http.Handler {
	t.Helper()
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	srv, err := webserver.New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv.Handler()
}

func TestAPIRoutesPrecedeStaticAssets(t *testing.T) {
	// Both the router and the asset tree claim /api/health. The API
	// route must win.
	h := newTestServer(t, webserver.Config{
		Assets: testAssets(),
		Routes: func(r chi.Router) {
			r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
				webserver.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			})
		},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, served by the static handler instead of the API route", rec.Body.String())
	}
}

func TestStaticAssetServed(t *testing.T) {
	h := newTestServer(t, webserver.Config{Assets: testAssets()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/assets/app.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/css") {
		t.Errorf("Content-Type = %q, want text/css", ct)
	}
	if rec.Body.String() != "body { margin: 0 }" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestUnknownPathFallsBackToIndex(t *testing.T) {
	h := newTestServer(t, webserver.Config{Assets: testAssets()})

	for _, path := range []string{"/", "/items/42/edit", "/no/such/file.png"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d", path, rec.Code)
		}
		if rec.Body.String() != "<html>index</html>" {
			t.Errorf("GET %s: body = %q, want index.html", path, rec.Body.String())
		}
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	h := newTestServer(t, webserver.Config{Assets: testAssets()})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://frontend.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRequestIDIssuedAndEchoed(t *testing.T) {
	h := newTestServer(t, webserver.Config{Assets: testAssets()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("no X-Request-Id issued")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "rid-from-client")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "rid-from-client" {
		t.Errorf("X-Request-Id = %q, want client value kept", got)
	}
}

func TestInvalidPortRejected(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		if _, err := webserver.New(webserver.Config{Port: port}); err == nil {
			t.Errorf("New(Port: %d) succeeded", port)
		}
	}
}

func TestBodyLimitEnforced(t *testing.T) {
	render := httperr.NewRenderer("prod", zap.NewNop())
	h := newTestServer(t, webserver.Config{
		Routes: func(r chi.Router) {
			r.Post("/api/echo", render.Handler(func(w http.ResponseWriter, r *http.Request) error {
				var payload map[string]any
				if err := webserver.ReadJSON(r, &payload); err != nil {
					return err
				}
				webserver.WriteJSON(w, http.StatusOK, payload)
				return nil
			}))
		},
	})

	t.Run("small body accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/echo", strings.NewReader(`{"a":1}`))
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		big := bytes.Repeat([]byte("x"), int(webserver.DefaultMaxJSONBody)+1)
		body := []byte(`{"a":"` + string(big) + `"}`)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/echo", bytes.NewReader(body))
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "message") {
			t.Errorf("body = %q, want JSON error body", rec.Body.String())
		}
	})
}
