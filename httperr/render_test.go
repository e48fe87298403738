package httperr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/mardens-inc/dbcommon/httperr"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func TestWrite_DevIncludesStacktrace(t *testing.T) {
	rr := httperr.NewRenderer("dev", zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/items", nil)

	rr.Write(rec, req, httperr.SQL(errors.New("syntax error")))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	body := decodeBody(t, rec)
	if body["message"] == "" || body["message"] == nil {
		t.Error("message missing from dev response")
	}
	st, ok := body["stacktrace"].(string)
	if !ok || st == "" {
		t.Error("stacktrace missing from dev response")
	}
}

func TestWrite_ProdOmitsStacktrace(t *testing.T) {
	rr := httperr.NewRenderer("prod", zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/items", nil)

	rr.Write(rec, req, httperr.Pool(errors.New("dial failed")))

	body := decodeBody(t, rec)
	if body["message"] == "" || body["message"] == nil {
		t.Error("message missing from prod response")
	}
	if _, present := body["stacktrace"]; present {
		t.Error("stacktrace leaked into prod response")
	}
}

func TestWrite_AppStatusCarried(t *testing.T) {
	rr := httperr.NewRenderer("prod", zap.NewNop())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/items/99", nil)

	rr.Write(rec, req, httperr.Appf(http.StatusNotFound, "item %d not found", 99))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	body := decodeBody(t, rec)
	if body["message"] != "item 99 not found" {
		t.Errorf("message = %q, want %q", body["message"], "item 99 not found")
	}
}

func TestHandler_ConvertsReturnedErrors(t *testing.T) {
	rr := httperr.NewRenderer("prod", zap.NewNop())

	h := rr.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return httperr.App(http.StatusForbidden, "nope")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestHandler_NoErrorWritesNothing(t *testing.T) {
	rr := httperr.NewRenderer("dev", zap.NewNop())

	h := rr.Handler(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}
