package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/mardens-inc/dbcommon/httperr"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes the request body into dst. A malformed or
// oversized body (the server's BodyLimit middleware caps reads)
// returns a 400 application error for the handler to propagate:
//
//	if err := webserver.ReadJSON(r, &req); err != nil {
//		return err
//	}
func ReadJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return httperr.Appf(http.StatusBadRequest, "failed to parse JSON: %v", err)
	}
	return nil
}
