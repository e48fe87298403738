package httperr

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Renderer converts errors into JSON HTTP responses. Dev controls
// whether stack traces are included in response bodies; it should only
// be true outside production, since traces expose server file paths.
type Renderer struct {
	Dev    bool
	Logger *zap.Logger
}

// NewRenderer builds a Renderer for the given environment string
// ("prod" disables stack traces, anything else enables them).
func NewRenderer(env string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{Dev: env != "prod", Logger: logger}
}

// response is the wire shape of every error body.
type response struct {
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

// Write classifies err and writes it as a JSON response. All failures
// reach clients well-formed; none are swallowed or retried here.
func (rr *Renderer) Write(w http.ResponseWriter, r *http.Request, err error) {
	e := From(err)

	rr.Logger.Error("request failed",
		zap.String("kind", e.Kind().String()),
		zap.Int("status", e.StatusCode()),
		zap.String("path", r.URL.Path),
		zap.Error(e),
	)

	body := response{Message: e.Error()}
	if rr.Dev {
		body.Stacktrace = e.Stack()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	_ = json.NewEncoder(w).Encode(body)
}

// Handler adapts an error-returning handler to http.HandlerFunc,
// converting any returned error through Write. This is how route
// handlers participate in the taxonomy without writing their own
// error responses.
func (rr *Renderer) Handler(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			rr.Write(w, r, err)
		}
	}
}
