package webserver

import (
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"
)

// AssetHandler serves files from an embedded tree. Paths that do not
// name a file fall back to index.html, so client-side routing in the
// bundled frontend keeps working. It is installed as the router's
// NotFound handler, which is what guarantees API routes win for
// overlapping paths.
func AssetHandler(assets fs.FS, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == "." {
			name = "index.html"
		}

		data, err := fs.ReadFile(assets, name)
		if err != nil {
			name = "index.html"
			data, err = fs.ReadFile(assets, name)
			if err != nil {
				logger.Error("embedded index.html missing", zap.Error(err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"not found"}`))
				return
			}
		}

		ctype := mime.TypeByExtension(path.Ext(name))
		if ctype == "" {
			ctype = http.DetectContentType(data)
		}
		w.Header().Set("Content-Type", ctype)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(data)
	}
}
