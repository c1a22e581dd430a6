package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizroom/quizroom/internal/storage"
)

// MountAssets serves stored uploads (answer files, question images)
// under the given router, keyed by their blob path.
func MountAssets(r chi.Router, blobs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		key := chi.URLParam(req, "*")
		rc, err := blobs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		_, _ = io.Copy(w, rc)
	})
}
