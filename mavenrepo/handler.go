package mavenrepo

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gorilla/mux"
)

// NewHandler serves a LocalRepository read-only over HTTP, so that a server under test can use it
// as a remote Maven repository. Directory listings are not provided.
func NewHandler(local *LocalRepository) http.Handler {
	r := mux.NewRouter()
	r.PathPrefix("/").Methods(http.MethodGet, http.MethodHead).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		clean := path.Clean("/" + req.URL.Path)
		if clean == "/" || strings.Contains(clean, "..") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		p := local.filePath(strings.TrimPrefix(clean, "/"))
		f, err := os.Open(p) //nolint:gosec
		if err != nil && path.Base(clean) == metadataFileName {
			// a local repository only has the metadata Maven writes on install
			f, err = os.Open(strings.TrimSuffix(p, metadataFileName) + localMetadataFileName) //nolint:gosec
		}
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		defer f.Close() //nolint:errcheck
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if strings.HasSuffix(clean, ".xml") || strings.HasSuffix(clean, ".pom") {
			w.Header().Set("Content-Type", "application/xml")
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		http.ServeContent(w, req, info.Name(), info.ModTime(), f)
	})
	return r
}
