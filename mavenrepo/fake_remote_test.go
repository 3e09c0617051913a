package mavenrepo

import (
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

// fakeRemote stores PUT bodies by path and returns them on GET, like a hosted repository or a
// path-style S3 endpoint would.
type fakeRemote struct {
	files map[string][]byte
	auth  [2]string
	lock  sync.Mutex
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{files: make(map[string][]byte)}
}

func (f *fakeRemote) file(path string) ([]byte, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	data, ok := f.files[path]
	return data, ok
}

func (f *fakeRemote) handler() http.Handler {
	r := mux.NewRouter()
	r.PathPrefix("/").Methods(http.MethodPut).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if f.auth[0] != "" {
			if user, password, _ := req.BasicAuth(); user != f.auth[0] || password != f.auth[1] {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		data, _ := io.ReadAll(req.Body)
		f.lock.Lock()
		f.files[req.URL.Path] = data
		f.lock.Unlock()
		w.Header().Set("ETag", `"`+md5Hex(data)+`"`)
		w.WriteHeader(http.StatusOK)
	})
	r.PathPrefix("/").Methods(http.MethodGet).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, ok := f.file(req.URL.Path)
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		_, _ = w.Write(data)
	})
	return r
}
