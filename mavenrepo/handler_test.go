package mavenrepo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesLocalRepository(t *testing.T) {
	repo, err := NewLocalRepository(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, repo.Deploy(context.Background(), testKjar, []byte("jar-data")))

	httphelpers.WithServer(NewHandler(repo), func(server *httptest.Server) {
		get := func(path string) (int, string) {
			resp, err := http.Get(server.URL + path) //nolint:noctx
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck
			body, _ := io.ReadAll(resp.Body)
			return resp.StatusCode, string(body)
		}

		status, body := get("/" + testKjar.Path())
		assert.Equal(t, 200, status)
		assert.Equal(t, "jar-data", body)

		status, body = get("/org/test/kjar/maven-metadata.xml")
		assert.Equal(t, 200, status)
		assert.Contains(t, body, "<version>1.0</version>")

		status, _ = get("/org/test/kjar/2.0/kjar-2.0.jar")
		assert.Equal(t, 404, status)
		status, _ = get("/org/test/kjar")
		assert.Equal(t, 404, status)
		status, _ = get("/")
		assert.Equal(t, 404, status)

		req, _ := http.NewRequest(http.MethodPut, server.URL+"/"+testKjar.Path(), nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
