package harness

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *callbackEndpointsManager {
	return newCallbackEndpointsManager("http://harness:9999/", framework.NullLogger())
}

func TestCallbackEndpointsHaveDistinctURLs(t *testing.T) {
	m := newTestManager()

	e1 := m.newCallbackEndpoint(httphelpers.HandlerWithStatus(200), nil)
	e2 := m.newCallbackEndpoint(httphelpers.HandlerWithStatus(204), nil, CallbackEndpointDescription("maven"))
	assert.Equal(t, "http://harness:9999/endpoints/1", e1.BaseURL())
	assert.Equal(t, "http://harness:9999/endpoints/2", e2.BaseURL())
	assert.Equal(t, "maven", e2.description)

	for _, p := range []struct {
		url    string
		status int
	}{{e1.BaseURL(), 200}, {e2.BaseURL(), 204}, {"http://harness:9999/endpoints/3", 404}, {"http://harness:9999/x", 404}} {
		rr := httptest.NewRecorder()
		r, _ := http.NewRequest("GET", p.url, nil)
		m.serveHTTP(rr, r)
		assert.Equal(t, p.status, rr.Code, p.url)
	}
}

func TestCallbackEndpointReceivesSubpath(t *testing.T) {
	m := newTestManager()
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	e := m.newCallbackEndpoint(handler, nil)

	for _, subpath := range []string{"", "/", "/org/test/kjar/1.0/kjar-1.0.jar"} {
		rr := httptest.NewRecorder()
		r, _ := http.NewRequest("GET", e.BaseURL()+subpath, nil)
		m.serveHTTP(rr, r)
		received := <-requests
		assert.Equal(t, orDefault(subpath, "/"), received.Request.URL.Path)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func TestCallbackEndpointRecordsRequests(t *testing.T) {
	m := newTestManager()
	e := m.newCallbackEndpoint(httphelpers.HandlerWithStatus(201), nil)

	_, err := e.AwaitConnection(time.Millisecond * 50)
	assert.Error(t, err)

	r1, _ := http.NewRequest("GET", e.BaseURL()+"/a", nil)
	r1.Header.Set("Authorization", "Basic xyz")
	m.serveHTTP(httptest.NewRecorder(), r1)
	info1, err := e.AwaitConnection(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "GET", info1.Method)
	assert.Equal(t, "/a", info1.URL.Path)
	assert.Equal(t, 201, info1.Status)
	assert.Nil(t, info1.Body)
	assert.Equal(t, "Basic xyz", info1.Headers.Get("Authorization"))

	r2, _ := http.NewRequest("PUT", e.BaseURL()+"/b", bytes.NewBufferString("content"))
	m.serveHTTP(httptest.NewRecorder(), r2)
	r3, _ := http.NewRequest("GET", e.BaseURL()+"/c", nil)
	m.serveHTTP(httptest.NewRecorder(), r3)

	drained := e.DrainRequests()
	require.Len(t, drained, 2)
	assert.Equal(t, []byte("content"), drained[0].Body)
	assert.Equal(t, "/c", drained[1].URL.Path)
}

func TestClosedCallbackEndpointReturns404(t *testing.T) {
	m := newTestManager()
	e := m.newCallbackEndpoint(httphelpers.HandlerWithStatus(200), nil)
	e.Close()
	e.Close()

	rr := httptest.NewRecorder()
	r, _ := http.NewRequest("GET", e.BaseURL(), nil)
	m.serveHTTP(rr, r)
	assert.Equal(t, 404, rr.Code)
	assert.Len(t, e.DrainRequests(), 0)
}
