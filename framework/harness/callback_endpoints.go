package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/framework/helpers"
)

const endpointPathPrefix = "/endpoints/"

// Requests beyond this many unread ones are dropped from the queue rather than blocking the handler.
const incomingRequestQueueSize = 50

type callbackEndpointsManager struct {
	endpoints       map[string]*CallbackEndpoint
	lastEndpointID  int
	externalBaseURL string
	logger          framework.Logger
	lock            sync.Mutex
}

// CallbackEndpoint is an HTTP endpoint in the harness that the server under test can call,
// for instance to download a kjar from a Maven repository that the harness serves.
type CallbackEndpoint struct {
	owner       *callbackEndpointsManager
	id          string
	description string
	basePath    string
	handler     http.Handler
	incoming    chan IncomingRequestInfo
	cancels     map[int]context.CancelFunc
	lastCancel  int
	logger      framework.Logger
	lock        sync.Mutex
	closeOnce   sync.Once
}

// CallbackEndpointOption configures a CallbackEndpoint.
type CallbackEndpointOption helpers.ConfigOption[CallbackEndpoint]

// CallbackEndpointDescription sets the name used for the endpoint in log output.
func CallbackEndpointDescription(description string) CallbackEndpointOption {
	return helpers.ConfigOptionFunc[CallbackEndpoint](func(e *CallbackEndpoint) error {
		e.description = description
		return nil
	})
}

// IncomingRequestInfo describes a request that arrived at a callback endpoint. URL contains only
// the subpath below the endpoint's base URL.
type IncomingRequestInfo struct {
	Headers http.Header
	Method  string
	URL     url.URL
	Body    []byte
	Status  int
}

func newCallbackEndpointsManager(externalBaseURL string, logger framework.Logger) *callbackEndpointsManager {
	return &callbackEndpointsManager{
		endpoints:       make(map[string]*CallbackEndpoint),
		externalBaseURL: strings.TrimSuffix(externalBaseURL, "/"),
		logger:          framework.LoggerOrNull(logger),
	}
}

func (m *callbackEndpointsManager) newCallbackEndpoint(
	handler http.Handler,
	logger framework.Logger,
	options ...CallbackEndpointOption,
) *CallbackEndpoint {
	e := &CallbackEndpoint{
		owner:    m,
		handler:  handler,
		incoming: make(chan IncomingRequestInfo, incomingRequestQueueSize),
		cancels:  make(map[int]context.CancelFunc),
		logger:   helpers.IfElse(logger == nil, m.logger, logger),
	}
	_ = helpers.ApplyOptions(e, options...)

	m.lock.Lock()
	m.lastEndpointID++
	e.id = strconv.Itoa(m.lastEndpointID)
	e.basePath = endpointPathPrefix + e.id
	m.endpoints[e.id] = e
	m.lock.Unlock()
	return e
}

func (m *callbackEndpointsManager) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, endpointPathPrefix) {
		m.logger.Printf("Received request for unrecognized URL path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	endpointID, subpath, found := strings.Cut(strings.TrimPrefix(r.URL.Path, endpointPathPrefix), "/")
	subpath = "/" + subpath
	if !found {
		subpath = "/"
	}

	m.lock.Lock()
	e := m.endpoints[endpointID]
	m.lock.Unlock()
	if e == nil {
		m.logger.Printf("Received request for unknown endpoint %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	e.serve(w, r, subpath)
}

func (e *CallbackEndpoint) serve(w http.ResponseWriter, r *http.Request, subpath string) {
	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			e.logger.Printf("Could not read request body: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body = data
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	e.lock.Lock()
	if e.incoming == nil {
		e.lock.Unlock()
		e.logger.Printf("Received request to closed endpoint %q (%s)", e.description, e.basePath)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	e.lastCancel++
	cancelID := e.lastCancel
	e.cancels[cancelID] = cancel
	e.lock.Unlock()

	u := *r.URL
	u.Path = subpath
	req := r.WithContext(ctx)
	req.URL = &u
	if body != nil {
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	sw := &statusRecordingWriter{ResponseWriter: w, status: http.StatusOK}
	e.handler.ServeHTTP(sw, req)
	e.logger.Printf("Endpoint %q: %s %s -> %d", e.description, r.Method, subpath, sw.status)

	e.lock.Lock()
	delete(e.cancels, cancelID)
	if e.incoming != nil {
		if !helpers.NonBlockingSend(e.incoming, IncomingRequestInfo{
			Headers: r.Header,
			Method:  r.Method,
			URL:     u,
			Body:    body,
			Status:  sw.status,
		}) {
			e.logger.Printf("Request queue for endpoint %q is full, dropping %s", e.description, subpath)
		}
	}
	e.lock.Unlock()
}

// BaseURL returns the URL that the server under test should use to reach this endpoint.
func (e *CallbackEndpoint) BaseURL() string {
	return e.owner.externalBaseURL + e.basePath
}

// AwaitConnection waits for the next request to the endpoint to be completed.
func (e *CallbackEndpoint) AwaitConnection(timeout time.Duration) (IncomingRequestInfo, error) {
	if info := helpers.TryReceive(e.requests(), timeout); info.IsDefined() {
		return info.Value(), nil
	}
	return IncomingRequestInfo{}, fmt.Errorf("timed out waiting for a request to %q (%s)", e.description, e.basePath)
}

// RequireConnection is like AwaitConnection but fails the test on timeout.
func (e *CallbackEndpoint) RequireConnection(t helpers.TestContext, timeout time.Duration) IncomingRequestInfo {
	return helpers.RequireValueWithMessage(t, e.requests(), timeout,
		"timed out waiting for a request to %q (%s)", e.description, e.basePath)
}

// DrainRequests returns every request that has been completed but not yet consumed.
func (e *CallbackEndpoint) DrainRequests() []IncomingRequestInfo {
	var ret []IncomingRequestInfo
	ch := e.requests()
	for {
		select {
		case info, ok := <-ch:
			if !ok {
				return ret
			}
			ret = append(ret, info)
		default:
			return ret
		}
	}
}

func (e *CallbackEndpoint) requests() chan IncomingRequestInfo {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.incoming == nil {
		closed := make(chan IncomingRequestInfo)
		close(closed)
		return closed
	}
	return e.incoming
}

// Close unregisters the endpoint and cancels the context of any request still in progress.
// Later requests to it get a 404.
func (e *CallbackEndpoint) Close() {
	e.closeOnce.Do(func() {
		e.logger.Printf("Closing endpoint %q (%s)", e.description, e.basePath)
		e.owner.lock.Lock()
		delete(e.owner.endpoints, e.id)
		e.owner.lock.Unlock()

		e.lock.Lock()
		cancels := e.cancels
		e.cancels = make(map[int]context.CancelFunc)
		close(e.incoming)
		e.incoming = nil
		e.lock.Unlock()

		for _, cancel := range cancels {
			cancel()
		}
	})
}

type statusRecordingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusRecordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
