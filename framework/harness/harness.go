package harness

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/framework/helpers"

	"github.com/hashicorp/go-cleanhttp"
)

const httpListenerTimeout = time.Second * 10

// Config describes the server under test and, optionally, the callback listener.
type Config struct {
	// ServerURL is the base URL of the application, such as http://localhost:8080/kie-wb/.
	ServerURL string

	User     string
	Password string

	// StatusPath is requested (relative to ServerURL) to decide whether the server is up.
	StatusPath string

	// StatusQueryTimeout bounds how long NewTestHarness waits for the server.
	StatusQueryTimeout time.Duration

	// Capabilities are the optional features this server is known to have. The server cannot
	// report them itself, so they come from configuration.
	Capabilities framework.Capabilities

	// CallbackHost and CallbackPort control the listener for callback endpoints. If CallbackPort
	// is zero, no listener is started and NewCallbackEndpoint cannot be used.
	CallbackHost string
	CallbackPort int
}

// ServerInfo is what we learned about the server from the initial status query.
type ServerInfo struct {
	BaseURL      string
	Name         string
	StatusCode   int
	Capabilities framework.Capabilities
	FullData     []byte
}

// TestHarness manages communication with the server under test.
//
// It verifies on startup that the server is alive, and can expose any number of callback
// endpoints for the server to reach back into the harness (NewCallbackEndpoint). It holds no
// test logic of its own.
type TestHarness struct {
	config    Config
	info      ServerInfo
	endpoints *callbackEndpointsManager
	listener  *http.Server
	logger    framework.Logger
}

// NewTestHarness creates a TestHarness, waits until the server responds to its status query,
// and starts the callback listener if one was configured.
func NewTestHarness(config Config, debugLogger framework.Logger, startupOutput io.Writer) (*TestHarness, error) {
	debugLogger = framework.LoggerOrNull(debugLogger)
	if !strings.HasSuffix(config.ServerURL, "/") {
		config.ServerURL += "/"
	}
	h := &TestHarness{
		config: config,
		logger: debugLogger,
	}

	info, err := queryServerInfo(config, startupOutput)
	if err != nil {
		return nil, err
	}
	h.info = info

	if config.CallbackPort != 0 {
		host := helpers.IfElse(config.CallbackHost == "", "localhost", config.CallbackHost)
		h.endpoints = newCallbackEndpointsManager(
			fmt.Sprintf("http://%s:%d", host, config.CallbackPort), debugLogger)
		server, err := startServer(config.CallbackPort, http.HandlerFunc(h.endpoints.serveHTTP))
		if err != nil {
			return nil, err
		}
		h.listener = server
	}
	return h, nil
}

// ServerInfo returns the status information gathered at startup.
func (h *TestHarness) ServerInfo() ServerInfo {
	return h.info
}

// Config returns the configuration the harness was created with.
func (h *TestHarness) Config() Config {
	return h.config
}

// NewCallbackEndpoint adds an endpoint that the server under test can send requests to.
//
// The handler receives all requests to the endpoint's base URL or any subpath of it, with the
// URL rewritten so that the handler sees only the subpath. Each request's Context is cancelled
// if the endpoint is closed.
func (h *TestHarness) NewCallbackEndpoint(
	handler http.Handler,
	logger framework.Logger,
	options ...CallbackEndpointOption,
) (*CallbackEndpoint, error) {
	if h.endpoints == nil {
		return nil, fmt.Errorf("no callback port was configured, so endpoints cannot be created")
	}
	if logger == nil {
		logger = h.logger
	}
	return h.endpoints.newCallbackEndpoint(handler, logger, options...), nil
}

// Close shuts down the callback listener, if any.
func (h *TestHarness) Close() error {
	if h.listener == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	return h.listener.Shutdown(ctx)
}

func queryServerInfo(config Config, output io.Writer) (ServerInfo, error) {
	url := config.ServerURL + strings.TrimPrefix(config.StatusPath, "/")
	helpers.MustFprintf(output, "Connecting to server at %s", url)

	client := cleanhttp.DefaultClient()
	deadline := time.Now().Add(config.StatusQueryTimeout)
	for {
		helpers.MustFprintf(output, ".")
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return ServerInfo{}, err
		}
		req.Header.Set("Accept", "application/json")
		if config.User != "" {
			req.SetBasicAuth(config.User, config.Password)
		}
		resp, err := client.Do(req)
		if err == nil {
			helpers.MustFprintln(output)
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return ServerInfo{}, readErr
			}
			switch {
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return ServerInfo{}, fmt.Errorf("server rejected credentials for user %q (status %d)",
					config.User, resp.StatusCode)
			case resp.StatusCode >= 300:
				return ServerInfo{}, fmt.Errorf("server returned status code %d for %s", resp.StatusCode, url)
			}
			name := resp.Header.Get("Server")
			helpers.MustFprintf(output, "Status query succeeded (%s)\n", helpers.IfElse(name == "", "no Server header", name))
			return ServerInfo{
				BaseURL:      config.ServerURL,
				Name:         name,
				StatusCode:   resp.StatusCode,
				Capabilities: config.Capabilities,
				FullData:     body,
			}, nil
		}
		if !time.Now().Before(deadline) {
			helpers.MustFprintln(output)
			return ServerInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 500)
	}
}

func startServer(port int, handler http.Handler) (*http.Server, error) {
	server := &http.Server{
		Addr: net.JoinHostPort("", strconv.Itoa(port)),
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead && r.URL.Path == "/" {
				w.WriteHeader(http.StatusOK)
				return
			}
			handler.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on port %d: %w", port, err)
	}
	go func() {
		_ = server.Serve(listener)
	}()

	// wait until the listener answers before any test hands out its URL
	client := cleanhttp.DefaultClient()
	ok := helpers.PollForSpecificResultValue(func() bool {
		resp, err := client.Head(fmt.Sprintf("http://localhost:%d/", port))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, httpListenerTimeout, time.Millisecond*10, true)
	if !ok {
		_ = server.Close()
		return nil, fmt.Errorf("could not detect own listener at %s", server.Addr)
	}
	return server, nil
}
