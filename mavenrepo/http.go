package mavenrepo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework"

	"github.com/hashicorp/go-cleanhttp"
)

// HTTPRepository publishes to a remote repository that accepts PUT requests, such as a Nexus or
// Artifactory hosted repository.
type HTTPRepository struct {
	baseURL  string
	user     string
	password string
	client   *http.Client
	logger   framework.Logger
	now      func() time.Time
}

// NewHTTPRepository creates an HTTPRepository. The user may be empty if the repository does not
// require authentication.
func NewHTTPRepository(baseURL, user, password string, logger framework.Logger) *HTTPRepository {
	return &HTTPRepository{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		user:     user,
		password: password,
		client:   cleanhttp.DefaultClient(),
		logger:   framework.LoggerOrNull(logger),
		now:      time.Now,
	}
}

func (h *HTTPRepository) Deploy(ctx context.Context, artifact Artifact, data []byte) error {
	if err := artifact.validate(); err != nil {
		return err
	}
	if err := h.putWithChecksums(ctx, artifact.Path(), data); err != nil {
		return fmt.Errorf("could not deploy %s to %s: %w", artifact, h.baseURL, err)
	}

	metadataPath := artifact.ArtifactDir() + "/" + metadataFileName
	existing, err := h.get(ctx, metadataPath)
	if err != nil {
		return err
	}
	merged, err := mergeMetadata(existing, artifact, h.now())
	if err != nil {
		return fmt.Errorf("invalid metadata at %s: %w", metadataPath, err)
	}
	return h.putWithChecksums(ctx, metadataPath, merged)
}

func (h *HTTPRepository) putWithChecksums(ctx context.Context, path string, data []byte) error {
	if err := h.put(ctx, path, data); err != nil {
		return err
	}
	for p, sum := range checksumFiles(path, data) {
		if err := h.put(ctx, p, sum); err != nil {
			return err
		}
	}
	return nil
}

func (h *HTTPRepository) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+"/"+path, reader)
	if err != nil {
		return nil, err
	}
	if h.user != "" {
		req.SetBasicAuth(h.user, h.password)
	}
	return req, nil
}

func (h *HTTPRepository) put(ctx context.Context, path string, data []byte) error {
	req, err := h.newRequest(ctx, http.MethodPut, path, data)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	h.logger.Printf("PUT %s (%d bytes)", req.URL, len(data))
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("PUT %s returned status %d", req.URL, resp.StatusCode)
	}
	return nil
}

// get returns nil data, not an error, if the file does not exist.
func (h *HTTPRepository) get(ctx context.Context, path string) ([]byte, error) {
	req, err := h.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s returned status %d", req.URL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
