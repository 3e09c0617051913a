package resultstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework/itest"

	"github.com/google/uuid"
)

// DefaultNamespace prefixes every key written to a shared store.
const DefaultNamespace = "kie-remote-tests"

// Store is where suppressions are read from and run records are written to.
type Store interface {
	// LoadSuppressions returns the test IDs to skip, in the order they were recorded.
	LoadSuppressions(ctx context.Context) ([]string, error)

	// RecordRun saves the run and replaces the suppression list with its failures.
	RecordRun(ctx context.Context, run RunRecord) error

	Close() error
}

// RunRecord summarizes one run of the test suite.
type RunRecord struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	ServerURL string    `json:"serverUrl"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	// NonCritical counts failures that did not fail the run.
	NonCritical int      `json:"nonCritical"`
	Failures    []string `json:"failures"`
}

// NewRunRecord builds a record with a new random ID.
func NewRunRecord(serverURL string, started time.Time, results itest.Results) RunRecord {
	run := RunRecord{
		ID:          uuid.NewString(),
		StartTime:   started,
		EndTime:     time.Now(),
		ServerURL:   serverURL,
		Failed:      len(results.Failures),
		NonCritical: len(results.NonCriticalFailures),
		Failures:    results.FailedIDs(),
	}
	for _, r := range results.Tests {
		if len(r.TestID) != 0 && len(r.Errors) == 0 {
			run.Passed++
		}
	}
	return run
}

// Open selects a store by the form of location:
//
//	path/to/file            a text file with one test ID per line
//	redis://host:port/db    a Redis server
//	consul://host:port      the Consul agent's KV store
//	dynamodb://table        a DynamoDB table, with optional ?region= and ?endpoint=
//
// For the shared stores, a "namespace" query parameter overrides DefaultNamespace.
func Open(ctx context.Context, location string) (Store, error) {
	scheme, _, found := strings.Cut(location, "://")
	if !found {
		return NewFileStore(location), nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid results store URL %q: %w", location, err)
	}
	namespace := u.Query().Get("namespace")
	if namespace == "" {
		namespace = DefaultNamespace
	}
	switch scheme {
	case "redis", "rediss":
		return NewRedisStore(location, namespace)
	case "consul":
		return NewConsulStore(u.Host, namespace)
	case "dynamodb":
		return NewDynamoDBStore(ctx, DynamoDBConfig{
			Table:     u.Host,
			Region:    u.Query().Get("region"),
			Endpoint:  u.Query().Get("endpoint"),
			Namespace: namespace,
		})
	}
	return nil, fmt.Errorf("unsupported results store scheme %q", scheme)
}

// cleanSuppressions drops blank lines and comments.
func cleanSuppressions(lines []string) []string {
	ret := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ret = append(ret, line)
	}
	return ret
}

// stripQuery removes the named query parameters, for drivers that reject unknown options.
func stripQuery(location string, names ...string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	q := u.Query()
	for _, n := range names {
		q.Del(n)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
