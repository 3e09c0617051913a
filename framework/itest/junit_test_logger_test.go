package itest

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJUnitTestLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	logger := NewJUnitTestLogger(path, "KIE remote tests", map[string]string{
		"server.url": "http://localhost:8080/kie-wb",
	})

	results := Run(TestConfiguration{TestLogger: logger}, func(it *T) {
		it.Run("rest", func(it0 *T) {
			it0.Run("ok", func(*T) {})
			it0.Run("broken", func(it1 *T) {
				it1.Debug("GET rest/task/1")
				it1.Errorf("status 500")
			})
			it0.Run("needs data service", func(it1 *T) { it1.RequireCapability("data-service") })
		})
		it.Run("deployment", func(it0 *T) {
			it0.Run("flaky", func(it1 *T) {
				it1.NonCritical("slow server")
				it1.FailNow()
			})
		})
	})
	require.NoError(t, logger.EndLog(results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc jUnitXMLDocument
	require.NoError(t, xml.Unmarshal(data, &doc))

	require.Len(t, doc.Suites, 2)
	rest := doc.Suites[0]
	assert.Equal(t, "KIE remote tests: rest", rest.Name)
	assert.Equal(t, 4, rest.Tests)
	assert.Equal(t, 1, rest.Failures)
	assert.Equal(t, 1, rest.Skipped)
	require.Len(t, rest.Properties, 1)
	assert.Equal(t, "server.url", rest.Properties[0].Name)

	require.Len(t, rest.TestCases, 4)
	broken := rest.TestCases[2]
	assert.Equal(t, "rest/broken", broken.Name)
	require.NotNil(t, broken.Failure)
	assert.Contains(t, broken.Failure.Message, "status 500")
	assert.Contains(t, broken.Failure.Contents, "GET rest/task/1")

	skipped := rest.TestCases[3]
	require.NotNil(t, skipped.SkipMessage)
	assert.Contains(t, skipped.SkipMessage.Message, "data-service")

	deployment := doc.Suites[1]
	require.Len(t, deployment.TestCases, 2)
	assert.Equal(t, "deployment/flaky (non-critical)", deployment.TestCases[1].Name)
}
