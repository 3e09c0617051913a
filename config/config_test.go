package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/mavenrepo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsDescribeStandardTestDeployment(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "org.test:kjar:1.0:defaultKieBase:defaultKieSession", c.DeploymentUnit().Identifier())
	assert.Equal(t, kieapi.StrategySingleton, c.DeploymentUnit().Strategy)
	assert.Equal(t, "salaboy", c.Tasks.User)
	assert.Equal(t, "en-UK", c.Tasks.Language)

	types, err := c.ParsedMediaTypes()
	require.NoError(t, err)
	assert.Equal(t, []kieapi.MediaType{kieapi.MediaTypeXML, kieapi.MediaTypeJSON}, types)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kie.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  url: http://wb.example.com:8080/business-central/
  password: secret
deployment:
  strategy: per_process_instance
  pollInterval: 250ms
mediaTypes: [json]
capabilities: [data-service, remote-api]
`), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "http://wb.example.com:8080/business-central/", c.Server.URL)
	assert.Equal(t, "salaboy", c.Server.User)
	assert.Equal(t, "secret", c.Server.Password)
	assert.Equal(t, 250*time.Millisecond, c.Deployment.PollInterval)
	assert.Equal(t, 10, c.Deployment.PollRetries)
	assert.Equal(t, kieapi.StrategyPerProcessInstance, c.DeploymentUnit().Strategy)
	assert.True(t, c.ServerCapabilities().Has("data-service"))
	assert.Equal(t, "data-service,remote-api", c.Properties()["capabilities"])
	assert.NotContains(t, c.Properties(), "server.password")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := Default()
	c.Server.URL = "not a url"
	c.Deployment.Strategy = "sometimes"
	c.MediaTypes = []string{"yaml"}
	c.Deployment.PollRetries = 0
	c.Repository.ServeLocal = true

	err := c.Validate()
	require.Error(t, err)
	for _, expected := range []string{"invalid server URL", "sometimes", "yaml", "poll retries", "callback port"} {
		assert.Contains(t, err.Error(), expected)
	}
}

func TestFlagsOverrideConfiguration(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"-url", "http://other:8080/kie-wb",
		"-media-type", "json",
		"-capability", "data-service,remote-api",
		"-poll-retries", "3",
		"-config", "ignored.yaml",
	}))
	assert.Equal(t, "http://other:8080/kie-wb", c.Server.URL)
	assert.Equal(t, []string{"json"}, c.MediaTypes)
	assert.Equal(t, []string{"data-service", "remote-api"}, c.Capabilities)
	assert.Equal(t, 3, c.Deployment.PollRetries)
	assert.Equal(t, "salaboy", c.Tasks.User)
}

func TestFileFromArgs(t *testing.T) {
	assert.Equal(t, "a.yaml", FileFromArgs([]string{"-debug", "-config", "a.yaml"}))
	assert.Equal(t, "b.yaml", FileFromArgs([]string{"--config=b.yaml", "-url", "x"}))
	assert.Equal(t, "", FileFromArgs([]string{"-url", "x"}))
	assert.Equal(t, "", FileFromArgs([]string{"--", "-config", "c.yaml"}))
}

func TestPublishRepositories(t *testing.T) {
	c := Default()
	c.Repository.Local = t.TempDir()

	local, target, err := c.PublishRepositories(nil)
	require.NoError(t, err)
	assert.Equal(t, c.Repository.Local, local.Root())
	assert.Same(t, local, target)

	c.Repository.HTTP.URL = "http://nexus.example/repository/releases"
	local, target, err = c.PublishRepositories(nil)
	require.NoError(t, err)
	require.IsType(t, mavenrepo.MultiRepository{}, target)
	multi := target.(mavenrepo.MultiRepository)
	require.Len(t, multi, 2)
	assert.Same(t, local, multi[0])
	assert.IsType(t, mavenrepo.MultiRepository{}, multi[1])
}
