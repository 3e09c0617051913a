// Package config holds the settings of a test run, read from a YAML file and overridden by
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/kjar"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig     `yaml:"server"`
	Deployment   DeploymentConfig `yaml:"deployment"`
	Tasks        TaskConfig       `yaml:"tasks"`
	MediaTypes   []string         `yaml:"mediaTypes"`
	Capabilities []string         `yaml:"capabilities"`
	Callback     CallbackConfig   `yaml:"callback"`
	Repository   RepositoryConfig `yaml:"repository"`
	War          WarConfig        `yaml:"war"`
	ResultsStore string           `yaml:"resultsStore"`
}

type ServerConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	// Timeout applies to each REST request.
	Timeout time.Duration `yaml:"timeout"`
	// StatusTimeout is how long to wait for the server to come up.
	StatusTimeout time.Duration `yaml:"statusTimeout"`
}

type DeploymentConfig struct {
	GroupID      string        `yaml:"groupId"`
	ArtifactID   string        `yaml:"artifactId"`
	Version      string        `yaml:"version"`
	KBase        string        `yaml:"kbase"`
	KSession     string        `yaml:"ksession"`
	Strategy     string        `yaml:"strategy"`
	PollRetries  int           `yaml:"pollRetries"`
	PollInterval time.Duration `yaml:"pollInterval"`
	// Publish builds the test kjar and publishes it to the configured repositories before the
	// tests run.
	Publish bool `yaml:"publish"`
}

type TaskConfig struct {
	User     string `yaml:"user"`
	Language string `yaml:"language"`
}

type CallbackConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type RepositoryConfig struct {
	// Local is the local Maven repository; empty means ~/.m2/repository.
	Local string         `yaml:"local"`
	HTTP  HTTPRepoConfig `yaml:"http"`
	S3    S3RepoConfig   `yaml:"s3"`
	// ServeLocal exposes the local repository on a callback endpoint, so that a server on another
	// host can resolve the test kjar from it.
	ServeLocal bool `yaml:"serveLocal"`
}

type HTTPRepoConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type S3RepoConfig struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type WarConfig struct {
	Classifier     string `yaml:"classifier"`
	ProjectVersion string `yaml:"projectVersion"`
	Output         string `yaml:"output"`
}

// Default returns the settings of the standard test deployment against a local workbench.
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:           "http://localhost:8080/kie-wb/",
			User:          "salaboy",
			Password:      "sala",
			Timeout:       30 * time.Second,
			StatusTimeout: 10 * time.Second,
		},
		Deployment: DeploymentConfig{
			GroupID:      "org.test",
			ArtifactID:   "kjar",
			Version:      "1.0",
			KBase:        "defaultKieBase",
			KSession:     "defaultKieSession",
			Strategy:     string(kieapi.StrategySingleton),
			PollRetries:  10,
			PollInterval: time.Second,
		},
		Tasks: TaskConfig{
			User:     "salaboy",
			Language: "en-UK",
		},
		MediaTypes:   []string{"xml", "json"},
		Capabilities: []string{"remote-api", "deployment-api"},
		Callback:     CallbackConfig{Host: "localhost"},
		War:          WarConfig{Classifier: "eap6_4", Output: "target/test.war"},
	}
}

// Load reads a YAML file over the defaults. Fields the file does not mention keep their default.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return c, fmt.Errorf("cannot read configuration file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the settings that the test suite depends on.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Server.URL == "" {
		result = multierror.Append(result, errors.New("server URL is required"))
	} else if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("invalid server URL %q", c.Server.URL))
	}
	if c.Deployment.GroupID == "" || c.Deployment.ArtifactID == "" || c.Deployment.Version == "" {
		result = multierror.Append(result, errors.New("deployment group, artifact and version are required"))
	}
	if _, err := kieapi.ParseRuntimeStrategy(c.Deployment.Strategy); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := c.ParsedMediaTypes(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Deployment.PollRetries < 1 {
		result = multierror.Append(result, errors.New("deployment poll retries must be at least 1"))
	}
	if c.Tasks.User == "" {
		result = multierror.Append(result, errors.New("task user is required"))
	}
	if c.Repository.ServeLocal && c.Callback.Port == 0 {
		result = multierror.Append(result, errors.New("serving the local repository requires a callback port"))
	}
	return result.ErrorOrNil()
}

// ParsedMediaTypes returns the media types to exercise, in order, without duplicates.
func (c Config) ParsedMediaTypes() ([]kieapi.MediaType, error) {
	var ret []kieapi.MediaType
	for _, s := range c.MediaTypes {
		m, err := kieapi.ParseMediaType(s)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, existing := range ret {
			dup = dup || existing == m
		}
		if !dup {
			ret = append(ret, m)
		}
	}
	if len(ret) == 0 {
		return nil, errors.New("at least one media type is required")
	}
	return ret, nil
}

// DeploymentUnit returns the test kjar's deployment unit.
func (c Config) DeploymentUnit() kjar.DeploymentUnit {
	strategy, _ := kieapi.ParseRuntimeStrategy(c.Deployment.Strategy)
	return kjar.DeploymentUnit{
		ReleaseID: kjar.ReleaseID{
			GroupID:    c.Deployment.GroupID,
			ArtifactID: c.Deployment.ArtifactID,
			Version:    c.Deployment.Version,
		},
		KBaseName:    c.Deployment.KBase,
		KSessionName: c.Deployment.KSession,
		Strategy:     strategy,
	}
}

// ServerCapabilities returns the configured capabilities.
func (c Config) ServerCapabilities() framework.Capabilities {
	var caps framework.Capabilities
	_ = caps.Set(strings.Join(c.Capabilities, ","))
	return caps
}

// Properties describes the run for reports such as JUnit XML. The password is left out.
func (c Config) Properties() map[string]string {
	return map[string]string{
		"server.url":          c.Server.URL,
		"server.user":         c.Server.User,
		"deployment.id":       c.DeploymentUnit().Identifier(),
		"deployment.strategy": c.Deployment.Strategy,
		"mediaTypes":          strings.Join(c.MediaTypes, ","),
		"capabilities":        c.ServerCapabilities().String(),
	}
}
