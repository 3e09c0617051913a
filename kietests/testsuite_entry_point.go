package kietests

import (
	"fmt"
	"os"

	"github.com/kiegroup/kie-remote-tests/config"
	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/framework/harness"
	"github.com/kiegroup/kie-remote-tests/framework/itest"
	"github.com/kiegroup/kie-remote-tests/kieclient"
)

// RunKieTestSuite runs every scenario against the server the harness is connected to.
func RunKieTestSuite(
	harness *harness.TestHarness,
	cfg config.Config,
	filter itest.Filter,
	testLogger itest.TestLogger,
) itest.Results {
	fail := func(err error) itest.Results {
		return itest.Results{Failures: []itest.TestResult{{Errors: []error{err}}}}
	}
	mediaTypes, err := cfg.ParsedMediaTypes()
	if err != nil {
		return fail(err)
	}
	client, err := kieclient.New(kieclient.Config{
		BaseURL:  harness.ServerInfo().BaseURL,
		User:     cfg.Server.User,
		Password: cfg.Server.Password,
		Timeout:  cfg.Server.Timeout,
	})
	if err != nil {
		return fail(err)
	}
	capabilities := harness.ServerInfo().Capabilities

	fmt.Println()
	if sdf, ok := filter.(itest.SelfDescribingFilter); ok {
		sdf.Describe(os.Stdout, capabilities, allImportantCapabilities())
	}

	testConfig := itest.TestConfiguration{
		Filter:       filter,
		Capabilities: capabilities,
		TestLogger:   testLogger,
		Context: KieTestContext{
			harness:    harness,
			config:     cfg,
			client:     client,
			unit:       cfg.DeploymentUnit(),
			mediaTypes: mediaTypes,
		},
	}
	return itest.Run(testConfig, doAllKieTests)
}

func doAllKieTests(t *itest.T) {
	t.Run("deployment", doDeploymentTests)
	t.Run("rest", doRESTTests)
	t.Run("remote api", doRemoteAPITests)
}

// The data service is left out: only WARs built by kie-war have it.
func allImportantCapabilities() framework.Capabilities {
	return framework.Capabilities{
		CapabilityRemoteAPI,
		CapabilityDeploymentAPI,
	}
}
