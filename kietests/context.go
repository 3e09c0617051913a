package kietests

import (
	"context"

	"github.com/kiegroup/kie-remote-tests/config"
	"github.com/kiegroup/kie-remote-tests/framework/harness"
	"github.com/kiegroup/kie-remote-tests/framework/itest"
	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/kieclient"
	"github.com/kiegroup/kie-remote-tests/kjar"
	"github.com/kiegroup/kie-remote-tests/remote"
)

// KieTestContext is what every scenario gets from itest.T.Context.
type KieTestContext struct {
	harness    *harness.TestHarness
	config     config.Config
	client     *kieclient.Client
	unit       kjar.DeploymentUnit
	mediaTypes []kieapi.MediaType
}

func requireContext(t *itest.T) KieTestContext {
	return t.Context().(KieTestContext)
}

// deploymentID is the identifier of the test unit.
func (c KieTestContext) deploymentID() string {
	return c.unit.Identifier()
}

// restClient returns a client that logs to the current test and uses the given media type.
func (c KieTestContext) restClient(t *itest.T, mediaType kieapi.MediaType) *kieclient.Client {
	return c.client.WithMediaType(mediaType).WithLogger(t.DebugLogger())
}

// remoteEngine returns a remote session for the test unit that logs to the current test.
func (c KieTestContext) remoteEngine(t *itest.T) *remote.RuntimeEngine {
	return remote.NewRuntimeEngine(c.restClient(t, kieapi.MediaTypeXML), c.deploymentID())
}

// requestContext is cancelled when the test ends.
func requestContext(t *itest.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Defer(cancel)
	return ctx
}
