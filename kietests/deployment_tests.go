package kietests

import (
	"context"
	"fmt"

	"github.com/kiegroup/kie-remote-tests/framework/itest"
	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doDeploymentTests(t *itest.T) {
	t.RequireCapability(CapabilityDeploymentAPI)

	t.Run("deploy is idempotent", doDeployIsIdempotent)
	t.Run("undeploy and redeploy", doUndeployAndRedeploy)
}

// ensureDeployed deploys the test unit unless it is already deployed, then waits for the job.
func ensureDeployed(t *itest.T) {
	t.Helper()
	require.NoError(t, deployUnlessDeployed(requestContext(t), t))
}

func deployUnlessDeployed(ctx context.Context, t *itest.T) error {
	c := requireContext(t)
	client := c.restClient(t, kieapi.MediaTypeXML)

	status, err := client.DeploymentStatus(ctx, c.deploymentID())
	if err != nil {
		return err
	}
	if status == kieapi.DeploymentDeployed {
		t.Debug("%s is already deployed", c.deploymentID())
		return nil
	}
	job, err := client.Deploy(ctx, c.unit.API())
	if err != nil {
		return err
	}
	if !job.Success {
		return fmt.Errorf("deploy job for %s was not accepted: %s", c.deploymentID(), job.Explanation)
	}
	_, err = client.WaitForDeploymentStatus(ctx, c.deploymentID(),
		c.config.Deployment.PollRetries, c.config.Deployment.PollInterval, kieapi.DeploymentDeployed)
	return err
}

func doDeployIsIdempotent(t *itest.T) {
	c := requireContext(t)
	client := c.restClient(t, kieapi.MediaTypeXML)

	ensureDeployed(t)
	ensureDeployed(t)

	list, err := client.Deployments(requestContext(t))
	require.NoError(t, err)
	unit, found := list.Find(c.deploymentID())
	require.True(t, found, "%s is not in the deployment list", c.deploymentID())
	assert.Equal(t, kieapi.DeploymentDeployed, unit.Status)
	assert.Equal(t, c.unit.API().Strategy, unit.Strategy)
}

func doUndeployAndRedeploy(t *itest.T) {
	c := requireContext(t)
	client := c.restClient(t, kieapi.MediaTypeXML)
	ctx := requestContext(t)

	ensureDeployed(t)

	job, err := client.Undeploy(ctx, c.deploymentID())
	require.NoError(t, err)
	t.Defer(func() {
		restoreCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := deployUnlessDeployed(restoreCtx, t); err != nil {
			t.Errorf("could not restore %s after undeploy: %s", c.deploymentID(), err)
		}
	})
	assert.Equal(t, kieapi.OperationUndeploy, job.Operation)

	status, err := client.WaitForDeploymentStatus(ctx, c.deploymentID(),
		c.config.Deployment.PollRetries, c.config.Deployment.PollInterval,
		kieapi.DeploymentUndeployed, kieapi.DeploymentNonexistent)
	require.NoError(t, err)
	t.Debug("%s is %s after undeploy", c.deploymentID(), status)

	ensureDeployed(t)

	p, err := client.StartProcess(ctx, c.deploymentID(), scriptTaskProcessID, nil)
	require.NoError(t, err, "process could not be started after redeploy")
	assert.Equal(t, kieapi.ProcessStateCompleted, p.State)
}
