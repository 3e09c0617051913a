package kieclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kiegroup/kie-remote-tests/framework/helpers"
	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Deployments lists all deployment units known to the server.
func (c *Client) Deployments(ctx context.Context) (kieapi.DeploymentUnitList, error) {
	var out kieapi.DeploymentUnitList
	err := c.call(ctx, request{method: http.MethodGet, path: "rest/deployment"}, &out)
	return out, err
}

// Deployment returns the current state of one deployment unit.
func (c *Client) Deployment(ctx context.Context, deploymentID string) (kieapi.DeploymentUnit, error) {
	var out kieapi.DeploymentUnit
	err := c.call(ctx, request{method: http.MethodGet, path: "rest/deployment/" + deploymentID}, &out)
	return out, err
}

// DeploymentStatus is like Deployment but maps a 404 to NONEXISTENT.
func (c *Client) DeploymentStatus(ctx context.Context, deploymentID string) (kieapi.DeploymentStatus, error) {
	unit, err := c.Deployment(ctx, deploymentID)
	if errors.Is(err, ErrNotFound) {
		return kieapi.DeploymentNonexistent, nil
	}
	if err != nil {
		return "", err
	}
	if unit.Status == "" {
		return kieapi.DeploymentNonexistent, nil
	}
	return unit.Status, nil
}

// Deploy asks the server to deploy a unit that is already available in its Maven repository. The
// server answers before the deployment happens; use WaitForDeploymentStatus to see the outcome.
func (c *Client) Deploy(ctx context.Context, unit kieapi.DeploymentUnit) (kieapi.DeploymentJobResult, error) {
	q := url.Values{}
	if unit.Strategy != "" {
		q.Set("strategy", string(unit.Strategy))
	}
	var out kieapi.DeploymentJobResult
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "rest/deployment/" + unit.Identifier() + "/deploy",
		query:  q,
	}, &out)
	return out, err
}

// Undeploy asks the server to undeploy a unit.
func (c *Client) Undeploy(ctx context.Context, deploymentID string) (kieapi.DeploymentJobResult, error) {
	var out kieapi.DeploymentJobResult
	err := c.call(ctx, request{method: http.MethodPost, path: "rest/deployment/" + deploymentID + "/undeploy"}, &out)
	return out, err
}

// ErrDeploymentStatus is wrapped by WaitForDeploymentStatus when a deploy or undeploy job fails.
var ErrDeploymentStatus = errors.New("deployment reached an unwanted status")

// WaitForDeploymentStatus polls the deployment unit up to retries times, sleeping interval between
// polls, until its status is one of wanted. It returns the last status seen. Any status other than
// DEPLOY_FAILED or UNDEPLOY_FAILED is polled through, since the server reports the previous state
// until the job it accepted has started.
func (c *Client) WaitForDeploymentStatus(
	ctx context.Context,
	deploymentID string,
	retries int,
	interval time.Duration,
	wanted ...kieapi.DeploymentStatus,
) (kieapi.DeploymentStatus, error) {
	var last kieapi.DeploymentStatus
	err := helpers.RetryPoll(ctx, retries, interval, func(attempt int) (bool, error) {
		status, err := c.DeploymentStatus(ctx, deploymentID)
		if err != nil {
			return false, err
		}
		last = status
		c.logger.Printf("Deployment %s status is %s (poll %d of %d)", deploymentID, status, attempt+1, retries)
		if slices.Contains(wanted, status) {
			return true, nil
		}
		if status.IsFailure() {
			return false, errors.Wrapf(ErrDeploymentStatus, "%s is %s, wanted %v", deploymentID, status, wanted)
		}
		return false, nil
	})
	if errors.Is(err, helpers.ErrRetriesExhausted) {
		return last, errors.Wrapf(err, "%s still %s after %d polls, wanted %v", deploymentID, last, retries, wanted)
	}
	return last, err
}
