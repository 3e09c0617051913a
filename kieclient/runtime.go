package kieclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kiegroup/kie-remote-tests/kieapi"
)

// StartProcess starts a process instance. Variables are passed as map_ query parameters.
func (c *Client) StartProcess(
	ctx context.Context,
	deploymentID, processID string,
	params kieapi.Variables,
) (kieapi.ProcessInstanceResponse, error) {
	var out kieapi.ProcessInstanceResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "rest/runtime/" + deploymentID + "/process/" + processID + "/start",
		query:  variableParams(params),
	}, &out)
	return out, err
}

// VariableHistory returns the logged values of one variable of a process instance.
func (c *Client) VariableHistory(
	ctx context.Context,
	deploymentID string,
	processInstanceID int64,
	variableID string,
) (kieapi.HistoryLogList, error) {
	var out kieapi.HistoryLogList
	err := c.call(ctx, request{
		method: http.MethodGet,
		path: "rest/runtime/" + deploymentID + "/history/instance/" + strconv.FormatInt(processInstanceID, 10) +
			"/variable/" + variableID,
	}, &out)
	return out, err
}

// ProcessInstanceSummary queries the data service, which only exists in workbench builds that
// include it.
func (c *Client) ProcessInstanceSummary(ctx context.Context, processInstanceID int64) (kieapi.ProcessInstanceSummary, error) {
	var out kieapi.ProcessInstanceSummary
	err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "rest/data/process/instance/" + strconv.FormatInt(processInstanceID, 10),
	}, &out)
	return out, err
}

// Execute posts commands to the runtime execute resource of a deployment. Command requests are
// always sent as XML, whatever the client's media type.
func (c *Client) Execute(ctx context.Context, deploymentID string, commands ...kieapi.Command) (kieapi.CommandsResponse, error) {
	return c.execute(ctx, "rest/runtime/"+deploymentID+"/execute", kieapi.CommandsRequest{
		DeploymentID: deploymentID,
		User:         c.config.User,
		Commands:     commands,
	})
}

// ExecuteTask posts commands to the task execute resource.
func (c *Client) ExecuteTask(ctx context.Context, commands ...kieapi.Command) (kieapi.CommandsResponse, error) {
	return c.execute(ctx, "rest/task/execute", kieapi.CommandsRequest{
		User:     c.config.User,
		Commands: commands,
	})
}

// ExecuteRequest posts a prepared command request to the given execute resource path.
func (c *Client) ExecuteRequest(ctx context.Context, path string, req kieapi.CommandsRequest) (kieapi.CommandsResponse, error) {
	return c.execute(ctx, path, req)
}

func (c *Client) execute(ctx context.Context, path string, req kieapi.CommandsRequest) (kieapi.CommandsResponse, error) {
	var out kieapi.CommandsResponse
	err := c.call(ctx, request{
		method:    http.MethodPost,
		path:      path,
		body:      req,
		mediaType: kieapi.MediaTypeXML,
	}, &out)
	return out, err
}

// TaskQuery selects tasks for QueryTasks. Zero fields are not sent.
type TaskQuery struct {
	Statuses          []kieapi.TaskStatus
	ProcessInstanceID int64
	PotentialOwner    string
	TaskOwner         string
	TaskIDs           []int64
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	for _, s := range q.Statuses {
		v.Add("status", string(s))
	}
	if q.ProcessInstanceID != 0 {
		v.Set("processInstanceId", strconv.FormatInt(q.ProcessInstanceID, 10))
	}
	if q.PotentialOwner != "" {
		v.Set("potentialOwner", q.PotentialOwner)
	}
	if q.TaskOwner != "" {
		v.Set("taskOwner", q.TaskOwner)
	}
	for _, id := range q.TaskIDs {
		v.Add("taskId", strconv.FormatInt(id, 10))
	}
	return v
}

// QueryTasks runs a task query.
func (c *Client) QueryTasks(ctx context.Context, query TaskQuery) (kieapi.TaskSummaryListResponse, error) {
	var out kieapi.TaskSummaryListResponse
	err := c.call(ctx, request{method: http.MethodGet, path: "rest/task/query", query: query.values()}, &out)
	return out, err
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, taskID int64) (kieapi.Task, error) {
	var out kieapi.Task
	err := c.call(ctx, request{method: http.MethodGet, path: taskPath(taskID, "")}, &out)
	return out, err
}

// StartTask claims and starts a task as the client's user.
func (c *Client) StartTask(ctx context.Context, taskID int64) (kieapi.GenericResponse, error) {
	var out kieapi.GenericResponse
	err := c.call(ctx, request{method: http.MethodPost, path: taskPath(taskID, "start")}, &out)
	return out, err
}

// CompleteTask completes a task, passing output variables as map_ query parameters.
func (c *Client) CompleteTask(ctx context.Context, taskID int64, params kieapi.Variables) (kieapi.GenericResponse, error) {
	var out kieapi.GenericResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   taskPath(taskID, "complete"),
		query:  variableParams(params),
	}, &out)
	return out, err
}

func taskPath(taskID int64, operation string) string {
	p := "rest/task/" + strconv.FormatInt(taskID, 10)
	if operation != "" {
		p += "/" + operation
	}
	return p
}
