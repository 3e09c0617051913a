// Package remote is a client-side view of a deployment's engine, in the shape of the KIE remote
// API: a session, a task service and an audit log service. Every call is a command request sent
// to the deployment's execute resource.
package remote

import (
	"context"
	"fmt"

	"github.com/kiegroup/kie-remote-tests/framework"
	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/kieclient"
)

// RuntimeEngine gives access to the services of one deployment.
type RuntimeEngine struct {
	client       *kieclient.Client
	deploymentID string
}

// NewRuntimeFactory creates a RuntimeEngine for a deployment, authenticating as user.
func NewRuntimeFactory(deploymentID, baseURL, user, password string, logger framework.Logger) (*RuntimeEngine, error) {
	client, err := kieclient.New(kieclient.Config{
		BaseURL:   baseURL,
		User:      user,
		Password:  password,
		MediaType: kieapi.MediaTypeXML,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	return NewRuntimeEngine(client, deploymentID), nil
}

// NewRuntimeEngine creates a RuntimeEngine that uses an existing client.
func NewRuntimeEngine(client *kieclient.Client, deploymentID string) *RuntimeEngine {
	return &RuntimeEngine{client: client, deploymentID: deploymentID}
}

func (e *RuntimeEngine) DeploymentID() string { return e.deploymentID }

func (e *RuntimeEngine) KieSession() *KieSession { return &KieSession{engine: e} }

func (e *RuntimeEngine) TaskService() *TaskService { return &TaskService{engine: e} }

func (e *RuntimeEngine) AuditLogService() *AuditLogService { return &AuditLogService{engine: e} }

// execute sends one command and returns its result. A command that threw on the server, or a
// result of another kind than expected, is an error.
func (e *RuntimeEngine) execute(ctx context.Context, cmd kieapi.Command, expectedKind string) (kieapi.CommandResult, error) {
	resp, err := e.client.Execute(ctx, e.deploymentID, cmd)
	if err != nil {
		return kieapi.CommandResult{}, err
	}
	if err := resp.Err(); err != nil {
		return kieapi.CommandResult{}, err
	}
	result, ok := resp.Result(0)
	if expectedKind == "" {
		return result, nil
	}
	if !ok {
		return result, fmt.Errorf("%s returned no result", cmd.CommandName())
	}
	if result.Kind != expectedKind {
		return result, fmt.Errorf("%s returned a %s result, expected %s", cmd.CommandName(), result.Kind, expectedKind)
	}
	return result, nil
}

// KieSession starts and lists process instances.
type KieSession struct {
	engine *RuntimeEngine
}

func (s *KieSession) StartProcess(ctx context.Context, processID string) (kieapi.ProcessInstance, error) {
	return s.StartProcessWithParams(ctx, processID, nil)
}

func (s *KieSession) StartProcessWithParams(
	ctx context.Context,
	processID string,
	params kieapi.Variables,
) (kieapi.ProcessInstance, error) {
	result, err := s.engine.execute(ctx, kieapi.StartProcessCommand{ProcessID: processID, Parameters: params},
		kieapi.ResultProcessInstance)
	if err != nil {
		return kieapi.ProcessInstance{}, err
	}
	if result.ProcessInstance == nil {
		return kieapi.ProcessInstance{}, fmt.Errorf("start-process returned an empty result")
	}
	return *result.ProcessInstance, nil
}

// GetProcessInstances returns the active process instances of the deployment.
func (s *KieSession) GetProcessInstances(ctx context.Context) ([]kieapi.ProcessInstance, error) {
	result, err := s.engine.execute(ctx, kieapi.GetProcessInstancesCommand{}, kieapi.ResultProcessInstanceList)
	return result.ProcessInstances, err
}

// TaskService queries and operates on human tasks.
type TaskService struct {
	engine *RuntimeEngine
}

func (t *TaskService) GetTasksAssignedAsPotentialOwner(ctx context.Context, userID, language string) ([]kieapi.TaskSummary, error) {
	result, err := t.engine.execute(ctx,
		kieapi.GetTasksAssignedAsPotentialOwnerCommand{UserID: userID, Language: language}, kieapi.ResultTaskSummaryList)
	return result.TaskSummaries, err
}

func (t *TaskService) GetTaskByID(ctx context.Context, taskID int64) (kieapi.Task, error) {
	result, err := t.engine.execute(ctx, kieapi.GetTaskCommand{TaskID: taskID}, kieapi.ResultTask)
	if err != nil {
		return kieapi.Task{}, err
	}
	if result.Task == nil {
		return kieapi.Task{}, fmt.Errorf("task %d was not found", taskID)
	}
	return *result.Task, nil
}

func (t *TaskService) Start(ctx context.Context, taskID int64, userID string) error {
	_, err := t.engine.execute(ctx, kieapi.StartTaskCommand{TaskID: taskID, UserID: userID}, "")
	return err
}

func (t *TaskService) Complete(ctx context.Context, taskID int64, userID string, data kieapi.Variables) error {
	_, err := t.engine.execute(ctx, kieapi.CompleteTaskCommand{TaskID: taskID, UserID: userID, Data: data}, "")
	return err
}

func (t *TaskService) GetTasksByStatusByProcessInstanceID(
	ctx context.Context,
	processInstanceID int64,
	statuses []kieapi.TaskStatus,
	language string,
) ([]kieapi.TaskSummary, error) {
	result, err := t.engine.execute(ctx, kieapi.GetTasksByStatusByProcessInstanceIDCommand{
		ProcessInstanceID: processInstanceID,
		Statuses:          statuses,
		Language:          language,
	}, kieapi.ResultTaskSummaryList)
	return result.TaskSummaries, err
}

func (t *TaskService) GetTasksByProcessInstanceID(ctx context.Context, processInstanceID int64) ([]int64, error) {
	result, err := t.engine.execute(ctx,
		kieapi.GetTasksByProcessInstanceIDCommand{ProcessInstanceID: processInstanceID}, kieapi.ResultLongList)
	return result.LongList, err
}

// AuditLogService reads the history logs.
type AuditLogService struct {
	engine *RuntimeEngine
}

func (a *AuditLogService) FindVariableInstancesByName(
	ctx context.Context,
	variableID string,
	onlyActive bool,
) ([]kieapi.VariableInstanceLog, error) {
	result, err := a.engine.execute(ctx,
		kieapi.FindVariableInstancesByNameCommand{VariableID: variableID, OnlyActive: onlyActive},
		kieapi.ResultVariableLogList)
	return result.VariableLogs, err
}
