package kietests

import (
	"github.com/kiegroup/kie-remote-tests/framework/itest"
	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRemoteAPITests(t *itest.T) {
	t.RequireCapability(CapabilityRemoteAPI)

	t.Run("remote api human task process", doRemoteAPIHumanTaskProcess)
	t.Run("commands task commands", doCommandsTaskCommands)
	t.Run("remote api serialization", doRemoteAPISerialization)
	t.Run("remote api extra jaxb classes", doRemoteAPIExtraJAXBClasses)
}

func doRemoteAPIHumanTaskProcess(t *itest.T) {
	c := requireContext(t)
	engine := c.remoteEngine(t)
	ctx := requestContext(t)
	user, language := c.config.Tasks.User, c.config.Tasks.Language

	p, err := engine.KieSession().StartProcess(ctx, humanTaskProcessID)
	require.NoError(t, err)

	taskService := engine.TaskService()
	tasks, err := taskService.GetTasksAssignedAsPotentialOwner(ctx, user, language)
	require.NoError(t, err)
	var taskID int64
	for _, task := range tasks {
		if task.ProcessInstanceID == p.ID {
			taskID = task.ID
			break
		}
	}
	require.NotZero(t, taskID, "no task of process instance %d is assigned to %s", p.ID, user)

	task, err := taskService.GetTaskByID(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)

	require.NoError(t, taskService.Start(ctx, taskID, user))
	require.NoError(t, taskService.Complete(ctx, taskID, user, nil))

	err = taskService.Complete(ctx, taskID, user, nil)
	require.Error(t, err, "completing task %d a second time should have failed", taskID)
	t.Debug("second completion failed as expected: %s", err)

	reserved, err := taskService.GetTasksByStatusByProcessInstanceID(ctx, p.ID,
		[]kieapi.TaskStatus{kieapi.TaskReserved}, language)
	require.NoError(t, err)
	m.In(t).Assert(reserved, m.Items(IsReservedTask(), IsReservedTask()))
}

func doCommandsTaskCommands(t *itest.T) {
	c := requireContext(t)
	engine := c.remoteEngine(t)
	ctx := requestContext(t)

	p, err := engine.KieSession().StartProcess(ctx, humanTaskProcessID)
	require.NoError(t, err)

	ids, err := engine.TaskService().GetTasksByProcessInstanceID(ctx, p.ID)
	require.NoError(t, err)
	require.NotEmpty(t, ids)
	assert.Greater(t, ids[0], int64(0))
}

func doRemoteAPISerialization(t *itest.T) {
	c := requireContext(t)
	engine := c.remoteEngine(t)
	ctx := requestContext(t)

	_, err := engine.KieSession().StartProcess(ctx, scriptTaskProcessID)
	require.NoError(t, err)

	_, err = engine.KieSession().GetProcessInstances(ctx)
	require.NoError(t, err)
}

func doRemoteAPIExtraJAXBClasses(t *itest.T) {
	c := requireContext(t)
	engine := c.remoteEngine(t)
	ctx := requestContext(t)

	inputs := []struct {
		name         string
		value        ldvalue.Value
		expectedType string
	}{
		{
			name: "custom object",
			value: ldvalue.ObjectBuild().
				Set("@class", ldvalue.String(myTypeClassName)).
				Set("text", ldvalue.String("a")).
				Set("data", ldvalue.Int(10)).
				Build(),
			expectedType: "MyType",
		},
		{
			name:         "float array",
			value:        ldvalue.ArrayOf(ldvalue.Float64(10.3), ldvalue.Float64(5.6)),
			expectedType: "Float[]",
		},
	}

	instanceIDs := make([]int64, len(inputs))
	for i, input := range inputs {
		p, err := engine.KieSession().StartProcessWithParams(ctx, objectVariableProcessID,
			kieapi.Variables{objectVariableInputName: input.value})
		require.NoError(t, err, "starting process with %s", input.name)
		instanceIDs[i] = p.ID
	}

	logs, err := engine.AuditLogService().FindVariableInstancesByName(ctx, objectVariableTypeVariable, false)
	require.NoError(t, err)

	for i, input := range inputs {
		t.Run(input.name, func(t *itest.T) {
			var found []kieapi.VariableInstanceLog
			for _, l := range logs {
				if l.ProcessInstanceID == instanceIDs[i] {
					found = append(found, l)
				}
			}
			m.In(t).Assert(found, m.Items(m.AllOf(
				IsVariableLogOf(objectVariableTypeVariable, objectVariableProcessID, instanceIDs[i]),
				VariableLogValue().Should(m.Equal(input.expectedType)),
			)))
		})
	}
}
