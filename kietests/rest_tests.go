package kietests

import (
	"net/http"

	"github.com/kiegroup/kie-remote-tests/data"
	"github.com/kiegroup/kie-remote-tests/framework/itest"
	"github.com/kiegroup/kie-remote-tests/kieapi"
	"github.com/kiegroup/kie-remote-tests/kieclient"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRESTTests(t *itest.T) {
	for _, mediaType := range requireContext(t).mediaTypes {
		mediaType := mediaType
		t.Run(mediaType.Short(), func(t *itest.T) {
			t.Run("urls start human task process", func(t *itest.T) {
				doURLsStartHumanTaskProcess(t, mediaType)
			})
			t.Run("urls history logs", func(t *itest.T) {
				doURLsHistoryLogs(t, mediaType)
			})
			t.Run("urls data service coupling", func(t *itest.T) {
				doURLsDataServiceCoupling(t, mediaType)
			})
			t.Run("urls human task with form variable change", func(t *itest.T) {
				doURLsHumanTaskWithFormVariableChange(t, mediaType)
			})
		})
	}
	t.Run("urls json jaxb start process", doURLsJSONJAXBStartProcess)
	t.Run("urls accept header is fixed", doURLsAcceptHeaderIsFixed)
	t.Run("commands start process", doCommandsStartProcess)
}

func doURLsStartHumanTaskProcess(t *itest.T, mediaType kieapi.MediaType) {
	c := requireContext(t)
	client := c.restClient(t, mediaType)
	ctx := requestContext(t)

	p, err := client.StartProcess(ctx, c.deploymentID(), humanTaskProcessID, nil)
	require.NoError(t, err)
	assert.Equal(t, humanTaskProcessID, p.ProcessID)

	tasks, err := client.QueryTasks(ctx, kieclient.TaskQuery{
		Statuses:          []kieapi.TaskStatus{kieapi.TaskReserved},
		ProcessInstanceID: p.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, tasks.Tasks, "no Reserved task for process instance %d", p.ID)
	taskID := tasks.Tasks[0].ID

	task, err := client.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)

	_, err = client.StartTask(ctx, taskID)
	require.NoError(t, err)

	task, err = client.GetTask(ctx, taskID)
	require.NoError(t, err)
	m.In(t).Assert(task, TaskDataStatus().Should(m.Equal(kieapi.TaskInProgress)))
}

func doURLsHistoryLogs(t *itest.T, mediaType kieapi.MediaType) {
	cases, err := data.LoadVariableHistoryCases()
	require.NoError(t, err)
	for _, hc := range cases {
		hc := hc
		t.Run(hc.Description, func(t *itest.T) {
			c := requireContext(t)
			client := c.restClient(t, mediaType)
			ctx := requestContext(t)

			p, err := client.StartProcess(ctx, c.deploymentID(), scriptTaskVarProcessID,
				kieapi.StringVariables(map[string]string{"x": hc.InitialValue}))
			require.NoError(t, err)

			history, err := client.VariableHistory(ctx, c.deploymentID(), p.ID, "x")
			require.NoError(t, err)

			expected := make([]m.Matcher, 0, len(hc.ExpectedValues))
			for _, v := range hc.ExpectedValues {
				expected = append(expected, m.AllOf(
					IsVariableLogOf("x", scriptTaskVarProcessID, p.ID),
					VariableLogValue().Should(m.Equal(v)),
				))
			}
			m.In(t).Assert(history.VariableLogs, m.Items(expected...))
		})
	}
}

func doURLsDataServiceCoupling(t *itest.T, mediaType kieapi.MediaType) {
	t.RequireCapability(CapabilityDataService)
	c := requireContext(t)
	client := c.restClient(t, mediaType)
	ctx := requestContext(t)

	p, err := client.StartProcess(ctx, c.deploymentID(), scriptTaskVarProcessID,
		kieapi.StringVariables(map[string]string{"x": "initVal"}))
	require.NoError(t, err)

	summary, err := client.ProcessInstanceSummary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, summary.ID)
	assert.Equal(t, scriptTaskVarProcessID, summary.ProcessID)
	assert.Equal(t, c.config.Server.User, summary.Initiator)
}

func doURLsHumanTaskWithFormVariableChange(t *itest.T, mediaType kieapi.MediaType) {
	c := requireContext(t)
	client := c.restClient(t, mediaType)
	ctx := requestContext(t)

	p, err := client.StartProcess(ctx, c.deploymentID(), humanTaskVarProcessID,
		kieapi.StringVariables(map[string]string{"userName": "John"}))
	require.NoError(t, err)

	tasks, err := client.QueryTasks(ctx, kieclient.TaskQuery{ProcessInstanceID: p.ID})
	require.NoError(t, err)
	require.Len(t, tasks.Tasks, 1)
	taskID := tasks.Tasks[0].ID

	_, err = client.StartTask(ctx, taskID)
	require.NoError(t, err)
	_, err = client.CompleteTask(ctx, taskID, kieapi.StringVariables(map[string]string{"outUserName": "George"}))
	require.NoError(t, err)

	history, err := client.VariableHistory(ctx, c.deploymentID(), p.ID, "userName")
	require.NoError(t, err)
	values := make([]string, 0, len(history.VariableLogs))
	for _, l := range history.VariableLogs {
		values = append(values, l.Value)
	}
	assert.Contains(t, values, "George")
}

func startProcessPath(c KieTestContext, processID string) string {
	return "rest/runtime/" + c.deploymentID() + "/process/" + processID + "/start"
}

func doURLsJSONJAXBStartProcess(t *itest.T) {
	c := requireContext(t)
	client := c.restClient(t, kieapi.MediaTypeXML)
	ctx := requestContext(t)
	path := startProcessPath(c, humanTaskProcessID)

	t.Run("default is xml", func(t *itest.T) {
		status, body, err := client.RawPost(ctx, path, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status, body)
		m.In(t).Assert(body, m.StringHasPrefix("<"))
	})

	t.Run("accept json", func(t *itest.T) {
		status, body, err := client.RawPost(ctx, path, string(kieapi.MediaTypeJSON))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status, body)
		m.In(t).Assert(body, m.StringHasPrefix("{"))
	})
}

func doURLsAcceptHeaderIsFixed(t *itest.T) {
	c := requireContext(t)
	client := c.restClient(t, kieapi.MediaTypeXML)

	status, body, err := client.RawPost(requestContext(t), startProcessPath(c, scriptTaskProcessID), "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status, body)
}

func doCommandsStartProcess(t *itest.T) {
	t.RequireCapability(CapabilityRemoteAPI)
	c := requireContext(t)
	client := c.restClient(t, kieapi.MediaTypeXML)
	ctx := requestContext(t)
	user := c.config.Tasks.User

	resp, err := client.Execute(ctx, c.deploymentID(), kieapi.StartProcessCommand{ProcessID: humanTaskProcessID})
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	started, ok := resp.Result(0)
	require.True(t, ok, "no result for start-process command")
	require.NotNil(t, started.ProcessInstance)

	resp, err = client.Execute(ctx, c.deploymentID(), kieapi.GetTasksByProcessInstanceIDCommand{
		ProcessInstanceID: started.ProcessInstance.ID,
	})
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	ids, _ := resp.Result(0)
	require.NotEmpty(t, ids.LongList, "no tasks for process instance %d", started.ProcessInstance.ID)
	taskID := ids.LongList[0]

	resp, err = client.Execute(ctx, c.deploymentID(), kieapi.StartTaskCommand{TaskID: taskID, UserID: user})
	require.NoError(t, err)
	require.NoError(t, resp.Err())

	resp, err = client.ExecuteTask(ctx, kieapi.CompleteTaskCommand{TaskID: taskID, UserID: user})
	require.NoError(t, err)
	require.NoError(t, resp.Err())

	task, err := client.GetTask(ctx, taskID)
	require.NoError(t, err)
	m.In(t).Assert(task, TaskDataStatus().Should(m.Equal(kieapi.TaskCompleted)))
}
