package kieapi

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaType(t *testing.T) {
	for input, expected := range map[string]MediaType{
		"xml":              MediaTypeXML,
		"JSON":             MediaTypeJSON,
		"application/xml":  MediaTypeXML,
		"application/json": MediaTypeJSON,
	} {
		m, err := ParseMediaType(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, m)
	}
	_, err := ParseMediaType("text/plain")
	assert.Error(t, err)
	assert.Equal(t, "json", MediaTypeJSON.Short())
}

func TestDeploymentStatusIsFailure(t *testing.T) {
	for _, s := range []DeploymentStatus{DeploymentAccepted, DeploymentDeploying, DeploymentDeployed,
		DeploymentUndeploying, DeploymentUndeployed, DeploymentNonexistent} {
		assert.False(t, s.IsFailure(), s)
	}
	assert.True(t, DeploymentDeployFailed.IsFailure())
	assert.True(t, DeploymentUndeployFailed.IsFailure())
}

func TestDeploymentIdentifier(t *testing.T) {
	assert.Equal(t, "org.test:kjar:1.0", DeploymentIdentifier("org.test", "kjar", "1.0", "", ""))
	assert.Equal(t, "org.test:kjar:1.0", DeploymentIdentifier("org.test", "kjar", "1.0", "kbase", ""))
	assert.Equal(t, "org.test:kjar:1.0:kbase:ksession",
		DeploymentUnit{GroupID: "org.test", ArtifactID: "kjar", Version: "1.0", KBaseName: "kbase",
			KSessionName: "ksession"}.Identifier())
}

func TestParseRuntimeStrategy(t *testing.T) {
	s, err := ParseRuntimeStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategySingleton, s)
	s, err = ParseRuntimeStrategy("per_request")
	require.NoError(t, err)
	assert.Equal(t, StrategyPerRequest, s)
	_, err = ParseRuntimeStrategy("sometimes")
	assert.Error(t, err)
}

func TestCommandsRequestXMLEncoding(t *testing.T) {
	req := CommandsRequest{
		DeploymentID: "org.test:kjar:1.0",
		User:         "salaboy",
		Commands: []Command{
			StartProcessCommand{ProcessID: "org.jbpm.type.var", Parameters: Variables{
				"myobject": ldvalue.ObjectBuild().Set("text", ldvalue.String("Hello World!")).Build(),
				"name":     ldvalue.String("x"),
			}},
			StartTaskCommand{TaskID: 3, UserID: "salaboy"},
		},
	}
	data, err := MediaTypeXML.Marshal(req)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "<command-request><deployment-id>org.test:kjar:1.0</deployment-id><user>salaboy</user>")
	assert.Contains(t, s, `<start-process processId="org.jbpm.type.var"><parameters>`)
	assert.Contains(t, s, `<parameter key="name" type="string">x</parameter>`)
	assert.Contains(t, s, `<start-task taskId="3" userId="salaboy"></start-task>`)
}

func TestCommandsRequestXMLDecoding(t *testing.T) {
	doc := `<command-request>
  <deployment-id>org.test:kjar:1.0</deployment-id>
  <ver>6.2.0</ver>
  <start-process processId="org.jbpm.type.var">
    <parameters>
      <parameter key="myobject" type="json">{"text":"Hello World!"}</parameter>
      <parameter key="s" type="string">plain</parameter>
    </parameters>
  </start-process>
  <get-tasks-by-status-by-process-instance-id processInstanceId="7" language="en-UK">
    <status>Reserved</status>
  </get-tasks-by-status-by-process-instance-id>
  <get-process-instances/>
</command-request>`
	var req CommandsRequest
	require.NoError(t, MediaTypeXML.Unmarshal([]byte(doc), &req))
	assert.Equal(t, "org.test:kjar:1.0", req.DeploymentID)
	assert.Equal(t, "6.2.0", req.Version)
	require.Len(t, req.Commands, 3)

	start, ok := req.Commands[0].(StartProcessCommand)
	require.True(t, ok)
	assert.Equal(t, "Hello World!", start.Parameters["myobject"].GetByKey("text").StringValue())
	assert.Equal(t, ldvalue.String("plain"), start.Parameters["s"])

	byStatus, ok := req.Commands[1].(GetTasksByStatusByProcessInstanceIDCommand)
	require.True(t, ok)
	assert.Equal(t, int64(7), byStatus.ProcessInstanceID)
	assert.Equal(t, []TaskStatus{TaskReserved}, byStatus.Statuses)

	assert.IsType(t, GetProcessInstancesCommand{}, req.Commands[2])
}

func TestCommandsRequestUnknownCommand(t *testing.T) {
	var req CommandsRequest
	err := MediaTypeXML.Unmarshal([]byte(`<command-request><abort-everything/></command-request>`), &req)
	assert.Error(t, err)
	err = MediaTypeJSON.Unmarshal([]byte(`{"commands":[{"abort-everything":{}}]}`), &req)
	assert.Error(t, err)
}

func TestCommandsRequestJSONDecoding(t *testing.T) {
	doc := `{"deploymentId":"d","commands":[{"complete-task":{"taskId":4,"userId":"u","data":{"out":"George"}}}]}`
	var req CommandsRequest
	require.NoError(t, MediaTypeJSON.Unmarshal([]byte(doc), &req))
	require.Len(t, req.Commands, 1)
	assert.Equal(t, CompleteTaskCommand{TaskID: 4, UserID: "u", Data: StringVariables(map[string]string{"out": "George"})},
		req.Commands[0])
}

func TestCommandsResponseXMLDecoding(t *testing.T) {
	doc := `<?xml version="1.0"?>
<command-response>
  <deployment-id>org.test:kjar:1.0</deployment-id>
  <process-instance index="0"><id>5</id><process-id>org.jbpm.humantask</process-id><state>1</state></process-instance>
  <long-list index="1"><long>11</long><long>12</long></long-list>
  <task-summary-list index="2"><task-summary><id>11</id><status>Reserved</status></task-summary></task-summary-list>
  <exception index="3"><command>start-task</command><message>no such task</message></exception>
</command-response>`
	var resp CommandsResponse
	require.NoError(t, MediaTypeXML.Unmarshal([]byte(doc), &resp))
	assert.Equal(t, "org.test:kjar:1.0", resp.DeploymentID)
	require.Len(t, resp.Results, 4)

	pi, ok := resp.Result(0)
	require.True(t, ok)
	require.NotNil(t, pi.ProcessInstance)
	assert.Equal(t, int64(5), pi.ProcessInstance.ID)

	ids, _ := resp.Result(1)
	assert.Equal(t, []int64{11, 12}, ids.LongList)

	tasks, _ := resp.Result(2)
	require.Len(t, tasks.TaskSummaries, 1)
	assert.Equal(t, TaskReserved, tasks.TaskSummaries[0].Status)

	var cmdErr *CommandError
	require.ErrorAs(t, resp.Err(), &cmdErr)
	assert.Equal(t, 3, cmdErr.Index)
	assert.Equal(t, "no such task", cmdErr.Message)

	_, ok = resp.Result(9)
	assert.False(t, ok)
}

func TestCommandsResponseXMLEncodingUsesKindAsElement(t *testing.T) {
	resp := CommandsResponse{Results: []CommandResult{
		{Kind: ResultLongList, Index: 0, LongList: []int64{1}},
		{Kind: ResultTask, Index: 1, Task: &Task{ID: 1, TaskData: TaskData{Status: TaskInProgress}}},
	}}
	data, err := MediaTypeXML.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<long-list index="0"><long>1</long></long-list>`)
	assert.Contains(t, string(data), `<task index="1"><id>1</id>`)

	resp.Results = append(resp.Results, CommandResult{Kind: "mystery"})
	_, err = MediaTypeXML.Marshal(resp)
	assert.Error(t, err)
}

func TestHistoryLogListJSONDecoding(t *testing.T) {
	doc := `{"historyLogList":[
  {"variable-instance-log":{"id":1,"processInstanceId":9,"processId":"org.jbpm.scripttask.var",
    "variableId":"x","value":"initVal","oldValue":null}},
  {"node-instance-log":{"id":2,"nodeName":"Script"}},
  {"process-instance-log":{"id":3,"processInstanceId":9,"status":2,"identity":"salaboy"}},
  {"variable-instance-log":{"id":4,"processInstanceId":9,"variableId":"y","value":"v","unexpected":[1,2]}}
]}`
	var list HistoryLogList
	require.NoError(t, MediaTypeJSON.Unmarshal([]byte(doc), &list))
	require.Len(t, list.VariableLogs, 2)
	require.Len(t, list.ProcessLogs, 1)
	assert.Equal(t, VariableInstanceLog{ID: 1, ProcessInstanceID: 9, ProcessID: "org.jbpm.scripttask.var",
		VariableID: "x", Value: "initVal"}, list.VariableLogs[0])
	assert.Equal(t, "salaboy", list.ProcessLogs[0].Identity)
	assert.Len(t, list.VariableLogsFor("x"), 1)

	assert.Error(t, MediaTypeJSON.Unmarshal([]byte(`{"historyLogList":[{"variable-instance-log":`), &list))
}

func TestHistoryLogListJSONEncoding(t *testing.T) {
	list := HistoryLogList{VariableLogs: []VariableInstanceLog{{ID: 1, VariableID: "x", Value: "a"}}}
	data, err := MediaTypeJSON.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, `{"historyLogList":[{"variable-instance-log":{"id":1,"processInstanceId":0,"processId":"",
		"variableInstanceId":"","variableId":"x","value":"a","oldValue":""}}]}`, string(data))
}

func TestHistoryLogListKeepsServerOrder(t *testing.T) {
	doc := `{"historyLogList":[
  {"process-instance-log":{"id":1,"processInstanceId":9,"status":1,"identity":"salaboy"}},
  {"variable-instance-log":{"id":2,"processInstanceId":9,"variableId":"x","value":"a"}},
  {"process-instance-log":{"id":3,"processInstanceId":9,"status":2,"identity":"salaboy"}}
]}`
	var list HistoryLogList
	require.NoError(t, MediaTypeJSON.Unmarshal([]byte(doc), &list))

	for _, mediaType := range []MediaType{MediaTypeJSON, MediaTypeXML} {
		t.Run(mediaType.Short(), func(t *testing.T) {
			data, err := mediaType.Marshal(list)
			require.NoError(t, err)
			var decoded HistoryLogList
			require.NoError(t, mediaType.Unmarshal(data, &decoded))

			var ids []int64
			_ = decoded.each(func(v VariableInstanceLog) error {
				ids = append(ids, v.ID)
				return nil
			}, func(p ProcessInstanceLog) error {
				ids = append(ids, p.ID)
				return nil
			})
			assert.Equal(t, []int64{1, 2, 3}, ids)
		})
	}
}

func TestHistoryLogListXMLSkipsOtherKinds(t *testing.T) {
	doc := `<log-instance-list>
  <variable-instance-log><id>1</id><variable-id>x</variable-id><value>a</value></variable-instance-log>
  <node-instance-log><id>2</id><node-name>Script</node-name></node-instance-log>
  <process-instance-log><id>3</id><identity>salaboy</identity></process-instance-log>
</log-instance-list>`
	var list HistoryLogList
	require.NoError(t, MediaTypeXML.Unmarshal([]byte(doc), &list))
	require.Len(t, list.VariableLogs, 1)
	require.Len(t, list.ProcessLogs, 1)
	assert.Equal(t, "a", list.VariableLogs[0].Value)
	assert.Equal(t, "salaboy", list.ProcessLogs[0].Identity)
}

func TestHistoryLogListKeepsLargeIDsExact(t *testing.T) {
	const big = int64(1)<<53 + 1
	list := HistoryLogList{
		VariableLogs: []VariableInstanceLog{{ID: big, ProcessInstanceID: big + 2, VariableID: "x"}},
		ProcessLogs:  []ProcessInstanceLog{{ID: big + 4, ProcessInstanceID: big + 2}},
	}
	data, err := MediaTypeJSON.Marshal(list)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":9007199254740993`)

	var decoded HistoryLogList
	require.NoError(t, MediaTypeJSON.Unmarshal(data, &decoded))
	require.Len(t, decoded.VariableLogs, 1)
	require.Len(t, decoded.ProcessLogs, 1)
	assert.Equal(t, big, decoded.VariableLogs[0].ID)
	assert.Equal(t, big+2, decoded.VariableLogs[0].ProcessInstanceID)
	assert.Equal(t, big+4, decoded.ProcessLogs[0].ID)
}

func TestDetectMediaType(t *testing.T) {
	m, ok := DetectMediaType([]byte("  <process-instance-response/>"))
	assert.True(t, ok)
	assert.Equal(t, MediaTypeXML, m)
	m, ok = DetectMediaType([]byte(`{"id":1}`))
	assert.True(t, ok)
	assert.Equal(t, MediaTypeJSON, m)
	_, ok = DetectMediaType(nil)
	assert.False(t, ok)
}
