package kietests

import (
	"github.com/kiegroup/kie-remote-tests/kieapi"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

// The functions in this file are for convenient use of the matchers API with the REST model
// types. For more information, see matchers.Transform.

func TaskSummaryID() m.MatcherTransform {
	return m.Transform(
		"task id",
		func(value interface{}) (interface{}, error) {
			return value.(kieapi.TaskSummary).ID, nil
		}).
		EnsureInputValueType(kieapi.TaskSummary{})
}

func TaskSummaryStatus() m.MatcherTransform {
	return m.Transform(
		"task status",
		func(value interface{}) (interface{}, error) {
			return value.(kieapi.TaskSummary).Status, nil
		}).
		EnsureInputValueType(kieapi.TaskSummary{})
}

func TaskDataStatus() m.MatcherTransform {
	return m.Transform(
		"task status",
		func(value interface{}) (interface{}, error) {
			return value.(kieapi.Task).TaskData.Status, nil
		}).
		EnsureInputValueType(kieapi.Task{})
}

func VariableLogValue() m.MatcherTransform {
	return m.Transform(
		"variable value",
		func(value interface{}) (interface{}, error) {
			return value.(kieapi.VariableInstanceLog).Value, nil
		}).
		EnsureInputValueType(kieapi.VariableInstanceLog{})
}

// IsVariableLogOf matches a log entry for the given variable of one process instance.
func IsVariableLogOf(variableID, processID string, processInstanceID int64) m.Matcher {
	return m.AllOf(
		m.Transform("variable id", func(value interface{}) (interface{}, error) {
			return value.(kieapi.VariableInstanceLog).VariableID, nil
		}).EnsureInputValueType(kieapi.VariableInstanceLog{}).Should(m.Equal(variableID)),
		m.Transform("process id", func(value interface{}) (interface{}, error) {
			return value.(kieapi.VariableInstanceLog).ProcessID, nil
		}).EnsureInputValueType(kieapi.VariableInstanceLog{}).Should(m.Equal(processID)),
		m.Transform("process instance id", func(value interface{}) (interface{}, error) {
			return value.(kieapi.VariableInstanceLog).ProcessInstanceID, nil
		}).EnsureInputValueType(kieapi.VariableInstanceLog{}).Should(m.Equal(processInstanceID)),
	)
}

// IsReservedTask matches a task summary in the Reserved state.
func IsReservedTask() m.Matcher {
	return TaskSummaryStatus().Should(m.Equal(kieapi.TaskReserved))
}
