package mockkie

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kiegroup/kie-remote-tests/data"
	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

var (
	errNoDeployment = errors.New("deployment not found")
	errNoProcess    = errors.New("process definition not found")
	errNoInstance   = errors.New("process instance not found")
	errNoTask       = errors.New("task not found")
	errTaskState    = errors.New("illegal task state transition")
	errPermission   = errors.New("permission denied")
)

type processInstance struct {
	id           int64
	processID    string
	deploymentID string
	state        int
	initiator    string
	variables    kieapi.Variables
}

func (p *processInstance) toAPI() kieapi.ProcessInstance {
	return kieapi.ProcessInstance{ID: p.id, ProcessID: p.processID, State: p.state}
}

type task struct {
	id         int64
	name       string
	status     kieapi.TaskStatus
	owner      string
	createdBy  string
	instanceID int64
	processID  string
	deployment string
}

func (t *task) summary() kieapi.TaskSummary {
	return kieapi.TaskSummary{
		ID:                t.id,
		Name:              t.name,
		Status:            t.status,
		ActualOwner:       t.owner,
		CreatedBy:         t.createdBy,
		ProcessInstanceID: t.instanceID,
		ProcessID:         t.processID,
		DeploymentID:      t.deployment,
	}
}

func (t *task) toAPI() kieapi.Task {
	return kieapi.Task{
		ID:   t.id,
		Name: t.name,
		TaskData: kieapi.TaskData{
			Status:            t.status,
			ActualOwner:       t.owner,
			CreatedBy:         t.createdBy,
			ProcessInstanceID: t.instanceID,
			ProcessID:         t.processID,
			DeploymentID:      t.deployment,
			WorkItemID:        t.id,
		},
	}
}

// The methods below expect s.lock to be held.

func (s *Server) startProcessLocked(deploymentID, processID, user string, params kieapi.Variables) (*processInstance, error) {
	d := s.deployments[deploymentID]
	if d == nil || d.unit.Status != kieapi.DeploymentDeployed {
		return nil, fmt.Errorf("%w: %s", errNoDeployment, deploymentID)
	}
	script, ok := s.scripts[processID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoProcess, processID)
	}
	s.lastID.instance++
	p := &processInstance{
		id:           s.lastID.instance,
		processID:    processID,
		deploymentID: deploymentID,
		state:        kieapi.ProcessStateActive,
		initiator:    user,
		variables:    kieapi.Variables{},
	}
	s.instances[p.id] = p
	for _, name := range script.Variables {
		if value, ok := params[name]; ok {
			s.setVariableLocked(p, name, value)
		}
	}
	s.runStepsLocked(p, script, script.OnStart)
	return p, nil
}

func (s *Server) runStepsLocked(p *processInstance, script data.ProcessScript, steps []data.ScriptStep) {
	for _, step := range steps {
		switch {
		case step.SetVariable != "" && step.TypeOf != "":
			s.setVariableLocked(p, step.SetVariable, ldvalue.String(typeName(p.variables[step.TypeOf])))
		case step.SetVariable != "":
			s.setVariableLocked(p, step.SetVariable, ldvalue.String(step.Value))
		case step.CreateTask != "":
			s.lastID.task++
			t := &task{
				id:         s.lastID.task,
				name:       step.CreateTask,
				status:     kieapi.TaskReserved,
				owner:      p.initiator,
				createdBy:  p.initiator,
				instanceID: p.id,
				processID:  p.processID,
				deployment: p.deploymentID,
			}
			s.tasks[t.id] = t
		case step.Complete:
			// a join: the process ends only when its last open task is done
			if len(s.openTasksLocked(p.id)) == 0 {
				p.state = kieapi.ProcessStateCompleted
			}
		}
	}
}

func (s *Server) setVariableLocked(p *processInstance, name string, value ldvalue.Value) {
	old, hadOld := p.variables[name]
	p.variables[name] = value
	s.lastID.log++
	entry := kieapi.VariableInstanceLog{
		ID:                 s.lastID.log,
		ProcessInstanceID:  p.id,
		ProcessID:          p.processID,
		VariableInstanceID: name,
		VariableID:         name,
		Value:              variableText(value),
	}
	if hadOld {
		entry.OldValue = variableText(old)
	}
	s.logs = append(s.logs, entry)
}

func (s *Server) openTasksLocked(instanceID int64) []*task {
	var ret []*task
	for _, t := range s.sortedTasksLocked() {
		if t.instanceID == instanceID && t.status != kieapi.TaskCompleted && t.status != kieapi.TaskExited {
			ret = append(ret, t)
		}
	}
	return ret
}

func (s *Server) startTaskLocked(taskID int64, user string) error {
	t := s.tasks[taskID]
	if t == nil {
		return fmt.Errorf("%w: %d", errNoTask, taskID)
	}
	if t.owner != user {
		return fmt.Errorf("%w: %s is not the owner of task %d", errPermission, user, taskID)
	}
	if t.status != kieapi.TaskReserved && t.status != kieapi.TaskReady {
		return fmt.Errorf("%w: cannot start task %d in status %s", errTaskState, taskID, t.status)
	}
	t.status = kieapi.TaskInProgress
	return nil
}

func (s *Server) completeTaskLocked(taskID int64, user string, outputs kieapi.Variables) error {
	t := s.tasks[taskID]
	if t == nil {
		return fmt.Errorf("%w: %d", errNoTask, taskID)
	}
	if t.owner != user {
		return fmt.Errorf("%w: %s is not the owner of task %d", errPermission, user, taskID)
	}
	if t.status == kieapi.TaskCompleted && s.config.Faults.RepeatableCompletion {
		return nil
	}
	if t.status != kieapi.TaskInProgress {
		return fmt.Errorf("%w: cannot complete task %d in status %s", errTaskState, taskID, t.status)
	}
	t.status = kieapi.TaskCompleted

	p := s.instances[t.instanceID]
	script := s.scripts[p.processID]
	taskScript := script.Tasks[t.name]
	for _, output := range outputs.Keys() {
		if variable, ok := taskScript.Outputs[output]; ok {
			s.setVariableLocked(p, variable, outputs[output])
		}
	}
	s.runStepsLocked(p, script, taskScript.OnComplete)
	return nil
}

func (s *Server) queryTasksLocked(filter func(*task) bool) []kieapi.TaskSummary {
	ret := []kieapi.TaskSummary{}
	for _, t := range s.sortedTasksLocked() {
		if filter(t) {
			ret = append(ret, t.summary())
		}
	}
	return ret
}

func (s *Server) sortedTasksLocked() []*task {
	ret := make([]*task, 0, len(s.tasks))
	for id := int64(1); id <= s.lastID.task; id++ {
		if t, ok := s.tasks[id]; ok {
			ret = append(ret, t)
		}
	}
	return ret
}

func (s *Server) variableLogsLocked(filter func(kieapi.VariableInstanceLog) bool) []kieapi.VariableInstanceLog {
	var ret []kieapi.VariableInstanceLog
	for _, l := range s.logs {
		if filter(l) {
			ret = append(ret, l)
		}
	}
	return ret
}

// typeName imitates the simple Java class name a script would see for a value. Objects standing in
// for custom classes name their class in an "@class" property.
func typeName(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.StringType:
		return "String"
	case ldvalue.BoolType:
		return "Boolean"
	case ldvalue.NumberType:
		if v.IsInt() {
			return "Integer"
		}
		return "Float"
	case ldvalue.ArrayType:
		if v.Count() == 0 {
			return "Object[]"
		}
		return typeName(v.GetByIndex(0)) + "[]"
	case ldvalue.ObjectType:
		if class := v.GetByKey("@class"); class.IsString() {
			name := class.StringValue()
			return name[strings.LastIndex(name, ".")+1:]
		}
		return "Object"
	}
	return "null"
}

func variableText(v ldvalue.Value) string {
	if v.IsString() {
		return v.StringValue()
	}
	return v.JSONString()
}
