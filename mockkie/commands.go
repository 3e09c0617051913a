package mockkie

import (
	"fmt"
	"io"
	"net/http"

	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/gorilla/mux"
	"golang.org/x/exp/slices"
)

func (s *Server) executeRuntime(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, mux.Vars(r)["deploymentId"])
}

func (s *Server) executeTask(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, "")
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, deploymentID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "%s", err)
		return
	}
	var req kieapi.CommandsRequest
	if err := requestMediaType(r).Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "could not parse command request: %s", err)
		return
	}
	if deploymentID == "" {
		deploymentID = req.DeploymentID
	}
	user := req.User
	if user == "" {
		user = s.requestUser(r)
	}

	resp := kieapi.CommandsResponse{DeploymentID: deploymentID, Version: req.Version}
	s.lock.Lock()
	for i, cmd := range req.Commands {
		result, err := s.runCommandLocked(deploymentID, user, cmd)
		if err != nil {
			resp.Results = append(resp.Results, kieapi.CommandResult{
				Kind:  kieapi.ResultException,
				Index: i,
				Exception: &kieapi.CommandException{
					CommandName: cmd.CommandName(),
					Message:     err.Error(),
				},
			})
			break
		}
		if result != nil {
			result.Index = i
			resp.Results = append(resp.Results, *result)
		}
	}
	s.lock.Unlock()
	writeResponse(w, r, http.StatusOK, resp)
}

// runCommandLocked returns nil for commands that produce no value.
func (s *Server) runCommandLocked(deploymentID, user string, cmd kieapi.Command) (*kieapi.CommandResult, error) {
	switch c := cmd.(type) {
	case kieapi.StartProcessCommand:
		p, err := s.startProcessLocked(deploymentID, c.ProcessID, user, c.Parameters)
		if err != nil {
			return nil, err
		}
		pi := p.toAPI()
		return &kieapi.CommandResult{Kind: kieapi.ResultProcessInstance, ProcessInstance: &pi}, nil

	case kieapi.GetProcessInstancesCommand:
		list := []kieapi.ProcessInstance{}
		for id := int64(1); id <= s.lastID.instance; id++ {
			if p := s.instances[id]; p != nil && p.deploymentID == deploymentID && p.state == kieapi.ProcessStateActive {
				list = append(list, p.toAPI())
			}
		}
		return &kieapi.CommandResult{Kind: kieapi.ResultProcessInstanceList, ProcessInstances: list}, nil

	case kieapi.GetTasksByProcessInstanceIDCommand:
		ids := []int64{}
		for _, t := range s.sortedTasksLocked() {
			if t.instanceID == c.ProcessInstanceID {
				ids = append(ids, t.id)
			}
		}
		return &kieapi.CommandResult{Kind: kieapi.ResultLongList, LongList: ids}, nil

	case kieapi.GetTasksByStatusByProcessInstanceIDCommand:
		tasks := s.queryTasksLocked(func(t *task) bool {
			return t.instanceID == c.ProcessInstanceID && slices.Contains(c.Statuses, t.status)
		})
		return &kieapi.CommandResult{
			Kind:          kieapi.ResultTaskSummaryList,
			TaskSummaries: s.config.Faults.applyToReservedTasks(tasks),
		}, nil

	case kieapi.GetTasksAssignedAsPotentialOwnerCommand:
		tasks := s.queryTasksLocked(func(t *task) bool {
			return t.owner == c.UserID &&
				(t.status == kieapi.TaskReady || t.status == kieapi.TaskReserved || t.status == kieapi.TaskInProgress)
		})
		return &kieapi.CommandResult{Kind: kieapi.ResultTaskSummaryList, TaskSummaries: tasks}, nil

	case kieapi.GetTaskCommand:
		t := s.tasks[c.TaskID]
		if t == nil {
			return nil, fmt.Errorf("%w: %d", errNoTask, c.TaskID)
		}
		task := t.toAPI()
		return &kieapi.CommandResult{Kind: kieapi.ResultTask, Task: &task}, nil

	case kieapi.StartTaskCommand:
		return nil, s.startTaskLocked(c.TaskID, c.UserID)

	case kieapi.CompleteTaskCommand:
		return nil, s.completeTaskLocked(c.TaskID, c.UserID, c.Data)

	case kieapi.FindVariableInstancesByNameCommand:
		logs := s.variableLogsLocked(func(l kieapi.VariableInstanceLog) bool {
			if l.VariableID != c.VariableID {
				return false
			}
			return !c.OnlyActive || s.instances[l.ProcessInstanceID].state == kieapi.ProcessStateActive
		})
		return &kieapi.CommandResult{Kind: kieapi.ResultVariableLogList, VariableLogs: logs}, nil
	}
	return nil, fmt.Errorf("unsupported command %s", cmd.CommandName())
}
