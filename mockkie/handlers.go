package mockkie

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kiegroup/kie-remote-tests/kieapi"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/exp/slices"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, errNoDeployment), errors.Is(err, errNoInstance), errors.Is(err, errNoTask):
		return http.StatusNotFound
	case errors.Is(err, errPermission):
		return http.StatusForbidden
	case errors.Is(err, errTaskState):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// mapParams collects the map_<name> query parameters. A value that parses as a JSON array or
// object is kept as such; everything else is a string.
func mapParams(r *http.Request) kieapi.Variables {
	ret := kieapi.Variables{}
	for key, values := range r.URL.Query() {
		name, ok := strings.CutPrefix(key, "map_")
		if !ok || len(values) == 0 {
			continue
		}
		raw := values[0]
		if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
			if parsed := ldvalue.Parse([]byte(raw)); !parsed.IsNull() {
				ret[name] = parsed
				continue
			}
		}
		ret[name] = ldvalue.String(raw)
	}
	return ret
}

func pathInt(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return n
}

func (s *Server) startProcess(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.lock.Lock()
	p, err := s.startProcessLocked(vars["deploymentId"], vars["processId"], s.requestUser(r), mapParams(r))
	var resp kieapi.ProcessInstanceResponse
	if err == nil {
		resp = kieapi.ProcessInstanceResponse{ProcessInstance: p.toAPI(), Status: kieapi.StatusSuccess, URL: r.URL.String()}
	}
	s.lock.Unlock()
	if err != nil {
		writeError(w, r, errorStatus(err), "%s", err)
		return
	}
	writeResponse(w, r, http.StatusOK, resp)
}

func (s *Server) variableHistory(w http.ResponseWriter, r *http.Request) {
	instanceID := pathInt(r, "processInstanceId")
	variableID := mux.Vars(r)["variableId"]
	s.lock.Lock()
	_, exists := s.instances[instanceID]
	logs := s.variableLogsLocked(func(l kieapi.VariableInstanceLog) bool {
		return l.ProcessInstanceID == instanceID && l.VariableID == variableID
	})
	s.lock.Unlock()
	if !exists {
		writeError(w, r, http.StatusNotFound, "%s: %d", errNoInstance, instanceID)
		return
	}
	writeResponse(w, r, http.StatusOK, kieapi.HistoryLogList{VariableLogs: s.config.Faults.applyToHistory(logs)})
}

func (s *Server) queryTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var statuses []kieapi.TaskStatus
	for _, st := range q["status"] {
		statuses = append(statuses, kieapi.TaskStatus(st))
	}
	var taskIDs []int64
	for _, id := range q["taskId"] {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid taskId %q", id)
			return
		}
		taskIDs = append(taskIDs, n)
	}
	var instanceID int64
	if v := q.Get("processInstanceId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid processInstanceId %q", v)
			return
		}
		instanceID = n
	}
	potentialOwner, taskOwner := q.Get("potentialOwner"), q.Get("taskOwner")

	s.lock.Lock()
	tasks := s.queryTasksLocked(func(t *task) bool {
		return (len(statuses) == 0 || slices.Contains(statuses, t.status)) &&
			(len(taskIDs) == 0 || slices.Contains(taskIDs, t.id)) &&
			(instanceID == 0 || t.instanceID == instanceID) &&
			(potentialOwner == "" || t.owner == potentialOwner) &&
			(taskOwner == "" || t.owner == taskOwner)
	})
	s.lock.Unlock()
	writeResponse(w, r, http.StatusOK, kieapi.TaskSummaryListResponse{Tasks: tasks})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "taskId")
	s.lock.Lock()
	t := s.tasks[id]
	var resp kieapi.Task
	if t != nil {
		resp = t.toAPI()
	}
	s.lock.Unlock()
	if t == nil {
		writeError(w, r, http.StatusNotFound, "%s: %d", errNoTask, id)
		return
	}
	writeResponse(w, r, http.StatusOK, resp)
}

func (s *Server) startTask(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	err := s.startTaskLocked(pathInt(r, "taskId"), s.requestUser(r))
	s.lock.Unlock()
	if err != nil {
		writeError(w, r, errorStatus(err), "%s", err)
		return
	}
	writeSuccess(w, r)
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	err := s.completeTaskLocked(pathInt(r, "taskId"), s.requestUser(r), mapParams(r))
	s.lock.Unlock()
	if err != nil {
		writeError(w, r, errorStatus(err), "%s", err)
		return
	}
	writeSuccess(w, r)
}

func (s *Server) processInstanceSummary(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "processInstanceId")
	s.lock.Lock()
	p := s.instances[id]
	var resp kieapi.ProcessInstanceSummary
	if p != nil {
		script := s.scripts[p.processID]
		resp = kieapi.ProcessInstanceSummary{
			ID:             p.id,
			ProcessID:      p.processID,
			ProcessName:    script.Name,
			ProcessVersion: script.Version,
			State:          p.state,
			DeploymentID:   p.deploymentID,
			Initiator:      p.initiator,
		}
	}
	s.lock.Unlock()
	if p == nil {
		writeError(w, r, http.StatusNotFound, "%s: %d", errNoInstance, id)
		return
	}
	writeResponse(w, r, http.StatusOK, resp)
}
