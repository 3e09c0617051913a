package mockkie

import (
	"net/http"

	"github.com/kiegroup/kie-remote-tests/kieapi"
)

// Faults are deliberate deviations from the real server's behavior. Each one breaks an assertion
// made by at least one test scenario.
type Faults struct {
	// RepeatableCompletion lets a Completed task be completed again.
	RepeatableCompletion bool

	// HistoryDropsLatest leaves the newest entry out of every variable history.
	HistoryDropsLatest bool

	// ExtraReservedTask adds a copy of the first Reserved task to task status queries.
	ExtraReservedTask bool

	// DefaultsToJSON answers requests that have no Accept header with JSON.
	DefaultsToJSON bool

	// UndeployNeverFinishes leaves undeployed units in UNDEPLOYING.
	UndeployNeverFinishes bool
}

func defaultToJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "" {
			r.Header.Set("Accept", string(kieapi.MediaTypeJSON))
		}
		next.ServeHTTP(w, r)
	})
}

func (f Faults) applyToHistory(logs []kieapi.VariableInstanceLog) []kieapi.VariableInstanceLog {
	if f.HistoryDropsLatest && len(logs) != 0 {
		return logs[:len(logs)-1]
	}
	return logs
}

func (f Faults) applyToReservedTasks(tasks []kieapi.TaskSummary) []kieapi.TaskSummary {
	if !f.ExtraReservedTask {
		return tasks
	}
	for _, t := range tasks {
		if t.Status == kieapi.TaskReserved {
			return append(tasks, t)
		}
	}
	return tasks
}
