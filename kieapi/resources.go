package kieapi

// ProcessInstance is the engine's view of a process instance.
type ProcessInstance struct {
	ID                      int64    `xml:"id" json:"id"`
	ProcessID               string   `xml:"process-id" json:"processId"`
	State                   int      `xml:"state" json:"state"`
	ParentProcessInstanceID int64    `xml:"parentProcessInstanceId" json:"parentProcessInstanceId"`
	EventTypes              []string `xml:"event-types,omitempty" json:"eventTypes,omitempty"`
}

// ProcessInstanceResponse is returned by the process start resource.
type ProcessInstanceResponse struct {
	ProcessInstance
	Status string `xml:"status" json:"status"`
	URL    string `xml:"url" json:"url"`
}

func (ProcessInstanceResponse) XMLRootName() string { return "process-instance-response" }

// TaskSummary is one entry of a task query.
type TaskSummary struct {
	ID                int64      `xml:"id" json:"id"`
	Name              string     `xml:"name" json:"name"`
	Subject           string     `xml:"subject,omitempty" json:"subject,omitempty"`
	Description       string     `xml:"description,omitempty" json:"description,omitempty"`
	Status            TaskStatus `xml:"status" json:"status"`
	Priority          int        `xml:"priority" json:"priority"`
	ActualOwner       string     `xml:"actual-owner,omitempty" json:"actualOwnerId,omitempty"`
	CreatedBy         string     `xml:"created-by,omitempty" json:"createdById,omitempty"`
	ProcessInstanceID int64      `xml:"process-instance-id" json:"processInstanceId"`
	ProcessID         string     `xml:"process-id" json:"processId"`
	DeploymentID      string     `xml:"deployment-id" json:"deploymentId"`
}

// TaskSummaryListResponse is returned by the task query resource.
type TaskSummaryListResponse struct {
	Tasks    []TaskSummary `xml:"task-summary" json:"list"`
	PageNum  int           `xml:"pageNumber,attr,omitempty" json:"pageNumber,omitempty"`
	PageSize int           `xml:"pageSize,attr,omitempty" json:"pageSize,omitempty"`
}

func (TaskSummaryListResponse) XMLRootName() string { return "task-summary-list-response" }

// TaskIDs returns the ids of all tasks in the list, in order.
func (r TaskSummaryListResponse) TaskIDs() []int64 {
	ret := make([]int64, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		ret = append(ret, t.ID)
	}
	return ret
}

// TaskData is the mutable part of a task.
type TaskData struct {
	Status            TaskStatus `xml:"status" json:"status"`
	ActualOwner       string     `xml:"actual-owner,omitempty" json:"actualOwnerId,omitempty"`
	CreatedBy         string     `xml:"created-by,omitempty" json:"createdById,omitempty"`
	ProcessInstanceID int64      `xml:"process-instance-id" json:"processInstanceId"`
	ProcessID         string     `xml:"process-id" json:"processId"`
	DeploymentID      string     `xml:"deployment-id" json:"deploymentId"`
	WorkItemID        int64      `xml:"work-item-id" json:"workItemId"`
}

// Task is the full representation of a human task.
type Task struct {
	ID       int64    `xml:"id" json:"id"`
	Name     string   `xml:"name" json:"name"`
	Priority int      `xml:"priority" json:"priority"`
	TaskData TaskData `xml:"task-data" json:"taskData"`
}

func (Task) XMLRootName() string { return "task" }

// GenericResponse is returned by operations that produce no resource, such as task start.
type GenericResponse struct {
	Status  string `xml:"status" json:"status"`
	URL     string `xml:"url" json:"url"`
	Message string `xml:"message,omitempty" json:"message,omitempty"`
}

func (GenericResponse) XMLRootName() string { return "response" }

// StatusSuccess is the value of GenericResponse.Status for successful operations.
const StatusSuccess = "SUCCESS"

// ProcessInstanceSummary comes from the data service rather than the runtime.
type ProcessInstanceSummary struct {
	ID             int64  `xml:"process-instance-id" json:"processInstanceId"`
	ProcessID      string `xml:"process-id" json:"processId"`
	ProcessName    string `xml:"process-name" json:"processName"`
	ProcessVersion string `xml:"process-version" json:"processVersion"`
	State          int    `xml:"state" json:"state"`
	DeploymentID   string `xml:"deployment-id" json:"deploymentId"`
	Initiator      string `xml:"initiator" json:"initiator"`
	StartTime      string `xml:"start-time,omitempty" json:"startTime,omitempty"`
}

func (ProcessInstanceSummary) XMLRootName() string { return "process-instance-summary" }

// ExceptionResponse is the body the server sends with a failed REST call, when it sends one.
type ExceptionResponse struct {
	Status     string `xml:"status" json:"status"`
	URL        string `xml:"url" json:"url"`
	Message    string `xml:"message" json:"message"`
	StackTrace string `xml:"stack-trace,omitempty" json:"stackTrace,omitempty"`
}

func (ExceptionResponse) XMLRootName() string { return "exception-response" }
