package kieapi

import (
	"fmt"
	"strings"
)

// MediaType is a content type that the REST API can produce and consume.
type MediaType string

const (
	MediaTypeXML  MediaType = "application/xml"
	MediaTypeJSON MediaType = "application/json"
)

// ParseMediaType accepts either a full media type or the short names "xml" and "json".
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xml", string(MediaTypeXML):
		return MediaTypeXML, nil
	case "json", string(MediaTypeJSON):
		return MediaTypeJSON, nil
	}
	return "", fmt.Errorf("unsupported media type %q", s)
}

// Short returns "xml" or "json", for use in test names.
func (m MediaType) Short() string {
	switch m {
	case MediaTypeXML:
		return "xml"
	case MediaTypeJSON:
		return "json"
	}
	return string(m)
}

// RuntimeStrategy determines how the server allocates sessions for a deployment.
type RuntimeStrategy string

const (
	StrategySingleton          RuntimeStrategy = "SINGLETON"
	StrategyPerRequest         RuntimeStrategy = "PER_REQUEST"
	StrategyPerProcessInstance RuntimeStrategy = "PER_PROCESS_INSTANCE"
)

// ParseRuntimeStrategy is case-insensitive. An empty string means SINGLETON.
func ParseRuntimeStrategy(s string) (RuntimeStrategy, error) {
	switch RuntimeStrategy(strings.ToUpper(s)) {
	case "", StrategySingleton:
		return StrategySingleton, nil
	case StrategyPerRequest:
		return StrategyPerRequest, nil
	case StrategyPerProcessInstance:
		return StrategyPerProcessInstance, nil
	}
	return "", fmt.Errorf("unknown runtime strategy %q", s)
}

// DeploymentStatus is the state of a deployment unit as reported by the deployment resource.
type DeploymentStatus string

const (
	DeploymentAccepted       DeploymentStatus = "ACCEPTED"
	DeploymentDeploying      DeploymentStatus = "DEPLOYING"
	DeploymentDeployed       DeploymentStatus = "DEPLOYED"
	DeploymentDeployFailed   DeploymentStatus = "DEPLOY_FAILED"
	DeploymentUndeploying    DeploymentStatus = "UNDEPLOYING"
	DeploymentUndeployed     DeploymentStatus = "UNDEPLOYED"
	DeploymentUndeployFailed DeploymentStatus = "UNDEPLOY_FAILED"
	DeploymentNonexistent    DeploymentStatus = "NONEXISTENT"
)

// IsFailure is true when the last deploy or undeploy job failed.
func (s DeploymentStatus) IsFailure() bool {
	return s == DeploymentDeployFailed || s == DeploymentUndeployFailed
}

// TaskStatus is the lifecycle state of a human task.
type TaskStatus string

const (
	TaskCreated    TaskStatus = "Created"
	TaskReady      TaskStatus = "Ready"
	TaskReserved   TaskStatus = "Reserved"
	TaskInProgress TaskStatus = "InProgress"
	TaskSuspended  TaskStatus = "Suspended"
	TaskCompleted  TaskStatus = "Completed"
	TaskFailed     TaskStatus = "Failed"
	TaskError      TaskStatus = "Error"
	TaskExited     TaskStatus = "Exited"
	TaskObsolete   TaskStatus = "Obsolete"
)

// ProcessInstanceState values, as numbered by the engine.
const (
	ProcessStatePending   = 0
	ProcessStateActive    = 1
	ProcessStateCompleted = 2
	ProcessStateAborted   = 3
	ProcessStateSuspended = 4
)

// DeploymentIdentifier builds the id the server uses for a deployment unit: group:artifact:version,
// plus :kbase:ksession when both names are set.
func DeploymentIdentifier(groupID, artifactID, version, kbaseName, ksessionName string) string {
	id := groupID + ":" + artifactID + ":" + version
	if kbaseName != "" && ksessionName != "" {
		id += ":" + kbaseName + ":" + ksessionName
	}
	return id
}
