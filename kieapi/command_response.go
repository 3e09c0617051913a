package kieapi

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// Kinds of command results, which are also their XML element names.
const (
	ResultProcessInstance     = "process-instance"
	ResultLongList            = "long-list"
	ResultTaskSummaryList     = "task-summary-list"
	ResultTask                = "task"
	ResultVariableLogList     = "variable-instance-log-list"
	ResultProcessInstanceList = "process-instance-list"
	ResultException           = "exception"
)

// CommandResult is the result of the command at Index in the request. Exactly one of the value
// fields is set, according to Kind.
type CommandResult struct {
	Kind             string                `json:"kind"`
	Index            int                   `json:"index"`
	ProcessInstance  *ProcessInstance      `json:"processInstance,omitempty"`
	LongList         []int64               `json:"longList,omitempty"`
	TaskSummaries    []TaskSummary         `json:"taskSummaryList,omitempty"`
	Task             *Task                 `json:"task,omitempty"`
	VariableLogs     []VariableInstanceLog `json:"variableInstanceLogList,omitempty"`
	ProcessInstances []ProcessInstance     `json:"processInstanceList,omitempty"`
	Exception        *CommandException     `json:"exception,omitempty"`
}

// CommandException describes a command that threw on the server.
type CommandException struct {
	CommandName string `xml:"command" json:"command"`
	Message     string `xml:"message" json:"message"`
	CauseClass  string `xml:"cause,omitempty" json:"cause,omitempty"`
}

// CommandError is returned for a result of kind exception.
type CommandError struct {
	Index int
	CommandException
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %d (%s) failed on server: %s", e.Index, e.CommandName, e.Message)
}

// CommandsResponse is the body returned by the execute resources.
type CommandsResponse struct {
	DeploymentID string          `json:"deploymentId,omitempty"`
	Version      string          `json:"version,omitempty"`
	Results      []CommandResult `json:"responses"`
}

func (CommandsResponse) XMLRootName() string { return "command-response" }

// Result returns the result for the command at the given index in the request.
func (r CommandsResponse) Result(index int) (CommandResult, bool) {
	for _, res := range r.Results {
		if res.Index == index {
			return res, true
		}
	}
	return CommandResult{}, false
}

// Err returns a *CommandError for the first exception result, or nil.
func (r CommandsResponse) Err() error {
	for _, res := range r.Results {
		if res.Kind == ResultException && res.Exception != nil {
			return &CommandError{Index: res.Index, CommandException: *res.Exception}
		}
	}
	return nil
}

type xmlListItems[V any] struct {
	Items []V `xml:",any"`
}

func (r CommandsResponse) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if r.DeploymentID != "" {
		if err := e.EncodeElement(r.DeploymentID, xml.StartElement{Name: xml.Name{Local: "deployment-id"}}); err != nil {
			return err
		}
	}
	if r.Version != "" {
		if err := e.EncodeElement(r.Version, xml.StartElement{Name: xml.Name{Local: "ver"}}); err != nil {
			return err
		}
	}
	for _, res := range r.Results {
		if err := res.marshalXML(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func (res CommandResult) marshalXML(e *xml.Encoder) error {
	start := xml.StartElement{
		Name: xml.Name{Local: res.Kind},
		Attr: []xml.Attr{{Name: xml.Name{Local: "index"}, Value: strconv.Itoa(res.Index)}},
	}
	switch res.Kind {
	case ResultProcessInstance:
		return e.EncodeElement(res.ProcessInstance, start)
	case ResultTask:
		return e.EncodeElement(res.Task, start)
	case ResultException:
		return e.EncodeElement(res.Exception, start)
	case ResultLongList:
		return encodeList(e, start, "long", res.LongList)
	case ResultTaskSummaryList:
		return encodeList(e, start, "task-summary", res.TaskSummaries)
	case ResultVariableLogList:
		return encodeList(e, start, historyVariableLogKind, res.VariableLogs)
	case ResultProcessInstanceList:
		return encodeList(e, start, ResultProcessInstance, res.ProcessInstances)
	}
	return fmt.Errorf("unknown command result kind %q", res.Kind)
}

func encodeList[V any](e *xml.Encoder, start xml.StartElement, itemName string, items []V) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, item := range items {
		if err := e.EncodeElement(item, xml.StartElement{Name: xml.Name{Local: itemName}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func decodeList[V any](d *xml.Decoder, start *xml.StartElement) ([]V, error) {
	var items xmlListItems[V]
	err := d.DecodeElement(&items, start)
	return items.Items, err
}

func (r *CommandsResponse) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var ret CommandsResponse
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			*r = ret
			return nil
		case xml.StartElement:
			switch t.Name.Local {
			case "deployment-id":
				err = d.DecodeElement(&ret.DeploymentID, &t)
			case "ver":
				err = d.DecodeElement(&ret.Version, &t)
			default:
				var res CommandResult
				res, err = decodeCommandResult(d, t)
				ret.Results = append(ret.Results, res)
			}
			if err != nil {
				return err
			}
		}
	}
}

func decodeCommandResult(d *xml.Decoder, start xml.StartElement) (CommandResult, error) {
	res := CommandResult{Kind: start.Name.Local}
	for _, a := range start.Attr {
		if a.Name.Local == "index" {
			index, err := strconv.Atoi(a.Value)
			if err != nil {
				return res, fmt.Errorf("bad index %q in %s result", a.Value, res.Kind)
			}
			res.Index = index
		}
	}
	var err error
	switch res.Kind {
	case ResultProcessInstance:
		res.ProcessInstance = &ProcessInstance{}
		err = d.DecodeElement(res.ProcessInstance, &start)
	case ResultTask:
		res.Task = &Task{}
		err = d.DecodeElement(res.Task, &start)
	case ResultException:
		res.Exception = &CommandException{}
		err = d.DecodeElement(res.Exception, &start)
	case ResultLongList:
		res.LongList, err = decodeList[int64](d, &start)
	case ResultTaskSummaryList:
		res.TaskSummaries, err = decodeList[TaskSummary](d, &start)
	case ResultVariableLogList:
		res.VariableLogs, err = decodeList[VariableInstanceLog](d, &start)
	case ResultProcessInstanceList:
		res.ProcessInstances, err = decodeList[ProcessInstance](d, &start)
	default:
		return res, fmt.Errorf("unknown command result kind %q", res.Kind)
	}
	return res, err
}
