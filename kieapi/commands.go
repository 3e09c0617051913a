package kieapi

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
)

// Command is one entry of a command request. CommandName is the element (XML) or property (JSON)
// name identifying the command on the wire.
type Command interface {
	CommandName() string
}

type StartProcessCommand struct {
	ProcessID  string    `xml:"processId,attr" json:"processId"`
	Parameters Variables `xml:"parameters,omitempty" json:"parameters,omitempty"`
}

type GetTasksByProcessInstanceIDCommand struct {
	ProcessInstanceID int64 `xml:"processInstanceId,attr" json:"processInstanceId"`
}

type StartTaskCommand struct {
	TaskID int64  `xml:"taskId,attr" json:"taskId"`
	UserID string `xml:"userId,attr" json:"userId"`
}

type CompleteTaskCommand struct {
	TaskID int64     `xml:"taskId,attr" json:"taskId"`
	UserID string    `xml:"userId,attr" json:"userId"`
	Data   Variables `xml:"data,omitempty" json:"data,omitempty"`
}

type GetTaskCommand struct {
	TaskID int64 `xml:"taskId,attr" json:"taskId"`
}

type GetTasksAssignedAsPotentialOwnerCommand struct {
	UserID   string `xml:"userId,attr" json:"userId"`
	Language string `xml:"language,attr,omitempty" json:"language,omitempty"`
}

type GetTasksByStatusByProcessInstanceIDCommand struct {
	ProcessInstanceID int64        `xml:"processInstanceId,attr" json:"processInstanceId"`
	Language          string       `xml:"language,attr,omitempty" json:"language,omitempty"`
	Statuses          []TaskStatus `xml:"status" json:"statuses"`
}

type GetProcessInstancesCommand struct{}

type FindVariableInstancesByNameCommand struct {
	VariableID string `xml:"variableId,attr" json:"variableId"`
	OnlyActive bool   `xml:"onlyActive,attr" json:"onlyActive"`
}

func (StartProcessCommand) CommandName() string                { return "start-process" }
func (GetTasksByProcessInstanceIDCommand) CommandName() string { return "get-tasks-by-process-instance-id" }
func (StartTaskCommand) CommandName() string                   { return "start-task" }
func (CompleteTaskCommand) CommandName() string                { return "complete-task" }
func (GetTaskCommand) CommandName() string                     { return "get-task" }
func (GetTasksAssignedAsPotentialOwnerCommand) CommandName() string {
	return "get-tasks-assigned-as-potential-owner"
}
func (GetTasksByStatusByProcessInstanceIDCommand) CommandName() string {
	return "get-tasks-by-status-by-process-instance-id"
}
func (GetProcessInstancesCommand) CommandName() string         { return "get-process-instances" }
func (FindVariableInstancesByNameCommand) CommandName() string { return "find-variable-instances-by-name" }

type commandDecoder func(decode func(any) error) (Command, error)

func decodeCommand[C Command](decode func(any) error) (Command, error) {
	var c C
	err := decode(&c)
	return c, err
}

var commandDecoders = map[string]commandDecoder{ //nolint:gochecknoglobals
	StartProcessCommand{}.CommandName():                        decodeCommand[StartProcessCommand],
	GetTasksByProcessInstanceIDCommand{}.CommandName():         decodeCommand[GetTasksByProcessInstanceIDCommand],
	StartTaskCommand{}.CommandName():                           decodeCommand[StartTaskCommand],
	CompleteTaskCommand{}.CommandName():                        decodeCommand[CompleteTaskCommand],
	GetTaskCommand{}.CommandName():                             decodeCommand[GetTaskCommand],
	GetTasksAssignedAsPotentialOwnerCommand{}.CommandName():    decodeCommand[GetTasksAssignedAsPotentialOwnerCommand],
	GetTasksByStatusByProcessInstanceIDCommand{}.CommandName(): decodeCommand[GetTasksByStatusByProcessInstanceIDCommand],
	GetProcessInstancesCommand{}.CommandName():                 decodeCommand[GetProcessInstancesCommand],
	FindVariableInstancesByNameCommand{}.CommandName():         decodeCommand[FindVariableInstancesByNameCommand],
}

// CommandsRequest is posted to the runtime or task execute resource. The server runs the commands
// in order and returns one result per command that produces a value.
type CommandsRequest struct {
	DeploymentID      string
	ProcessInstanceID int64
	User              string
	Version           string
	Commands          []Command
}

func (CommandsRequest) XMLRootName() string { return "command-request" }

func (r CommandsRequest) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	simple := []struct{ name, value string }{
		{"deployment-id", r.DeploymentID},
		{"ver", r.Version},
		{"user", r.User},
	}
	if r.ProcessInstanceID != 0 {
		simple = append(simple, struct{ name, value string }{"process-instance-id", strconv.FormatInt(r.ProcessInstanceID, 10)})
	}
	for _, s := range simple {
		if s.value == "" {
			continue
		}
		if err := e.EncodeElement(s.value, xml.StartElement{Name: xml.Name{Local: s.name}}); err != nil {
			return err
		}
	}
	for _, c := range r.Commands {
		if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: c.CommandName()}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func (r *CommandsRequest) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var ret CommandsRequest
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
			var s string
			switch t.Name.Local {
			case "deployment-id":
				err = d.DecodeElement(&ret.DeploymentID, &t)
			case "ver":
				err = d.DecodeElement(&ret.Version, &t)
			case "user":
				err = d.DecodeElement(&ret.User, &t)
			case "process-instance-id":
				if err = d.DecodeElement(&s, &t); err == nil {
					ret.ProcessInstanceID, err = strconv.ParseInt(s, 10, 64)
				}
			default:
				decoder, ok := commandDecoders[t.Name.Local]
				if !ok {
					return fmt.Errorf("unknown command %q", t.Name.Local)
				}
				element := t
				var c Command
				c, err = decoder(func(v any) error { return d.DecodeElement(v, &element) })
				ret.Commands = append(ret.Commands, c)
			}
			if err != nil {
				return err
			}
		}
	}
}

type commandsRequestJSON struct {
	DeploymentID      string                       `json:"deploymentId,omitempty"`
	ProcessInstanceID int64                        `json:"processInstanceId,omitempty"`
	User              string                       `json:"user,omitempty"`
	Version           string                       `json:"version,omitempty"`
	Commands          []map[string]json.RawMessage `json:"commands"`
}

func (r CommandsRequest) MarshalJSON() ([]byte, error) {
	out := commandsRequestJSON{
		DeploymentID:      r.DeploymentID,
		ProcessInstanceID: r.ProcessInstanceID,
		User:              r.User,
		Version:           r.Version,
	}
	for _, c := range r.Commands {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		out.Commands = append(out.Commands, map[string]json.RawMessage{c.CommandName(): data})
	}
	return json.Marshal(out)
}

func (r *CommandsRequest) UnmarshalJSON(data []byte) error {
	var in commandsRequestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	ret := CommandsRequest{
		DeploymentID:      in.DeploymentID,
		ProcessInstanceID: in.ProcessInstanceID,
		User:              in.User,
		Version:           in.Version,
	}
	for i, entry := range in.Commands {
		if len(entry) != 1 {
			return fmt.Errorf("command %d must have exactly one property, had %d", i, len(entry))
		}
		for name, raw := range entry {
			decoder, ok := commandDecoders[name]
			if !ok {
				return fmt.Errorf("unknown command %q", name)
			}
			c, err := decoder(func(v any) error { return json.Unmarshal(raw, v) })
			if err != nil {
				return err
			}
			ret.Commands = append(ret.Commands, c)
		}
	}
	*r = ret
	return nil
}
