package data

import (
	"fmt"
)

// ProcessScript describes, step by step, what one of the bundled test processes does. The real
// engine learns this from the BPMN file; the in-memory fake server replays it from here.
type ProcessScript struct {
	ProcessID string `json:"processId"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	// Variables are the process variables. A start parameter with one of these names is logged as
	// the variable's initial value.
	Variables []string              `json:"variables"`
	OnStart   []ScriptStep          `json:"onStart"`
	Tasks     map[string]TaskScript `json:"tasks"`
}

// ScriptStep is one action. Exactly one of SetVariable, CreateTask or Complete is used.
type ScriptStep struct {
	SetVariable string `json:"setVariable,omitempty"`
	// Value is the new value for SetVariable, unless TypeOf names a variable whose type name is
	// used instead.
	Value      string `json:"value,omitempty"`
	TypeOf     string `json:"typeOf,omitempty"`
	CreateTask string `json:"createTask,omitempty"`
	Complete   bool   `json:"complete,omitempty"`
}

// TaskScript describes a human task node.
type TaskScript struct {
	// Outputs maps task output parameter names to the process variables they are assigned to.
	Outputs    map[string]string `json:"outputs"`
	OnComplete []ScriptStep      `json:"onComplete"`
}

func (p ProcessScript) validate() error {
	if p.ProcessID == "" {
		return fmt.Errorf("process script has no processId")
	}
	steps := append([]ScriptStep(nil), p.OnStart...)
	for _, t := range p.Tasks {
		steps = append(steps, t.OnComplete...)
	}
	for _, s := range steps {
		if s.CreateTask != "" {
			if _, ok := p.Tasks[s.CreateTask]; !ok {
				return fmt.Errorf("process %s creates undeclared task %q", p.ProcessID, s.CreateTask)
			}
		}
	}
	return nil
}

// LoadProcessScripts reads every script under data-files/processes, keyed by process id.
func LoadProcessScripts() (map[string]ProcessScript, error) {
	sources, err := LoadAllDataFiles("processes")
	if err != nil {
		return nil, err
	}
	ret := make(map[string]ProcessScript, len(sources))
	for _, source := range sources {
		var p ProcessScript
		if err := source.ParseInto(&p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", source.FilePath, err)
		}
		if _, dup := ret[p.ProcessID]; dup {
			return nil, fmt.Errorf("%s: process %s is scripted twice", source.FilePath, p.ProcessID)
		}
		ret[p.ProcessID] = p
	}
	return ret, nil
}

// VariableHistoryCase is one parameterization of the variable history scenario.
type VariableHistoryCase struct {
	Description    string   `json:"description"`
	InitialValue   string   `json:"initialValue"`
	ExpectedValues []string `json:"expectedValues"`
}

// LoadVariableHistoryCases reads the parameterized cases for the variable history scenario.
func LoadVariableHistoryCases() ([]VariableHistoryCase, error) {
	sources, err := LoadDataFile("scenarios/variable-history.yaml")
	if err != nil {
		return nil, err
	}
	ret := make([]VariableHistoryCase, 0, len(sources))
	for _, source := range sources {
		var wrapper struct {
			Case VariableHistoryCase `json:"case"`
		}
		if err := source.ParseInto(&wrapper); err != nil {
			return nil, err
		}
		ret = append(ret, wrapper.Case)
	}
	return ret, nil
}
