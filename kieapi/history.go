package kieapi

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

const (
	historyVariableLogKind = "variable-instance-log"
	historyProcessLogKind  = "process-instance-log"
)

// VariableInstanceLog is one recorded change of a process variable.
type VariableInstanceLog struct {
	ID                 int64  `xml:"id" json:"id"`
	ProcessInstanceID  int64  `xml:"process-instance-id" json:"processInstanceId"`
	ProcessID          string `xml:"process-id" json:"processId"`
	VariableInstanceID string `xml:"variable-instance-id" json:"variableInstanceId"`
	VariableID         string `xml:"variable-id" json:"variableId"`
	Value              string `xml:"value" json:"value"`
	OldValue           string `xml:"old-value" json:"oldValue"`
	ExternalID         string `xml:"external-id,omitempty" json:"externalId,omitempty"`
}

// ProcessInstanceLog is the audit record of a process instance.
type ProcessInstanceLog struct {
	ID                int64  `xml:"id" json:"id"`
	ProcessInstanceID int64  `xml:"process-instance-id" json:"processInstanceId"`
	ProcessID         string `xml:"process-id" json:"processId"`
	Status            int    `xml:"status" json:"status"`
	Identity          string `xml:"identity" json:"identity"`
	ExternalID        string `xml:"external-id,omitempty" json:"externalId,omitempty"`
}

// HistoryLogList is returned by the history resources. The server can mix log kinds in one list;
// decoding records the order of the entries and encoding reproduces it.
//
// In JSON each entry is a single-property object naming its kind.
type HistoryLogList struct {
	VariableLogs []VariableInstanceLog
	ProcessLogs  []ProcessInstanceLog

	kinds []string
}

func (HistoryLogList) XMLRootName() string { return "log-instance-list" }

// VariableLogsFor returns the variable logs for one variable, in order.
func (l HistoryLogList) VariableLogsFor(variableID string) []VariableInstanceLog {
	var ret []VariableInstanceLog
	for _, v := range l.VariableLogs {
		if v.VariableID == variableID {
			ret = append(ret, v)
		}
	}
	return ret
}

// each calls one of the functions per entry, in server order if the list was decoded and still has
// the same entries, otherwise variable logs first.
func (l HistoryLogList) each(variable func(VariableInstanceLog) error, process func(ProcessInstanceLog) error) error {
	kinds := l.kinds
	if !l.kindsMatch() {
		kinds = nil
		for range l.VariableLogs {
			kinds = append(kinds, historyVariableLogKind)
		}
		for range l.ProcessLogs {
			kinds = append(kinds, historyProcessLogKind)
		}
	}
	var vi, pi int
	for _, kind := range kinds {
		var err error
		if kind == historyVariableLogKind {
			err = variable(l.VariableLogs[vi])
			vi++
		} else {
			err = process(l.ProcessLogs[pi])
			pi++
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (l HistoryLogList) kindsMatch() bool {
	var variables, processes int
	for _, kind := range l.kinds {
		if kind == historyVariableLogKind {
			variables++
		} else {
			processes++
		}
	}
	return variables == len(l.VariableLogs) && processes == len(l.ProcessLogs)
}

func (l *HistoryLogList) add(kind string, decode func(any) error) error {
	switch kind {
	case historyVariableLogKind:
		var v VariableInstanceLog
		if err := decode(&v); err != nil {
			return err
		}
		l.VariableLogs = append(l.VariableLogs, v)
	case historyProcessLogKind:
		var p ProcessInstanceLog
		if err := decode(&p); err != nil {
			return err
		}
		l.ProcessLogs = append(l.ProcessLogs, p)
	default:
		// other audit kinds (node logs) are not used by any test
		return nil
	}
	l.kinds = append(l.kinds, kind)
	return nil
}

func (l HistoryLogList) MarshalJSON() ([]byte, error) {
	w := jwriter.NewWriter()
	obj := w.Object()
	arr := obj.Name("historyLogList").Array()
	_ = l.each(func(v VariableInstanceLog) error {
		entry := w.Object()
		writeVariableLog(entry.Name(historyVariableLogKind), v)
		entry.End()
		return nil
	}, func(p ProcessInstanceLog) error {
		entry := w.Object()
		writeProcessLog(entry.Name(historyProcessLogKind), p)
		entry.End()
		return nil
	})
	arr.End()
	obj.End()
	return w.Bytes(), w.Error()
}

// writeInt64 writes an exact integer; jwriter has no int64 form and Float64 rounds above 2^53.
func writeInt64(w *jwriter.Writer, n int64) {
	w.Raw(strconv.AppendInt(nil, n, 10))
}

func writeVariableLog(w *jwriter.Writer, v VariableInstanceLog) {
	obj := w.Object()
	writeInt64(obj.Name("id"), v.ID)
	writeInt64(obj.Name("processInstanceId"), v.ProcessInstanceID)
	obj.Name("processId").String(v.ProcessID)
	obj.Name("variableInstanceId").String(v.VariableInstanceID)
	obj.Name("variableId").String(v.VariableID)
	obj.Name("value").String(v.Value)
	obj.Name("oldValue").String(v.OldValue)
	obj.Maybe("externalId", v.ExternalID != "").String(v.ExternalID)
	obj.End()
}

func writeProcessLog(w *jwriter.Writer, p ProcessInstanceLog) {
	obj := w.Object()
	writeInt64(obj.Name("id"), p.ID)
	writeInt64(obj.Name("processInstanceId"), p.ProcessInstanceID)
	obj.Name("processId").String(p.ProcessID)
	obj.Name("status").Int(p.Status)
	obj.Name("identity").String(p.Identity)
	obj.Maybe("externalId", p.ExternalID != "").String(p.ExternalID)
	obj.End()
}

func (l *HistoryLogList) UnmarshalJSON(data []byte) error {
	var doc struct {
		Entries []map[string]json.RawMessage `json:"historyLogList"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("malformed history log list: %w", err)
	}
	var ret HistoryLogList
	for i, entry := range doc.Entries {
		if len(entry) != 1 {
			return fmt.Errorf("malformed history log list: entry %d has %d properties", i, len(entry))
		}
		for kind, raw := range entry {
			if err := ret.add(kind, func(v any) error { return json.Unmarshal(raw, v) }); err != nil {
				return fmt.Errorf("malformed %s in history log list: %w", kind, err)
			}
		}
	}
	*l = ret
	return nil
}

func (l HistoryLogList) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	err := l.each(func(v VariableInstanceLog) error {
		return e.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: historyVariableLogKind}})
	}, func(p ProcessInstanceLog) error {
		return e.EncodeElement(p, xml.StartElement{Name: xml.Name{Local: historyProcessLogKind}})
	})
	if err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func (l *HistoryLogList) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var ret HistoryLogList
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			*l = ret
			return nil
		case xml.StartElement:
			kind := t.Name.Local
			err = ret.add(kind, func(v any) error { return d.DecodeElement(v, &t) })
			if err == nil && kind != historyVariableLogKind && kind != historyProcessLogKind {
				err = d.Skip()
			}
			if err != nil {
				return err
			}
		}
	}
}
