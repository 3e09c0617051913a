package kjar

import (
	"encoding/xml"
	"fmt"
)

const kmoduleNamespace = "http://jboss.org/kie/6.0.0/kmodule"

type EqualsBehavior string

const (
	EqualsBehaviorIdentity EqualsBehavior = "identity"
	EqualsBehaviorEquality EqualsBehavior = "equality"
)

type EventProcessingMode string

const (
	EventProcessingCloud  EventProcessingMode = "cloud"
	EventProcessingStream EventProcessingMode = "stream"
)

type KieSessionType string

const (
	KieSessionStateful  KieSessionType = "stateful"
	KieSessionStateless KieSessionType = "stateless"
)

type ClockType string

const (
	ClockRealtime ClockType = "realtime"
	ClockPseudo   ClockType = "pseudo"
)

// KieModuleModel is the content of META-INF/kmodule.xml.
type KieModuleModel struct {
	XMLName xml.Name        `xml:"kmodule"`
	XMLNS   string          `xml:"xmlns,attr"`
	KBases  []*KieBaseModel `xml:"kbase"`
}

type KieBaseModel struct {
	Name                string              `xml:"name,attr"`
	Default             bool                `xml:"default,attr"`
	EqualsBehavior      EqualsBehavior      `xml:"equalsBehavior,attr,omitempty"`
	EventProcessingMode EventProcessingMode `xml:"eventProcessingMode,attr,omitempty"`
	Packages            string              `xml:"packages,attr,omitempty"`
	KSessions           []*KieSessionModel  `xml:"ksession"`
}

type KieSessionModel struct {
	Name      string         `xml:"name,attr"`
	Default   bool           `xml:"default,attr"`
	Type      KieSessionType `xml:"type,attr,omitempty"`
	ClockType ClockType      `xml:"clockType,attr,omitempty"`
}

func NewKieModuleModel() *KieModuleModel {
	return &KieModuleModel{XMLNS: kmoduleNamespace}
}

// NewKieBaseModel adds a kbase to the module.
func (m *KieModuleModel) NewKieBaseModel(name string) *KieBaseModel {
	kb := &KieBaseModel{Name: name}
	m.KBases = append(m.KBases, kb)
	return kb
}

// NewKieSessionModel adds a ksession to the kbase.
func (kb *KieBaseModel) NewKieSessionModel(name string) *KieSessionModel {
	ks := &KieSessionModel{Name: name}
	kb.KSessions = append(kb.KSessions, ks)
	return ks
}

// ToXML renders the model as a kmodule.xml document.
func (m *KieModuleModel) ToXML() (string, error) {
	data, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(data) + "\n", nil
}

// ParseKModuleXML reads a kmodule.xml document.
func ParseKModuleXML(data []byte) (*KieModuleModel, error) {
	var m KieModuleModel
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid kmodule.xml: %w", err)
	}
	return &m, nil
}

// KBase returns the kbase with the given name, or nil.
func (m *KieModuleModel) KBase(name string) *KieBaseModel {
	for _, kb := range m.KBases {
		if kb.Name == name {
			return kb
		}
	}
	return nil
}

// TestKieModuleModel returns the module used by the test kjar: one default kbase with equality
// behavior and stream processing, holding one default stateful ksession with a realtime clock.
func TestKieModuleModel(kbaseName, ksessionName string) *KieModuleModel {
	m := NewKieModuleModel()
	kb := m.NewKieBaseModel(kbaseName)
	kb.Default = true
	kb.EqualsBehavior = EqualsBehaviorEquality
	kb.EventProcessingMode = EventProcessingStream
	ks := kb.NewKieSessionModel(ksessionName)
	ks.Default = true
	ks.Type = KieSessionStateful
	ks.ClockType = ClockRealtime
	return m
}
