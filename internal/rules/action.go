package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type ActionType string

const (
	ActionTag           ActionType = "tag"
	ActionVisualMarking ActionType = "visualmarking"
	ActionWatermark     ActionType = "watermark"
	ActionClassify      ActionType = "classify"
	ActionEncrypt       ActionType = "encrypt"
	ActionEDRM          ActionType = "edrm"
)

// DefaultService is the only service protection actions run through today.
const DefaultService = "Nova"

var ActionTypes = []ActionType{ActionTag, ActionVisualMarking, ActionWatermark, ActionClassify, ActionEncrypt, ActionEDRM}

func (t ActionType) Valid() bool {
	for _, at := range ActionTypes {
		if t == at {
			return true
		}
	}
	return false
}

// Parameters is implemented by the per-type parameter structs. Each action
// type carries only its own fields.
type Parameters interface {
	ActionType() ActionType
	Summary() string
	clone() Parameters
}

type TagParams struct {
	Tags []string `json:"tags" yaml:"tags"`
}

func (TagParams) ActionType() ActionType { return ActionTag }
func (p TagParams) Summary() string {
	if len(p.Tags) == 0 {
		return ""
	}
	return "tags: " + strings.Join(p.Tags, ", ")
}
func (p TagParams) clone() Parameters { return TagParams{Tags: append([]string(nil), p.Tags...)} }

type VisualMarkingParams struct {
	Template string `json:"template" yaml:"template"`
}

func (VisualMarkingParams) ActionType() ActionType { return ActionVisualMarking }
func (p VisualMarkingParams) Summary() string     { return summarize("template", p.Template) }
func (p VisualMarkingParams) clone() Parameters   { return p }

type WatermarkParams struct {
	Template string `json:"template" yaml:"template"`
}

func (WatermarkParams) ActionType() ActionType { return ActionWatermark }
func (p WatermarkParams) Summary() string     { return summarize("template", p.Template) }
func (p WatermarkParams) clone() Parameters   { return p }

type ClassifyParams struct {
	Label string `json:"label" yaml:"label"`
}

func (ClassifyParams) ActionType() ActionType { return ActionClassify }
func (p ClassifyParams) Summary() string     { return summarize("label", p.Label) }
func (p ClassifyParams) clone() Parameters   { return p }

type EncryptParams struct {
	Policy string `json:"policy" yaml:"policy"`
}

func (EncryptParams) ActionType() ActionType { return ActionEncrypt }
func (p EncryptParams) Summary() string     { return summarize("policy", p.Policy) }
func (p EncryptParams) clone() Parameters   { return p }

// EDRMParams is the rights-management policy plus the granted permissions.
type EDRMParams struct {
	Policy  string `json:"policy" yaml:"policy"`
	Edit    bool   `json:"edit" yaml:"edit"`
	Print   bool   `json:"print" yaml:"print"`
	Copy    bool   `json:"copy" yaml:"copy"`
	Share   bool   `json:"share" yaml:"share"`
	Reshare bool   `json:"reshare" yaml:"reshare"`
}

func (EDRMParams) ActionType() ActionType { return ActionEDRM }
func (p EDRMParams) Summary() string {
	parts := []string{}
	if p.Policy != "" {
		parts = append(parts, "policy: "+p.Policy)
	}
	for _, perm := range []struct {
		name string
		on   bool
	}{{"edit", p.Edit}, {"print", p.Print}, {"copy", p.Copy}, {"share", p.Share}, {"reshare", p.Reshare}} {
		if perm.on {
			parts = append(parts, perm.name+": true")
		}
	}
	return strings.Join(parts, ", ")
}
func (p EDRMParams) clone() Parameters { return p }

func summarize(key, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return key + ": " + value
}

// NewParameters returns the zero parameters for an action type, or nil for an
// unset or unknown type.
func NewParameters(t ActionType) Parameters {
	switch t {
	case ActionTag:
		return TagParams{}
	case ActionVisualMarking:
		return VisualMarkingParams{}
	case ActionWatermark:
		return WatermarkParams{}
	case ActionClassify:
		return ClassifyParams{}
	case ActionEncrypt:
		return EncryptParams{}
	case ActionEDRM:
		return EDRMParams{}
	default:
		return nil
	}
}

// ActionSpec is a protection action attached to a rule. Type may be empty
// while a draft is being edited.
type ActionSpec struct {
	Type       ActionType
	Service    string
	Parameters Parameters
}

// NewAction returns an action of type t on the default service.
func NewAction(t ActionType, params Parameters) ActionSpec {
	if params == nil {
		params = NewParameters(t)
	}
	return ActionSpec{Type: t, Service: DefaultService, Parameters: params}
}

// WithType changes the action type and resets its parameters.
func (a ActionSpec) WithType(t ActionType) ActionSpec {
	a.Type = t
	a.Parameters = NewParameters(t)
	return a
}

func (a ActionSpec) String() string {
	s := fmt.Sprintf("%s via %s", a.Type, a.Service)
	if a.Parameters != nil {
		if sum := a.Parameters.Summary(); sum != "" {
			s += " (" + sum + ")"
		}
	}
	return s
}

type actionWire struct {
	Type       ActionType      `json:"type"`
	Service    string          `json:"service"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

func (a ActionSpec) MarshalJSON() ([]byte, error) {
	var params any = struct{}{}
	if a.Parameters != nil {
		params = a.Parameters
	}
	return json.Marshal(struct {
		Type       ActionType `json:"type"`
		Service    string     `json:"service"`
		Parameters any        `json:"parameters"`
	}{a.Type, a.Service, params})
}

func (a *ActionSpec) UnmarshalJSON(b []byte) error {
	var w actionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	params, err := decodeParameters(w.Type, func(dst any) error {
		if len(w.Parameters) == 0 || string(w.Parameters) == "null" {
			return nil
		}
		dec := json.NewDecoder(bytes.NewReader(w.Parameters))
		dec.DisallowUnknownFields()
		return dec.Decode(dst)
	})
	if err != nil {
		return err
	}
	*a = ActionSpec{Type: w.Type, Service: serviceOrDefault(w.Type, w.Service), Parameters: params}
	return nil
}

func (a *ActionSpec) UnmarshalYAML(node *yaml.Node) error {
	var w struct {
		Type       ActionType `yaml:"type"`
		Service    string     `yaml:"service"`
		Parameters yaml.Node  `yaml:"parameters"`
	}
	if err := node.Decode(&w); err != nil {
		return err
	}
	params, err := decodeParameters(w.Type, func(dst any) error {
		if w.Parameters.Kind == 0 {
			return nil
		}
		return w.Parameters.Decode(dst)
	})
	if err != nil {
		return err
	}
	*a = ActionSpec{Type: w.Type, Service: serviceOrDefault(w.Type, w.Service), Parameters: params}
	return nil
}

// serviceOrDefault fills the service for typed actions that omit it.
func serviceOrDefault(t ActionType, service string) string {
	service = strings.TrimSpace(service)
	if service == "" && t != "" {
		return DefaultService
	}
	return service
}

func decodeParameters(t ActionType, decode func(any) error) (Parameters, error) {
	switch t {
	case "":
		return nil, nil
	case ActionTag:
		var p TagParams
		err := decode(&p)
		return p, wrapParamErr(t, err)
	case ActionVisualMarking:
		var p VisualMarkingParams
		err := decode(&p)
		return p, wrapParamErr(t, err)
	case ActionWatermark:
		var p WatermarkParams
		err := decode(&p)
		return p, wrapParamErr(t, err)
	case ActionClassify:
		var p ClassifyParams
		err := decode(&p)
		return p, wrapParamErr(t, err)
	case ActionEncrypt:
		var p EncryptParams
		err := decode(&p)
		return p, wrapParamErr(t, err)
	case ActionEDRM:
		var p EDRMParams
		err := decode(&p)
		return p, wrapParamErr(t, err)
	default:
		return nil, fmt.Errorf("unsupported action type %q", t)
	}
}

func wrapParamErr(t ActionType, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s parameters: %w", t, err)
}

func cloneActions(in []ActionSpec) []ActionSpec {
	if in == nil {
		return nil
	}
	out := make([]ActionSpec, len(in))
	for i, a := range in {
		out[i] = a
		if a.Parameters != nil {
			out[i].Parameters = a.Parameters.clone()
		}
	}
	return out
}

// ActionSummary joins action types the way rule lists display them.
func ActionSummary(actions []ActionSpec) string {
	types := make([]string, 0, len(actions))
	for _, a := range actions {
		types = append(types, string(a.Type))
	}
	return strings.Join(types, ", ")
}
