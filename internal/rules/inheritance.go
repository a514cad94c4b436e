package rules

import "strings"

// Inheritance is the protection set a classification label hands to rules
// that classify with it. Empty fields are not inherited.
type Inheritance struct {
	VisualMarking string `json:"visualMarking,omitempty"`
	Watermark     string `json:"watermark,omitempty"`
	Encryption    string `json:"encryption,omitempty"`
	EDRM          string `json:"edrm,omitempty"`
}

func (in Inheritance) Empty() bool {
	return in.VisualMarking == "" && in.Watermark == "" && in.Encryption == "" && in.EDRM == ""
}

func (in Inheritance) actions() []ActionSpec {
	var out []ActionSpec
	if v := strings.TrimSpace(in.VisualMarking); v != "" {
		out = append(out, NewAction(ActionVisualMarking, VisualMarkingParams{Template: v}))
	}
	if v := strings.TrimSpace(in.Watermark); v != "" {
		out = append(out, NewAction(ActionWatermark, WatermarkParams{Template: v}))
	}
	if v := strings.TrimSpace(in.Encryption); v != "" {
		out = append(out, NewAction(ActionEncrypt, EncryptParams{Policy: v}))
	}
	if v := strings.TrimSpace(in.EDRM); v != "" {
		out = append(out, NewAction(ActionEDRM, EDRMParams{Policy: v}))
	}
	return out
}

// ApplyInheritance merges the label's protections into actions. A protection
// whose type is already present replaces that action's parameters in place;
// otherwise it is appended. The merged list is checked before it is returned.
func ApplyInheritance(actions []ActionSpec, in Inheritance) ([]ActionSpec, error) {
	out := cloneActions(actions)
	if out == nil {
		out = []ActionSpec{}
	}
	for _, inherited := range in.actions() {
		replaced := false
		for i := range out {
			if out[i].Type == inherited.Type {
				out[i].Parameters = inherited.Parameters
				if out[i].Service == "" {
					out[i].Service = inherited.Service
				}
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, inherited)
		}
	}
	if err := ValidateActionCombination(out); err != nil {
		return actions, err
	}
	return out, nil
}
