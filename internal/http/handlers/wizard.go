package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/novadlp/nova-console/internal/labels"
	"github.com/novadlp/nova-console/internal/metrics"
	"github.com/novadlp/nova-console/internal/rules"
)

const wizardSessionKey = "rule_wizard"

// wizardState is the rule wizard form kept in the caller's session.
type wizardState struct {
	Step      rules.Step  `json:"step"`
	Draft     rules.Draft `json:"draft"`
	EditingID string      `json:"editingId,omitempty"`
}

func newWizardState() wizardState {
	return wizardState{Step: rules.StepDetails, Draft: rules.NewDraft()}
}

type wizardView struct {
	wizardState

	Summary  wizardSummary                `json:"summary"`
	Complete map[rules.Step]bool          `json:"complete"`
	Errors   rules.FieldErrors            `json:"errors,omitempty"`
	Inherit  map[string]rules.Inheritance `json:"inheritance,omitempty"`
}

type wizardSummary struct {
	Trigger string `json:"trigger"`
	Actions string `json:"actions"`
	Scope   string `json:"scope"`
}

func (h *Handlers) loadWizard(c *echo.Context) (wizardState, error) {
	raw := h.Sessions.GetBytes(c.Request().Context(), wizardSessionKey)
	if len(raw) == 0 {
		return newWizardState(), nil
	}
	var st wizardState
	if err := json.Unmarshal(raw, &st); err != nil {
		return wizardState{}, fmt.Errorf("decode wizard session: %w", err)
	}
	if _, ok := rules.ParseStep(string(st.Step)); !ok {
		st.Step = rules.StepDetails
	}
	return st, nil
}

func (h *Handlers) saveWizard(c *echo.Context, st wizardState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode wizard session: %w", err)
	}
	h.Sessions.Put(c.Request().Context(), wizardSessionKey, raw)
	return nil
}

func (h *Handlers) wizardView(st wizardState, errs rules.FieldErrors) wizardView {
	d := st.Draft.Normalize()
	complete := make(map[rules.Step]bool, len(rules.Steps))
	for _, step := range rules.Steps {
		complete[step] = rules.ValidateStep(d, step).Valid()
	}
	scope := strings.Join(d.Scope.Departments, ", ")
	if len(d.Scope.Channels) > 0 {
		scope += " / " + strings.Join(d.Scope.Channels, ", ")
	}

	view := wizardView{
		wizardState: st,
		Summary: wizardSummary{
			Trigger: rules.TriggerSummary(d.Trigger),
			Actions: rules.ActionSummary(d.Actions),
			Scope:   scope,
		},
		Complete: complete,
		Errors:   errs,
	}
	for _, a := range d.Actions {
		p, ok := a.Parameters.(rules.ClassifyParams)
		if !ok || p.Label == "" {
			continue
		}
		if in, ok := h.Labels.Inheritance(p.Label); ok && !in.Empty() {
			if view.Inherit == nil {
				view.Inherit = map[string]rules.Inheritance{}
			}
			view.Inherit[p.Label] = in
		}
	}
	return view
}

func (h *Handlers) respondWizard(c *echo.Context, status int, st wizardState) error {
	if err := h.saveWizard(c, st); err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, status, h.wizardView(st, nil))
}

// HandleGetWizard answers the caller's wizard state.
func (h *Handlers) HandleGetWizard(c *echo.Context) error {
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, http.StatusOK, h.wizardView(st, nil))
}

// HandleResetWizard discards the draft. A rule held in the editing slot for
// this draft is released.
func (h *Handlers) HandleResetWizard(c *echo.Context) error {
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	if st.EditingID != "" {
		if editing, ok := h.Rules.EditingRule(); ok && editing.ID == st.EditingID {
			if err := h.Rules.SetEditingRule(""); err != nil {
				return h.respondError(c, err)
			}
		}
	}
	h.Sessions.Remove(c.Request().Context(), wizardSessionKey)
	return respondData(c, http.StatusOK, h.wizardView(newWizardState(), nil))
}

type scopeToggle struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

type wizardStepRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Frequency   *string       `json:"frequency"`
	Departments []string      `json:"departments"`
	Channels    []string      `json:"channels"`
	Toggles     []scopeToggle `json:"toggles"`
	Source      *string       `json:"source"`
	Event       *string       `json:"event"`
}

func applyStepRequest(d rules.Draft, step rules.Step, in wizardStepRequest) (rules.Draft, error) {
	switch step {
	case rules.StepDetails:
		if in.Name != nil {
			d.Name = *in.Name
		}
		if in.Description != nil {
			d.Description = *in.Description
		}
		if in.Frequency != nil {
			d.Frequency = rules.Frequency(strings.ToLower(strings.TrimSpace(*in.Frequency)))
		}
		if in.Departments != nil {
			d.Scope.Departments = nil
			for _, name := range in.Departments {
				d.Scope = d.Scope.ToggleDepartment(name, true)
			}
		}
		if in.Channels != nil {
			d.Scope.Channels = nil
			for _, name := range in.Channels {
				d.Scope = d.Scope.ToggleChannel(name, true)
			}
		}
		for _, t := range in.Toggles {
			switch strings.ToLower(strings.TrimSpace(t.Kind)) {
			case "department":
				d.Scope = d.Scope.ToggleDepartment(t.Name, t.Checked)
			case "channel":
				d.Scope = d.Scope.ToggleChannel(t.Name, t.Checked)
			default:
				return d, badRequest("unknown scope toggle kind %q", t.Kind)
			}
		}
	case rules.StepTrigger:
		if in.Source != nil {
			d.Trigger.Source = *in.Source
		}
		if in.Event != nil {
			d.Trigger.Event = *in.Event
		}
	}
	return d, nil
}

// HandleWizardStep applies the fields owned by a step and validates it. A
// valid step advances the wizard; an invalid one keeps the edits and answers
// the field errors.
func (h *Handlers) HandleWizardStep(c *echo.Context) error {
	step, ok := rules.ParseStep(c.Param("step"))
	if !ok {
		return h.respondError(c, badRequest("unknown wizard step %q", c.Param("step")))
	}
	var in wizardStepRequest
	if err := decodeOptionalJSON(c, &in); err != nil {
		return h.respondError(c, err)
	}
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	if slices.Index(rules.Steps, step) > slices.Index(rules.Steps, st.Step) {
		return h.respondError(c, badRequest("complete the %s step first", st.Step))
	}

	st.Draft, err = applyStepRequest(st.Draft, step, in)
	if err != nil {
		return h.respondError(c, err)
	}
	if err := h.saveWizard(c, st); err != nil {
		return h.respondError(c, err)
	}

	if errs := rules.ValidateStep(st.Draft.Normalize(), step); !errs.Valid() {
		metrics.RuleValidationFailuresTotal.WithLabelValues(string(step)).Inc()
		return c.JSON(http.StatusUnprocessableEntity, APIResult{
			Error:  "Validation failed",
			Errors: errs,
			Data:   h.wizardView(st, errs),
		})
	}

	if next := step.Next(); slices.Index(rules.Steps, next) > slices.Index(rules.Steps, st.Step) {
		st.Step = next
	}
	return h.respondWizard(c, http.StatusOK, st)
}

// HandleAddCondition appends a default condition.
func (h *Handlers) HandleAddCondition(c *echo.Context) error {
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	st.Draft.Trigger.Conditions = rules.ConditionList(st.Draft.Trigger.Conditions).Add()
	return h.respondWizard(c, http.StatusOK, st)
}

// HandleUpdateCondition patches one condition in place.
func (h *Handlers) HandleUpdateCondition(c *echo.Context) error {
	index, err := pathIndex(c, "index")
	if err != nil {
		return h.respondError(c, err)
	}
	var patch rules.ConditionPatch
	if err := decodeJSON(c, &patch); err != nil {
		return h.respondError(c, err)
	}
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	list, err := rules.ConditionList(st.Draft.Trigger.Conditions).Update(index, patch)
	if err != nil {
		return h.respondError(c, err)
	}
	st.Draft.Trigger.Conditions = list
	return h.respondWizard(c, http.StatusOK, st)
}

// HandleRemoveCondition drops one condition. The list may become empty.
func (h *Handlers) HandleRemoveCondition(c *echo.Context) error {
	index, err := pathIndex(c, "index")
	if err != nil {
		return h.respondError(c, err)
	}
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	list, err := rules.ConditionList(st.Draft.Trigger.Conditions).Remove(index)
	if err != nil {
		return h.respondError(c, err)
	}
	st.Draft.Trigger.Conditions = list
	return h.respondWizard(c, http.StatusOK, st)
}

// HandleAddAction appends the posted action, or an untyped one on the
// default service when the body is empty.
func (h *Handlers) HandleAddAction(c *echo.Context) error {
	action := rules.ActionSpec{Service: rules.DefaultService}
	if err := decodeOptionalJSON(c, &action); err != nil {
		return h.respondError(c, err)
	}
	action = withDefaultParameters(action)
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	actions := append(slices.Clone(st.Draft.Actions), action)
	if err := rules.ValidateActionCombination(actions); err != nil {
		return h.respondError(c, err)
	}
	st.Draft.Actions = actions
	return h.respondWizard(c, http.StatusOK, st)
}

// HandleUpdateAction replaces one action. Changing the type without
// parameters resets them to the new type's zero value.
func (h *Handlers) HandleUpdateAction(c *echo.Context) error {
	index, err := pathIndex(c, "index")
	if err != nil {
		return h.respondError(c, err)
	}
	var action rules.ActionSpec
	if err := decodeJSON(c, &action); err != nil {
		return h.respondError(c, err)
	}
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	if index >= len(st.Draft.Actions) {
		return h.respondError(c, badRequest("action index %d out of range", index))
	}
	if action.Service == "" {
		action.Service = st.Draft.Actions[index].Service
	}
	action = withDefaultParameters(action)
	actions := slices.Clone(st.Draft.Actions)
	actions[index] = action
	if err := rules.ValidateActionCombination(actions); err != nil {
		return h.respondError(c, err)
	}
	st.Draft.Actions = actions
	return h.respondWizard(c, http.StatusOK, st)
}

func withDefaultParameters(a rules.ActionSpec) rules.ActionSpec {
	if a.Parameters == nil && a.Type != "" {
		return a.WithType(a.Type)
	}
	return a
}

func (h *Handlers) HandleRemoveAction(c *echo.Context) error {
	index, err := pathIndex(c, "index")
	if err != nil {
		return h.respondError(c, err)
	}
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	if index >= len(st.Draft.Actions) {
		return h.respondError(c, badRequest("action index %d out of range", index))
	}
	st.Draft.Actions = slices.Delete(slices.Clone(st.Draft.Actions), index, index+1)
	return h.respondWizard(c, http.StatusOK, st)
}

// HandleInheritProtections accepts the protections of the label a classify
// action applies.
func (h *Handlers) HandleInheritProtections(c *echo.Context) error {
	index, err := pathIndex(c, "index")
	if err != nil {
		return h.respondError(c, err)
	}
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	if index >= len(st.Draft.Actions) {
		return h.respondError(c, badRequest("action index %d out of range", index))
	}
	p, ok := st.Draft.Actions[index].Parameters.(rules.ClassifyParams)
	if !ok || strings.TrimSpace(p.Label) == "" {
		return h.respondError(c, badRequest("action %d does not classify with a label", index))
	}
	in, ok := h.Labels.Inheritance(p.Label)
	if !ok {
		return h.respondError(c, fmt.Errorf("%w: %s", labels.ErrNotFound, p.Label))
	}
	actions, err := rules.ApplyInheritance(st.Draft.Actions, in)
	if err != nil {
		return h.respondError(c, err)
	}
	st.Draft.Actions = actions
	return h.respondWizard(c, http.StatusOK, st)
}

// HandleSaveWizard stores the draft as a new rule, or as an update of the
// rule it was loaded from, and resets the wizard.
func (h *Handlers) HandleSaveWizard(c *echo.Context) error {
	st, err := h.loadWizard(c)
	if err != nil {
		return h.respondError(c, err)
	}
	operation := "create"
	if st.EditingID != "" {
		operation = "update"
	}
	saved, err := h.Rules.SaveDraft(st.Draft, st.EditingID)
	metrics.RecordRuleMutation(operation, err)
	if err != nil {
		if errs := validationFields(err); errs != nil {
			metrics.RuleValidationFailuresTotal.WithLabelValues(string(rules.StepReview)).Inc()
			return c.JSON(http.StatusUnprocessableEntity, APIResult{
				Error:  "Validation failed",
				Errors: errs,
				Data:   h.wizardView(st, errs),
			})
		}
		return h.respondError(c, err)
	}
	h.ObserveRuleCounts()
	h.Sessions.Remove(c.Request().Context(), wizardSessionKey)

	status := http.StatusCreated
	if operation == "update" {
		status = http.StatusOK
	}
	return respondData(c, status, saved)
}
