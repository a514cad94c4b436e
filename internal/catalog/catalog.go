// Package catalog holds the option lists the console offers when composing
// rules: scope values, trigger fields and the protection templates and
// policies actions can reference.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/novadlp/nova-console/internal/rules"
)

//go:embed default.yaml
var defaultYAML []byte

type Catalog struct {
	Departments            []string `json:"departments" yaml:"departments"`
	Channels               []string `json:"channels" yaml:"channels"`
	Fields                 []string `json:"fields" yaml:"fields"`
	Sources                []string `json:"sources" yaml:"sources"`
	Events                 []string `json:"events" yaml:"events"`
	Tags                   []string `json:"tags" yaml:"tags"`
	VisualMarkingTemplates []string `json:"visualMarkingTemplates" yaml:"visualMarkingTemplates"`
	WatermarkTemplates     []string `json:"watermarkTemplates" yaml:"watermarkTemplates"`
	EncryptionPolicies     []string `json:"encryptionPolicies" yaml:"encryptionPolicies"`
	EDRMPolicies           []string `json:"edrmPolicies" yaml:"edrmPolicies"`
	EDRMPermissions        []string `json:"edrmPermissions" yaml:"edrmPermissions"`
	Operators              []string `json:"operators" yaml:"-"`
	ActionTypes            []string `json:"actionTypes" yaml:"-"`
}

// Parse decodes and checks a catalog document. Operators and action types
// are fixed by the rule model and always filled in.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for _, op := range rules.Operators {
		c.Operators = append(c.Operators, string(op))
	}
	for _, t := range rules.ActionTypes {
		c.ActionTypes = append(c.ActionTypes, string(t))
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	required := []struct {
		name   string
		values []string
	}{
		{"departments", c.Departments},
		{"channels", c.Channels},
		{"fields", c.Fields},
		{"sources", c.Sources},
		{"events", c.Events},
	}
	for _, r := range required {
		if len(r.values) == 0 {
			errs = append(errs, fmt.Errorf("%s must not be empty", r.name))
		}
	}
	if len(c.Departments) > 0 && !slices.Contains(c.Departments, rules.AllDepartments) {
		errs = append(errs, fmt.Errorf("departments must include %q", rules.AllDepartments))
	}
	if len(c.Channels) > 0 && !slices.Contains(c.Channels, rules.AllChannels) {
		errs = append(errs, fmt.Errorf("channels must include %q", rules.AllChannels))
	}
	return errors.Join(errs...)
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads path, or returns the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Holder gives readers the current catalog while a watcher swaps it.
type Holder struct {
	cur atomic.Pointer[Catalog]
}

func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.cur.Store(c)
	return h
}

func (h *Holder) Get() *Catalog {
	return h.cur.Load()
}

func (h *Holder) Set(c *Catalog) {
	if c != nil {
		h.cur.Store(c)
	}
}
