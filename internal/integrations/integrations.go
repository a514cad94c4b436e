// Package integrations is the registry of connected security tools and data
// sources, with their field mappings and site scope.
package integrations

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/novadlp/nova-console/internal/rules"
)

type Type string

const (
	TypeDLP        Type = "DLP"
	TypeDSPM       Type = "DSPM"
	TypeCASB       Type = "CASB"
	TypeRepository Type = "REPOSITORY"
)

var Types = []Type{TypeDLP, TypeDSPM, TypeCASB, TypeRepository}

type SyncFrequency string

const (
	SyncRealtime SyncFrequency = "realtime"
	SyncHourly   SyncFrequency = "hourly"
	SyncDaily    SyncFrequency = "daily"
)

func (f SyncFrequency) Valid() bool {
	switch f {
	case SyncRealtime, SyncHourly, SyncDaily:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

var ConnectionTypes = []string{"api", "syslog", "webhook"}

// ExternalFields and NovaFields are the columns the field mapper offers.
var (
	ExternalFields = []string{"event_type", "username", "file_name", "classification", "action_taken", "destination", "timestamp"}
	NovaFields     = []string{"event_type", "user", "file_name", "sensitivity_tag", "action", "destination", "time"}
)

var (
	ErrNotFound      = errors.New("integration not found")
	ErrMappingIndex  = errors.New("field mapping index out of range")
	ErrMappingsInUse = errors.New("every field is already mapped")
	ErrUnknownField  = errors.New("unknown mapping field")
	ErrFieldMapped   = errors.New("field is already mapped")
)

type FieldMapping struct {
	ExternalField string `json:"externalField" yaml:"externalField"`
	NovaField     string `json:"novaField" yaml:"novaField"`
}

type Integration struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Type           Type           `json:"type" yaml:"type"`
	Source         string         `json:"source" yaml:"source"`
	ConnectionType string         `json:"connectionType" yaml:"connectionType"`
	EventTypes     []string       `json:"eventTypes" yaml:"eventTypes"`
	SyncFrequency  SyncFrequency  `json:"syncFrequency" yaml:"syncFrequency"`
	FieldMapping   []FieldMapping `json:"fieldMapping" yaml:"fieldMapping"`
	Sites          []string       `json:"sites" yaml:"sites"`
	Status         Status         `json:"status" yaml:"status"`
	LastSync       time.Time      `json:"lastSync" yaml:"lastSync"`
}

func (i Integration) clone() Integration {
	out := i
	out.EventTypes = slices.Clone(i.EventTypes)
	out.FieldMapping = slices.Clone(i.FieldMapping)
	out.Sites = slices.Clone(i.Sites)
	return out
}

// Validate checks the add-integration form. The type is upper-cased first.
func Validate(i Integration) rules.FieldErrors {
	errs := rules.FieldErrors{}
	if strings.TrimSpace(i.Name) == "" {
		errs["name"] = "Name is required"
	}
	t := Type(strings.ToUpper(strings.TrimSpace(string(i.Type))))
	switch {
	case t == "":
		errs["type"] = "Type is required"
	case !slices.Contains(Types, t):
		errs["type"] = fmt.Sprintf("Unknown integration type %q", i.Type)
	}
	if strings.TrimSpace(i.Source) == "" {
		errs["source"] = "Source is required"
	}
	switch ct := strings.TrimSpace(i.ConnectionType); {
	case ct == "":
		errs["connectionType"] = "Connection type is required"
	case !slices.Contains(ConnectionTypes, ct):
		errs["connectionType"] = fmt.Sprintf("Unknown connection type %q", ct)
	}
	if len(i.EventTypes) == 0 {
		errs["eventTypes"] = "At least one event type is required"
	}
	if !i.SyncFrequency.Valid() {
		errs["syncFrequency"] = fmt.Sprintf("Unknown sync frequency %q", i.SyncFrequency)
	}
	return errs
}

type Store struct {
	mu           sync.RWMutex
	integrations []Integration

	Now   func() time.Time
	NewID func() string
}

func New(seed []Integration) *Store {
	s := &Store{Now: time.Now, NewID: uuid.NewString}
	for _, i := range seed {
		s.integrations = append(s.integrations, i.clone())
	}
	return s
}

func (s *Store) List() []Integration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Integration, len(s.integrations))
	for i, in := range s.integrations {
		out[i] = in.clone()
	}
	return out
}

func (s *Store) Get(id string) (Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Integration{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.integrations[i].clone(), nil
}

// Add registers a validated integration as connected and just synced.
func (s *Store) Add(in Integration) (Integration, error) {
	in = in.clone()
	in.Name = strings.TrimSpace(in.Name)
	in.Type = Type(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	in.ConnectionType = strings.TrimSpace(in.ConnectionType)
	if in.SyncFrequency == "" {
		in.SyncFrequency = SyncRealtime
	}
	if err := Validate(in).Err(); err != nil {
		return Integration{}, err
	}
	if in.FieldMapping == nil {
		in.FieldMapping = []FieldMapping{}
	}
	if in.Sites == nil {
		in.Sites = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.NewID()
	in.Status = StatusConnected
	in.LastSync = s.Now()
	s.integrations = append(s.integrations, in)
	return in.clone(), nil
}

// AddFieldMapping appends a row pairing the first unmapped external field
// with the first unmapped Nova field.
func (s *Store) AddFieldMapping(id string) (Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Integration{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur := &s.integrations[i]
	ext := firstUnused(ExternalFields, cur.FieldMapping, func(m FieldMapping) string { return m.ExternalField })
	nova := firstUnused(NovaFields, cur.FieldMapping, func(m FieldMapping) string { return m.NovaField })
	if ext == "" || nova == "" {
		return Integration{}, ErrMappingsInUse
	}
	cur.FieldMapping = append(cur.FieldMapping, FieldMapping{ExternalField: ext, NovaField: nova})
	return cur.clone(), nil
}

func (s *Store) RemoveFieldMapping(id string, index int) (Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Integration{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur := &s.integrations[i]
	if index < 0 || index >= len(cur.FieldMapping) {
		return Integration{}, fmt.Errorf("%w: %d", ErrMappingIndex, index)
	}
	cur.FieldMapping = slices.Delete(cur.FieldMapping, index, index+1)
	return cur.clone(), nil
}

// UpdateFieldMapping edits the row at index. An empty side keeps its current
// value. Each side must be a known field that no other row maps.
func (s *Store) UpdateFieldMapping(id string, index int, m FieldMapping) (Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Integration{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur := &s.integrations[i]
	if index < 0 || index >= len(cur.FieldMapping) {
		return Integration{}, fmt.Errorf("%w: %d", ErrMappingIndex, index)
	}

	next := cur.FieldMapping[index]
	if v := strings.TrimSpace(m.ExternalField); v != "" {
		next.ExternalField = v
	}
	if v := strings.TrimSpace(m.NovaField); v != "" {
		next.NovaField = v
	}
	if !slices.Contains(ExternalFields, next.ExternalField) {
		return Integration{}, fmt.Errorf("%w: external field %q", ErrUnknownField, next.ExternalField)
	}
	if !slices.Contains(NovaFields, next.NovaField) {
		return Integration{}, fmt.Errorf("%w: nova field %q", ErrUnknownField, next.NovaField)
	}
	for j, other := range cur.FieldMapping {
		if j == index {
			continue
		}
		if other.ExternalField == next.ExternalField {
			return Integration{}, fmt.Errorf("%w: external field %q (row %d)", ErrFieldMapped, next.ExternalField, j)
		}
		if other.NovaField == next.NovaField {
			return Integration{}, fmt.Errorf("%w: nova field %q (row %d)", ErrFieldMapped, next.NovaField, j)
		}
	}
	cur.FieldMapping[index] = next
	return cur.clone(), nil
}

// SetSites replaces the site scope. Duplicate ids are dropped.
func (s *Store) SetSites(id string, sites []string) (Integration, error) {
	seen := map[string]struct{}{}
	clean := make([]string, 0, len(sites))
	for _, site := range sites {
		site = strings.TrimSpace(site)
		if site == "" {
			continue
		}
		if _, ok := seen[site]; ok {
			continue
		}
		seen[site] = struct{}{}
		clean = append(clean, site)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Integration{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.integrations[i].Sites = clean
	return s.integrations[i].clone(), nil
}

func (s *Store) indexLocked(id string) int {
	for i := range s.integrations {
		if s.integrations[i].ID == id {
			return i
		}
	}
	return -1
}

func firstUnused(options []string, used []FieldMapping, key func(FieldMapping) string) string {
	for _, opt := range options {
		taken := false
		for _, m := range used {
			if key(m) == opt {
				taken = true
				break
			}
		}
		if !taken {
			return opt
		}
	}
	return ""
}
