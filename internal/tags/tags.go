// Package tags keeps the tag definitions that tag actions apply, with a
// change history per tag.
package tags

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

type Status string

const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDeprecated
}

// DefaultActor is recorded on history entries when no user is given.
const DefaultActor = "Admin"

const (
	defaultCategory = "Compliance"
	defaultColor    = "#3B82F6"
)

var (
	ErrNotFound      = errors.New("tag not found")
	ErrDuplicateName = errors.New("a tag with this name already exists")
)

// Change is one entry in a tag's history. Changes holds the fields the
// action set, by name.
type Change struct {
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Action    string            `json:"action" yaml:"action"`
	User      string            `json:"user" yaml:"user"`
	Changes   map[string]string `json:"changes" yaml:"changes"`
}

type Tag struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Category    string    `json:"category" yaml:"category"`
	Color       string    `json:"color" yaml:"color"`
	CreatedBy   string    `json:"createdBy" yaml:"createdBy"`
	LastUpdated time.Time `json:"lastUpdated" yaml:"lastUpdated"`
	UsageCount  int       `json:"usageCount" yaml:"usageCount"`
	Status      Status    `json:"status" yaml:"status"`
	History     []Change  `json:"history" yaml:"history"`
}

func (t Tag) clone() Tag {
	out := t
	if t.History != nil {
		out.History = make([]Change, len(t.History))
		for i, h := range t.History {
			h.Changes = cloneMap(h.Changes)
			out.History[i] = h
		}
	}
	return out
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Edit carries the editable fields of a tag. Nil fields are left alone.
type Edit struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Color       *string `json:"color,omitempty"`
}

type Store struct {
	mu   sync.RWMutex
	tags []Tag

	Now   func() time.Time
	NewID func() string
}

// New loads seed tags. Names must be unique ignoring case.
func New(seed []Tag) (*Store, error) {
	s := &Store{Now: time.Now, NewID: uuid.NewString}
	for _, t := range seed {
		t = t.clone()
		t.Name = strings.TrimSpace(t.Name)
		if t.Status == "" {
			t.Status = StatusActive
		}
		if errs := validate(t); !errs.Valid() {
			return nil, fmt.Errorf("seed tag %q: %w", t.Name, errs.Err())
		}
		if s.nameTakenLocked(t.Name, "") {
			return nil, fmt.Errorf("seed tag %q: %w", t.Name, ErrDuplicateName)
		}
		s.tags = append(s.tags, t)
	}
	return s, nil
}

func validate(t Tag) rules.FieldErrors {
	errs := rules.FieldErrors{}
	if strings.TrimSpace(t.Name) == "" {
		errs["name"] = "Name is required"
	}
	if t.Status != "" && !t.Status.Valid() {
		errs["status"] = fmt.Sprintf("Unknown status %q", t.Status)
	}
	return errs
}

func actor(user string) string {
	if user = strings.TrimSpace(user); user != "" {
		return user
	}
	return DefaultActor
}

// List returns the tags matching f in f's order.
func (s *Store) List(f Filter) ([]Tag, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if f.matches(t) {
			out = append(out, t.clone())
		}
	}
	s.mu.RUnlock()
	f.order(out)
	return out, nil
}

func (s *Store) Get(id string) (Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Tag{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tags[i].clone(), nil
}

// Create adds an active tag with a "Created" history entry.
func (s *Store) Create(t Tag, user string) (Tag, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	if errs := validate(t); !errs.Valid() {
		return Tag{}, errs.Err()
	}
	if t.Category == "" {
		t.Category = defaultCategory
	}
	if t.Color == "" {
		t.Color = defaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTakenLocked(t.Name, "") {
		return Tag{}, fmt.Errorf("%w: %s", ErrDuplicateName, t.Name)
	}
	now := s.Now()
	who := actor(user)
	out := Tag{
		ID:          s.NewID(),
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Color:       t.Color,
		CreatedBy:   who,
		LastUpdated: now,
		Status:      StatusActive,
		History: []Change{{
			Timestamp: now,
			Action:    "Created",
			User:      who,
			Changes:   map[string]string{"name": t.Name, "description": t.Description},
		}},
	}
	s.tags = append(s.tags, out)
	return out.clone(), nil
}

// Update applies e and records the fields that actually changed. An edit
// that changes nothing leaves the tag and its history untouched.
func (s *Store) Update(id string, e Edit, user string) (Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Tag{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur := &s.tags[i]
	changes := map[string]string{}
	next := *cur

	set := func(key string, dst *string, v *string) {
		if v == nil {
			return
		}
		val := strings.TrimSpace(*v)
		if val != *dst {
			*dst = val
			changes[key] = val
		}
	}
	set("name", &next.Name, e.Name)
	set("description", &next.Description, e.Description)
	set("category", &next.Category, e.Category)
	set("color", &next.Color, e.Color)

	if errs := validate(next); !errs.Valid() {
		return Tag{}, errs.Err()
	}
	if _, renamed := changes["name"]; renamed && s.nameTakenLocked(next.Name, id) {
		return Tag{}, fmt.Errorf("%w: %s", ErrDuplicateName, next.Name)
	}
	if len(changes) == 0 {
		return cur.clone(), nil
	}

	now := s.Now()
	next.LastUpdated = now
	next.History = append(slices.Clone(cur.History), Change{Timestamp: now, Action: "Updated", User: actor(user), Changes: changes})
	*cur = next
	return cur.clone(), nil
}

// Deprecate retires a tag. It stays listed but is no longer offered to tag
// actions. Deprecating a deprecated tag is a no-op.
func (s *Store) Deprecate(id, user string) (Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return Tag{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur := &s.tags[i]
	if cur.Status == StatusDeprecated {
		return cur.clone(), nil
	}
	now := s.Now()
	cur.Status = StatusDeprecated
	cur.LastUpdated = now
	cur.History = append(cur.History, Change{
		Timestamp: now,
		Action:    "Deprecated",
		User:      actor(user),
		Changes:   map[string]string{"status": string(StatusDeprecated)},
	})
	return cur.clone(), nil
}

// History returns a tag's changes, oldest first.
func (s *Store) History(id string) ([]Change, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if t.History == nil {
		return []Change{}, nil
	}
	return t.History, nil
}

// OfferedNames returns the tag names a tag action may choose from: base
// without deprecated tags, followed by active tags base does not list.
func (s *Store) OfferedNames(base []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := make(map[string]Status, len(s.tags))
	for _, t := range s.tags {
		status[strings.ToLower(t.Name)] = t.Status
	}
	out := make([]string, 0, len(base)+len(s.tags))
	seen := map[string]struct{}{}
	for _, name := range base {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := seen[key]; dup || status[key] == StatusDeprecated {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	for _, t := range s.tags {
		key := strings.ToLower(t.Name)
		if _, dup := seen[key]; dup || t.Status != StatusActive {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t.Name)
	}
	return out
}

func (s *Store) nameTakenLocked(name, exceptID string) bool {
	for _, t := range s.tags {
		if t.ID != exceptID && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tags {
		if s.tags[i].ID == id {
			return i
		}
	}
	return -1
}
