// Package store holds the rule set in process memory. Every method is
// synchronous and returns copies, so callers never share rule state.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/novadlp/nova-console/internal/rules"
)

var ErrNotFound = errors.New("rule not found")

type Store struct {
	mu        sync.RWMutex
	rules     []rules.Rule
	editingID string

	// Now is used for lastModified timestamps.
	Now func() time.Time
	// NewID assigns rule identifiers.
	NewID func() string
}

func New(seed []rules.Rule) *Store {
	s := &Store{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
	for _, r := range seed {
		s.rules = append(s.rules, r.Clone())
	}
	return s
}

// Rules returns every rule in insertion order.
func (s *Store) Rules() []rules.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]rules.Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

func (s *Store) Get(id string) (rules.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return rules.Rule{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.rules[i].Clone(), nil
}

// AddRule stores a new rule. The id and lastModified are assigned here;
// status defaults to live and frequency to continuous.
func (s *Store) AddRule(r rules.Rule) (rules.Rule, error) {
	r = r.Clone()
	r.Name = strings.TrimSpace(r.Name)
	if r.Status == "" {
		r.Status = rules.StatusLive
	}
	if r.Frequency == "" {
		r.Frequency = rules.FrequencyContinuous
	}
	if err := rules.ValidateRule(r).Err(); err != nil {
		return rules.Rule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.NewID()
	r.LastModified = s.Now()
	s.rules = append(s.rules, r)
	return r.Clone(), nil
}

// UpdateRule replaces the stored rule with the same id. Identity and status
// are kept; lastModified is refreshed.
func (s *Store) UpdateRule(r rules.Rule) (rules.Rule, error) {
	r = r.Clone()
	r.Name = strings.TrimSpace(r.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(r.ID)
	if i < 0 {
		return rules.Rule{}, fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}
	prev := s.rules[i]
	r.Status = prev.Status
	if r.Frequency == "" {
		r.Frequency = prev.Frequency
	}
	if err := rules.ValidateRule(r).Err(); err != nil {
		return rules.Rule{}, err
	}
	r.LastModified = s.Now()
	s.rules[i] = r
	return r.Clone(), nil
}

func (s *Store) DeleteRule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	if s.editingID == id {
		s.editingID = ""
	}
	return nil
}

// DuplicateRule copies a rule as a draft named "<name> (copy)".
func (s *Store) DuplicateRule(id string) (rules.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return rules.Rule{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	dup := s.rules[i].Clone()
	dup.ID = s.NewID()
	dup.Name = dup.Name + " (copy)"
	dup.Status = rules.StatusDraft
	dup.LastModified = s.Now()
	s.rules = append(s.rules, dup)
	return dup.Clone(), nil
}

func (s *Store) SetStatus(id string, status rules.Status) (rules.Rule, error) {
	if !status.Valid() {
		return rules.Rule{}, rules.FieldErrors{"status": fmt.Sprintf("Unknown status %q", status)}.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return rules.Rule{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.rules[i].Status = status
	s.rules[i].LastModified = s.Now()
	return s.rules[i].Clone(), nil
}

// SetEditingRule marks the rule the wizard is editing. An empty id clears the
// slot.
func (s *Store) SetEditingRule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.editingID = id
	return nil
}

// EditingRule returns the rule in the editing slot, if any.
func (s *Store) EditingRule() (rules.Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editingID == "" {
		return rules.Rule{}, false
	}
	i := s.indexLocked(s.editingID)
	if i < 0 {
		return rules.Rule{}, false
	}
	return s.rules[i].Clone(), true
}

// SaveDraft validates the wizard draft and stores it, as a new rule when
// editingID is empty and as an update otherwise. Updates keep the rule's
// category and classification. The editing slot is cleared.
func (s *Store) SaveDraft(d rules.Draft, editingID string) (rules.Rule, error) {
	d = d.Normalize()
	if err := rules.ValidateDraft(d).Err(); err != nil {
		return rules.Rule{}, err
	}

	r := d.ToRule()
	var (
		saved rules.Rule
		err   error
	)
	if editingID == "" {
		saved, err = s.AddRule(r)
	} else {
		prev, getErr := s.Get(editingID)
		if getErr != nil {
			return rules.Rule{}, getErr
		}
		// The wizard does not edit category or classification.
		r.ID = editingID
		r.Category = prev.Category
		r.Classification = prev.Classification
		saved, err = s.UpdateRule(r)
	}
	if err != nil {
		return rules.Rule{}, err
	}

	s.mu.Lock()
	s.editingID = ""
	s.mu.Unlock()
	return saved, nil
}

// CountByStatus reports how many rules are in each status.
func (s *Store) CountByStatus() map[rules.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[rules.Status]int{}
	for _, r := range s.rules {
		out[r.Status]++
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, r := range s.rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}
