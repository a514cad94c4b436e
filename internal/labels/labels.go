// Package labels manages the classification label tree and the protections a
// label hands down to the rules that classify with it.
package labels

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/novadlp/nova-console/internal/rules"
)

const (
	MinSensitivity = 1
	MaxSensitivity = 10

	defaultColor = "#6B7280"
)

var (
	ErrNotFound           = errors.New("label not found")
	ErrNestedSublabel     = errors.New("sublabels cannot have sublabels")
	ErrSensitivityRange   = fmt.Errorf("sensitivity level must be between %d and %d", MinSensitivity, MaxSensitivity)
	ErrNameRequired       = errors.New("label name is required")
	ErrInvalidEmailDomain = errors.New("invalid email domain")
)

// Protection lists what a label enforces. Empty fields are not enforced.
type Protection struct {
	VisualMarking string   `json:"visualMarking" yaml:"visualMarking"`
	Watermark     string   `json:"watermark" yaml:"watermark"`
	Encryption    string   `json:"encryption" yaml:"encryption"`
	EDRM          string   `json:"edrm" yaml:"edrm"`
	EmailDomains  []string `json:"emailDomains" yaml:"emailDomains"`
}

type Label struct {
	ID               string     `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	Description      string     `json:"description" yaml:"description"`
	Tooltip          string     `json:"tooltip" yaml:"tooltip"`
	SensitivityLevel int        `json:"sensitivityLevel" yaml:"sensitivityLevel"`
	Color            string     `json:"color" yaml:"color"`
	LastModified     time.Time  `json:"lastModified" yaml:"lastModified"`
	Sublabels        []Label    `json:"sublabels" yaml:"sublabels"`
	Protection       Protection `json:"protection" yaml:"protection"`
}

func (l Label) clone() Label {
	out := l
	out.Protection.EmailDomains = append([]string(nil), l.Protection.EmailDomains...)
	if l.Sublabels != nil {
		out.Sublabels = make([]Label, len(l.Sublabels))
		for i, sub := range l.Sublabels {
			out.Sublabels[i] = sub.clone()
		}
	}
	return out
}

// Inheritance returns the protections rules pick up when they classify with l.
func (l Label) Inheritance() rules.Inheritance {
	return rules.Inheritance{
		VisualMarking: l.Protection.VisualMarking,
		Watermark:     l.Protection.Watermark,
		Encryption:    l.Protection.Encryption,
		EDRM:          l.Protection.EDRM,
	}
}

func validateSensitivity(level int) error {
	if level < MinSensitivity || level > MaxSensitivity {
		return fmt.Errorf("%w: got %d", ErrSensitivityRange, level)
	}
	return nil
}

// NormalizeEmailDomains reduces each entry to its registrable domain, drops
// duplicates and keeps input order. Entries may be bare domains or addresses.
func NormalizeEmailDomains(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		d := strings.ToLower(strings.TrimSpace(raw))
		if i := strings.LastIndex(d, "@"); i >= 0 {
			d = d[i+1:]
		}
		d = strings.TrimSuffix(d, ".")
		if d == "" {
			continue
		}
		reg, err := publicsuffix.EffectiveTLDPlusOne(d)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidEmailDomain, raw, err)
		}
		if _, ok := seen[reg]; ok {
			continue
		}
		seen[reg] = struct{}{}
		out = append(out, reg)
	}
	return out, nil
}

func normalizeLabel(l Label) (Label, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return l, ErrNameRequired
	}
	if err := validateSensitivity(l.SensitivityLevel); err != nil {
		return l, err
	}
	if strings.TrimSpace(l.Color) == "" {
		l.Color = defaultColor
	}
	domains, err := NormalizeEmailDomains(l.Protection.EmailDomains)
	if err != nil {
		return l, err
	}
	l.Protection.EmailDomains = domains
	return l, nil
}

// Store is the in-memory label tree. Top-level labels may carry one level of
// sublabels.
type Store struct {
	mu     sync.RWMutex
	labels []Label

	Now   func() time.Time
	NewID func() string
}

// New builds a store from seed labels. Seed labels are validated like
// created ones.
func New(seed []Label) (*Store, error) {
	s := &Store{Now: time.Now, NewID: uuid.NewString}
	for _, l := range seed {
		nl, err := normalizeLabel(l)
		if err != nil {
			return nil, fmt.Errorf("seed label %q: %w", l.Name, err)
		}
		subs := make([]Label, 0, len(l.Sublabels))
		for _, sub := range l.Sublabels {
			if len(sub.Sublabels) > 0 {
				return nil, fmt.Errorf("seed label %q: %w", sub.Name, ErrNestedSublabel)
			}
			ns, err := normalizeLabel(sub)
			if err != nil {
				return nil, fmt.Errorf("seed label %q: %w", sub.Name, err)
			}
			subs = append(subs, ns)
		}
		nl.Sublabels = subs
		s.labels = append(s.labels, nl.clone())
	}
	return s, nil
}

func (s *Store) List() []Label {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Label, len(s.labels))
	for i, l := range s.labels {
		out[i] = l.clone()
	}
	return out
}

func (s *Store) Get(id string) (Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.findLocked(id)
	if l == nil {
		return Label{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.clone(), nil
}

// FindByName matches top-level labels and sublabels, ignoring case.
func (s *Store) FindByName(name string) (Label, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.labels {
		if strings.EqualFold(l.Name, name) {
			return l.clone(), true
		}
		for _, sub := range l.Sublabels {
			if strings.EqualFold(sub.Name, name) {
				return sub.clone(), true
			}
		}
	}
	return Label{}, false
}

// Inheritance returns the protections of the label called name. ok is false
// when no label has that name.
func (s *Store) Inheritance(name string) (rules.Inheritance, bool) {
	l, ok := s.FindByName(name)
	if !ok {
		return rules.Inheritance{}, false
	}
	return l.Inheritance(), true
}

func (s *Store) Create(l Label) (Label, error) {
	l = l.clone()
	l.Sublabels = nil
	nl, err := normalizeLabel(l)
	if err != nil {
		return Label{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	nl.ID = s.NewID()
	nl.LastModified = s.Now()
	nl.Sublabels = []Label{}
	s.labels = append(s.labels, nl)
	return nl.clone(), nil
}

// AddSublabel creates a sublabel under parentID. Zero sensitivity and empty
// color are taken from the parent.
func (s *Store) AddSublabel(parentID string, sub Label) (Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.topIndexLocked(parentID)
	if i < 0 {
		if s.findLocked(parentID) != nil {
			return Label{}, ErrNestedSublabel
		}
		return Label{}, fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	if len(sub.Sublabels) > 0 {
		return Label{}, ErrNestedSublabel
	}
	parent := &s.labels[i]
	sub = sub.clone()
	if sub.SensitivityLevel == 0 {
		sub.SensitivityLevel = parent.SensitivityLevel
	}
	if strings.TrimSpace(sub.Color) == "" {
		sub.Color = parent.Color
	}
	ns, err := normalizeLabel(sub)
	if err != nil {
		return Label{}, err
	}
	ns.ID = s.NewID()
	ns.LastModified = s.Now()
	ns.Sublabels = nil
	parent.Sublabels = append(parent.Sublabels, ns)
	parent.LastModified = ns.LastModified
	return ns.clone(), nil
}

// Update replaces the editable fields of a label. Sublabels are managed
// through AddSublabel and Delete and are left untouched.
func (s *Store) Update(l Label) (Label, error) {
	nl, err := normalizeLabel(l.clone())
	if err != nil {
		return Label{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.findLocked(l.ID)
	if cur == nil {
		return Label{}, fmt.Errorf("%w: %s", ErrNotFound, l.ID)
	}
	nl.Sublabels = cur.Sublabels
	nl.LastModified = s.Now()
	*cur = nl
	return cur.clone(), nil
}

func (s *Store) SetSensitivity(id string, level int) (Label, error) {
	if err := validateSensitivity(level); err != nil {
		return Label{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.findLocked(id)
	if cur == nil {
		return Label{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur.SensitivityLevel = level
	cur.LastModified = s.Now()
	return cur.clone(), nil
}

func (s *Store) SetProtection(id string, p Protection) (Label, error) {
	domains, err := NormalizeEmailDomains(p.EmailDomains)
	if err != nil {
		return Label{}, err
	}
	p.EmailDomains = domains
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.findLocked(id)
	if cur == nil {
		return Label{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur.Protection = p
	cur.LastModified = s.Now()
	return cur.clone(), nil
}

// Delete removes a label or sublabel. Deleting a top-level label removes its
// sublabels with it.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.topIndexLocked(id); i >= 0 {
		s.labels = append(s.labels[:i], s.labels[i+1:]...)
		return nil
	}
	for i := range s.labels {
		subs := s.labels[i].Sublabels
		for j := range subs {
			if subs[j].ID == id {
				s.labels[i].Sublabels = append(subs[:j], subs[j+1:]...)
				s.labels[i].LastModified = s.Now()
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Store) topIndexLocked(id string) int {
	for i := range s.labels {
		if s.labels[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findLocked(id string) *Label {
	if id == "" {
		return nil
	}
	for i := range s.labels {
		if s.labels[i].ID == id {
			return &s.labels[i]
		}
		for j := range s.labels[i].Sublabels {
			if s.labels[i].Sublabels[j].ID == id {
				return &s.labels[i].Sublabels[j]
			}
		}
	}
	return nil
}
