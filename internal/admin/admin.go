// Package admin is the administrative role catalog and the directory of
// admin accounts shown on the Administration screen.
package admin

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
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// CustomRoleID is the role that takes a free-form role name.
const CustomRoleID = "custom"

var ErrNotFound = errors.New("admin user not found")

type Role struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Modules     []string `json:"modules" yaml:"modules"`
	Personas    []string `json:"personas" yaml:"personas"`
}

type User struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Email      string    `json:"email" yaml:"email"`
	Role       string    `json:"role" yaml:"role"`
	Status     Status    `json:"status" yaml:"status"`
	LastActive time.Time `json:"lastActive" yaml:"lastActive"`
	Department string    `json:"department,omitempty" yaml:"department"`
}

// Filter narrows the user list. Zero fields match everything.
type Filter struct {
	Search string
	Role   string
	Status Status
}

func (f Filter) match(u User) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}
	if f.Role != "" && !strings.EqualFold(u.Role, f.Role) {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	return true
}

// Summary holds the counters on top of the Administration screen.
type Summary struct {
	Total  int            `json:"total"`
	Active int            `json:"active"`
	ByRole map[string]int `json:"byRole"`
}

type Directory struct {
	mu    sync.RWMutex
	roles []Role
	users []User

	NewID func() string
}

func NewDirectory(roles []Role, users []User) *Directory {
	return &Directory{
		roles: slices.Clone(roles),
		users: slices.Clone(users),
		NewID: uuid.NewString,
	}
}

func (d *Directory) Roles() []Role {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.roles)
}

// Role finds a role by id or display name.
func (d *Directory) Role(key string) (Role, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.roles {
		if r.ID == key || strings.EqualFold(r.Name, key) {
			return r, true
		}
	}
	return Role{}, false
}

func (d *Directory) Users(f Filter) []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		if f.match(u) {
			out = append(out, u)
		}
	}
	return out
}

func (d *Directory) Summary() Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Summary{Total: len(d.users), ByRole: map[string]int{}}
	for _, u := range d.users {
		if u.Status == StatusActive {
			s.Active++
		}
		s.ByRole[u.Role]++
	}
	return s
}

// NewUser is the create-administrator form.
type NewUser struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	RoleID         string `json:"roleId"`
	CustomRoleName string `json:"customRoleName"`
	Department     string `json:"department"`
}

// AddUser validates the form and stores an active admin. The stored role is
// the role's display name, or the custom name for the custom role.
func (d *Directory) AddUser(in NewUser) (User, error) {
	errs := rules.FieldErrors{}
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		errs["name"] = "Full name is required"
	}
	if email == "" {
		errs["email"] = "Email is required"
	} else if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		errs["email"] = fmt.Sprintf("Invalid email %q", in.Email)
	}
	role, ok := d.Role(in.RoleID)
	roleName := role.Name
	switch {
	case strings.TrimSpace(in.RoleID) == "":
		errs["role"] = "Administrative role is required"
	case !ok:
		errs["role"] = fmt.Sprintf("Unknown role %q", in.RoleID)
	case role.ID == CustomRoleID:
		roleName = strings.TrimSpace(in.CustomRoleName)
		if roleName == "" {
			errs["customRoleName"] = "Custom role name is required"
		}
	}
	if err := errs.Err(); err != nil {
		return User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	u := User{
		ID:         d.NewID(),
		Name:       name,
		Email:      email,
		Role:       roleName,
		Status:     StatusActive,
		Department: strings.TrimSpace(in.Department),
	}
	d.users = append(d.users, u)
	return u, nil
}

func (d *Directory) SetUserStatus(id string, status Status) (User, error) {
	if status != StatusActive && status != StatusInactive {
		return User{}, rules.FieldErrors{"status": fmt.Sprintf("Unknown status %q", status)}.Err()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			d.users[i].Status = status
			return d.users[i], nil
		}
	}
	return User{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
