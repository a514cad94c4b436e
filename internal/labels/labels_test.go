package labels

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/novadlp/nova-console/internal/rules"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New([]Label{
		{ID: "public", Name: "Public", SensitivityLevel: 1, Color: "#22C55E"},
		{
			ID: "internal", Name: "Internal", SensitivityLevel: 2, Color: "#3B82F6",
			Sublabels: []Label{{ID: "internal-hr", Name: "Internal - HR", SensitivityLevel: 2}},
		},
		{
			ID: "confidential", Name: "Confidential", SensitivityLevel: 3, Color: "#F97316",
			Protection: Protection{VisualMarking: "Company Confidential Banner", Encryption: "AES-256"},
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	n := 0
	s.NewID = func() string { n++; return fmt.Sprintf("label-%d", n) }
	s.Now = func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestSensitivityRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   int
		wantErr bool
	}{
		{level: 0, wantErr: true},
		{level: 1},
		{level: 10},
		{level: 11, wantErr: true},
		{level: -3, wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(fmt.Sprint(tc.level), func(t *testing.T) {
			t.Parallel()
			s := newTestStore(t)
			_, err := s.SetSensitivity("public", tc.level)
			if tc.wantErr != (err != nil) {
				t.Fatalf("SetSensitivity(%d) error = %v, wantErr %v", tc.level, err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, ErrSensitivityRange) {
				t.Fatalf("error = %v, want ErrSensitivityRange", err)
			}
			_, err = s.Create(Label{Name: "New", SensitivityLevel: tc.level})
			if tc.wantErr != (err != nil) {
				t.Fatalf("Create(level %d) error = %v, wantErr %v", tc.level, err, tc.wantErr)
			}
		})
	}
}

func TestAddSublabel_InheritsParentDefaults(t *testing.T) {
	s := newTestStore(t)
	sub, err := s.AddSublabel("confidential", Label{Name: "Confidential - Finance"})
	if err != nil {
		t.Fatalf("AddSublabel() error = %v", err)
	}
	if sub.SensitivityLevel != 3 || sub.Color != "#F97316" {
		t.Fatalf("sublabel = %+v, want parent sensitivity and color", sub)
	}
	parent, err := s.Get("confidential")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(parent.Sublabels) != 1 || parent.Sublabels[0].ID != sub.ID {
		t.Fatalf("parent sublabels = %+v", parent.Sublabels)
	}
}

func TestAddSublabel_RejectsNesting(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddSublabel("internal-hr", Label{Name: "Deep"}); !errors.Is(err, ErrNestedSublabel) {
		t.Fatalf("AddSublabel(sublabel) error = %v, want ErrNestedSublabel", err)
	}
	nested := Label{Name: "Carrier", Sublabels: []Label{{Name: "Inner", SensitivityLevel: 1}}}
	if _, err := s.AddSublabel("public", nested); !errors.Is(err, ErrNestedSublabel) {
		t.Fatalf("AddSublabel(with children) error = %v, want ErrNestedSublabel", err)
	}
	if _, err := s.AddSublabel("missing", Label{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddSublabel(missing) error = %v, want ErrNotFound", err)
	}
}

func TestNew_RejectsNestedSeed(t *testing.T) {
	_, err := New([]Label{{
		ID: "a", Name: "A", SensitivityLevel: 1,
		Sublabels: []Label{{ID: "b", Name: "B", SensitivityLevel: 1, Sublabels: []Label{{ID: "c", Name: "C", SensitivityLevel: 1}}}},
	}})
	if !errors.Is(err, ErrNestedSublabel) {
		t.Fatalf("New() error = %v, want ErrNestedSublabel", err)
	}
}

func TestInheritance(t *testing.T) {
	s := newTestStore(t)

	in, ok := s.Inheritance("confidential")
	if !ok {
		t.Fatal("Inheritance(confidential) not found")
	}
	want := rules.Inheritance{VisualMarking: "Company Confidential Banner", Encryption: "AES-256"}
	if in != want {
		t.Fatalf("Inheritance() = %+v, want %+v", in, want)
	}
	if in, ok := s.Inheritance("Internal - HR"); !ok || !in.Empty() {
		t.Fatalf("Inheritance(sublabel) = %+v, %v", in, ok)
	}
	if _, ok := s.Inheritance("Top Secret"); ok {
		t.Fatal("Inheritance(unknown) ok, want false")
	}
}

func TestNormalizeEmailDomains(t *testing.T) {
	got, err := NormalizeEmailDomains([]string{"Contoso.com", "legal@mail.contoso.com", " partner.co.uk ", "", "x.partner.co.uk"})
	if err != nil {
		t.Fatalf("NormalizeEmailDomains() error = %v", err)
	}
	want := []string{"contoso.com", "partner.co.uk"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeEmailDomains() = %v, want %v", got, want)
	}
	if _, err := NormalizeEmailDomains([]string{"com"}); !errors.Is(err, ErrInvalidEmailDomain) {
		t.Fatalf("NormalizeEmailDomains(com) error = %v, want ErrInvalidEmailDomain", err)
	}
}

func TestSetProtection_NormalizesDomains(t *testing.T) {
	s := newTestStore(t)
	l, err := s.SetProtection("internal", Protection{Watermark: "Dynamic User Info", EmailDomains: []string{"hr.contoso.com"}})
	if err != nil {
		t.Fatalf("SetProtection() error = %v", err)
	}
	if !reflect.DeepEqual(l.Protection.EmailDomains, []string{"contoso.com"}) {
		t.Fatalf("EmailDomains = %v", l.Protection.EmailDomains)
	}
	if len(l.Sublabels) != 1 {
		t.Fatalf("sublabels dropped: %+v", l.Sublabels)
	}
}

func TestUpdateKeepsSublabels(t *testing.T) {
	s := newTestStore(t)
	l, err := s.Update(Label{ID: "internal", Name: "Internal Use", SensitivityLevel: 4})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if l.Name != "Internal Use" || l.Color != defaultColor || len(l.Sublabels) != 1 {
		t.Fatalf("updated = %+v", l)
	}
	if _, err := s.Update(Label{ID: "internal", Name: " "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("Update(blank) error = %v, want ErrNameRequired", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("internal-hr"); err != nil {
		t.Fatalf("Delete(sublabel) error = %v", err)
	}
	if _, ok := s.FindByName("Internal - HR"); ok {
		t.Fatal("sublabel still present")
	}
	if err := s.Delete("public"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := len(s.List()); got != 2 {
		t.Fatalf("len(List()) = %d, want 2", got)
	}
	if err := s.Delete("public"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete(again) error = %v, want ErrNotFound", err)
	}
}
