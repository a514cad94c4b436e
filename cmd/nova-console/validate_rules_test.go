package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunValidateRules_EmbeddedSeed(t *testing.T) {
	var out bytes.Buffer
	if err := runValidateRules(&out, nil); err != nil {
		t.Fatalf("runValidateRules() error = %v", err)
	}
	if got := out.String(); !strings.HasPrefix(got, "validated 10 rules") {
		t.Fatalf("output = %q", got)
	}
}

func TestRunValidateRules_ReportsProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := `schemaVersion: "1.0"
rules:
  - id: r1
    name: ""
    status: paused
drafts:
  - name: Half done
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var out bytes.Buffer
	err := runValidateRules(&out, []string{path})

	var ee *exitError
	if !errors.As(err, &ee) || ee.code != exitCodeProblems || !ee.silent {
		t.Fatalf("runValidateRules() error = %v, want silent exit %d", err, exitCodeProblems)
	}
	if !errors.Is(err, errRuleProblems) {
		t.Fatalf("error %v does not wrap errRuleProblems", err)
	}
	got := out.String()
	if !strings.Contains(got, `rule[0] "":`) || !strings.Contains(got, `draft[0] "Half done":`) {
		t.Fatalf("output = %q", got)
	}
}

func TestRunValidateRules_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("rulez: []\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := runValidateRules(&bytes.Buffer{}, []string{path}); err == nil {
		t.Fatal("runValidateRules() error = nil, want decode error")
	}
}

func TestRunValidateRules_MissingFile(t *testing.T) {
	err := runValidateRules(&bytes.Buffer{}, []string{filepath.Join(t.TempDir(), "nope.yaml")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("runValidateRules() error = %v, want not exist", err)
	}
}
