package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/novadlp/nova-console/internal/rules"
	"github.com/novadlp/nova-console/internal/seed"
	"github.com/spf13/cobra"
)

var errRuleProblems = errors.New("rule files have problems")

var validateRulesCmd = &cobra.Command{
	Use:         "validate-rules [file...]",
	Short:       "Validate rule files, or the embedded sample rules when no file is given.",
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidateRules(cmd.OutOrStdout(), args)
	},
}

type ruleSource struct {
	name string
	read func() ([]byte, error)
}

func ruleSources(paths []string) []ruleSource {
	if len(paths) == 0 {
		return []ruleSource{{name: "embedded seed", read: seed.RulesYAML}}
	}
	out := make([]ruleSource, 0, len(paths))
	for _, p := range paths {
		out = append(out, ruleSource{name: p, read: func() ([]byte, error) { return os.ReadFile(p) }})
	}
	return out
}

func runValidateRules(out io.Writer, paths []string) error {
	var ruleCount, draftCount, problemCount int
	for _, src := range ruleSources(paths) {
		b, err := src.read()
		if err != nil {
			return fmt.Errorf("read %s: %w", src.name, err)
		}
		f, err := rules.ParseRuleFile(b)
		if err != nil {
			return fmt.Errorf("%s: %w", src.name, err)
		}
		ruleCount += len(f.Rules)
		draftCount += len(f.Drafts)
		for _, p := range f.Check() {
			problemCount++
			fmt.Fprintf(out, "%s: %s\n", src.name, p)
		}
	}

	slog.Info("validated rule files", "rules", ruleCount, "drafts", draftCount, "problems", problemCount)
	if problemCount > 0 {
		return silentExit(exitCodeProblems, fmt.Errorf("%w: %d", errRuleProblems, problemCount))
	}
	fmt.Fprintf(out, "validated %d rules (%d drafts)\n", ruleCount, draftCount)
	return nil
}
