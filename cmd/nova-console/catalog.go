package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/novadlp/nova-console/internal/catalog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	catalogFile   string
	catalogFormat string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the option catalog the rule wizard offers.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalog(cmd.OutOrStdout(), catalogFile, catalogFormat)
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFile, "file", "", "catalog YAML file to check and print instead of the built-in one")
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "yaml", "output format: yaml or json")
}

func runCatalog(out io.Writer, path, format string) error {
	c := catalog.Default()
	if path != "" {
		var err error
		if c, err = catalog.Load(path); err != nil {
			return err
		}
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	default:
		return fmt.Errorf("unknown format %q: want yaml or json", format)
	}
}
