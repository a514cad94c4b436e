// Package seed carries the sample data the console starts with when
// SEED_DATA is enabled.
package seed

import (
	"bytes"
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/novadlp/nova-console/internal/admin"
	"github.com/novadlp/nova-console/internal/integrations"
	"github.com/novadlp/nova-console/internal/labels"
	"github.com/novadlp/nova-console/internal/rules"
	"github.com/novadlp/nova-console/internal/tags"
)

//go:embed data/*.yaml
var files embed.FS

type Data struct {
	Rules           []rules.Rule
	Labels          []labels.Label
	Tags            []tags.Tag
	Integrations    []integrations.Integration
	SharePointSites []integrations.Site
	Roles           []admin.Role
	Admins          []admin.User
}

type labelFile struct {
	Labels []labels.Label `yaml:"labels"`
}

type tagFile struct {
	Tags []tags.Tag `yaml:"tags"`
}

type integrationFile struct {
	Integrations    []integrations.Integration `yaml:"integrations"`
	SharePointSites []integrations.Site        `yaml:"sharepointSites"`
}

type adminFile struct {
	Roles []admin.Role `yaml:"roles"`
	Users []admin.User `yaml:"users"`
}

// RulesYAML returns the embedded sample rule file.
func RulesYAML() ([]byte, error) {
	return files.ReadFile("data/rules.yaml")
}

// Load decodes the embedded seed files and checks every rule.
func Load() (Data, error) {
	var d Data

	b, err := RulesYAML()
	if err != nil {
		return Data{}, err
	}
	rf, err := rules.ParseRuleFile(b)
	if err != nil {
		return Data{}, fmt.Errorf("seed rules: %w", err)
	}
	if problems := rf.Check(); len(problems) > 0 {
		return Data{}, fmt.Errorf("seed rules: %s", problems[0])
	}
	d.Rules = rf.Rules

	var lf labelFile
	if err := decode("data/labels.yaml", &lf); err != nil {
		return Data{}, err
	}
	d.Labels = lf.Labels

	var tf tagFile
	if err := decode("data/tags.yaml", &tf); err != nil {
		return Data{}, err
	}
	d.Tags = tf.Tags

	var inf integrationFile
	if err := decode("data/integrations.yaml", &inf); err != nil {
		return Data{}, err
	}
	d.Integrations = inf.Integrations
	d.SharePointSites = inf.SharePointSites

	var af adminFile
	if err := decode("data/admin.yaml", &af); err != nil {
		return Data{}, err
	}
	d.Roles = af.Roles
	d.Admins = af.Users

	return d, nil
}

// Empty returns the data a console without samples starts with. The role
// catalog and SharePoint sites are reference data and are always present.
func Empty() (Data, error) {
	full, err := Load()
	if err != nil {
		return Data{}, err
	}
	return Data{Roles: full.Roles, SharePointSites: full.SharePointSites}, nil
}

func decode(name string, dst any) error {
	b, err := files.ReadFile(name)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	return nil
}
