package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stateboard/stateboard-backend/internal/implication_discovery/domain"
)

// fileSpec is the on-disk shape of one implication definition file.
// Unknown fields are ignored; validation happens in toDomain.
type fileSpec struct {
	ClassName       string          `yaml:"className" json:"className"`
	Status          string          `yaml:"status" json:"status"`
	HasXStateConfig bool            `yaml:"hasXStateConfig" json:"hasXStateConfig"`
	Platform        string          `yaml:"platform" json:"platform"`
	Platforms       []string        `yaml:"platforms" json:"platforms"`
	TriggerButton   string          `yaml:"triggerButton" json:"triggerButton"`
	RequiredFields  []string        `yaml:"requiredFields" json:"requiredFields"`
	UICoverage      []string        `yaml:"uiCoverage" json:"uiCoverage"`
	Screen          string          `yaml:"screen" json:"screen"`
	Tags            []string        `yaml:"tags" json:"tags"`
	Initial         bool            `yaml:"initial" json:"initial"`
	Setup           []fileSetup     `yaml:"setup" json:"setup"`
	Context         []fileContext   `yaml:"context" json:"context"`
	Transitions     []fileTransition `yaml:"transitions" json:"transitions"`
}

type fileSetup struct {
	TestFile string `yaml:"testFile" json:"testFile"`
	Action   string `yaml:"action" json:"action"`
	Platform string `yaml:"platform" json:"platform"`
}

type fileContext struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Default  string `yaml:"default" json:"default"`
	Required bool   `yaml:"required" json:"required"`
}

type fileTransition struct {
	From          string   `yaml:"from" json:"from"`
	To            string   `yaml:"to" json:"to"`
	Event         string   `yaml:"event" json:"event"`
	Platforms     []string `yaml:"platforms" json:"platforms"`
	Requires      string   `yaml:"requires" json:"requires"`
	Conditions    []string `yaml:"conditions" json:"conditions"`
	ActionDetails []string `yaml:"actionDetails" json:"actionDetails"`
}

// ParseFile parses one implication definition file, dispatching on
// extension. Returns the parsed file, the transitions it declares, and
// boundary-validation warnings.
func ParseFile(path string) (*domain.ImplicationFile, []domain.Transition, []string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSONBytes(path, b)
	default:
		return ParseYAMLBytes(path, b)
	}
}

func ParseYAMLBytes(path string, b []byte) (*domain.ImplicationFile, []domain.Transition, []string, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, nil, nil, fmt.Errorf("parse yaml %s: %w", path, err)
	}
	return toDomain(path, &spec)
}

func ParseJSONBytes(path string, b []byte) (*domain.ImplicationFile, []domain.Transition, []string, error) {
	var spec fileSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, nil, nil, fmt.Errorf("parse json %s: %w", path, err)
	}
	return toDomain(path, &spec)
}

func toDomain(path string, spec *fileSpec) (*domain.ImplicationFile, []domain.Transition, []string, error) {
	var warnings []string

	if strings.TrimSpace(spec.ClassName) == "" {
		return nil, nil, []string{fmt.Sprintf("%s: missing className, file skipped", path)}, domain.ErrInvalidImplication
	}

	file := &domain.ImplicationFile{
		Path: path,
		Metadata: domain.ImplicationMetadata{
			ClassName:       spec.ClassName,
			Status:          spec.Status,
			HasXStateConfig: spec.HasXStateConfig,
			Platform:        spec.Platform,
			Platforms:       spec.Platforms,
			TriggerButton:   spec.TriggerButton,
			RequiredFields:  spec.RequiredFields,
			UICoverage:      spec.UICoverage,
			Screen:          spec.Screen,
			Tags:            spec.Tags,
			Initial:         spec.Initial,
		},
	}

	for _, s := range spec.Setup {
		file.Metadata.Setup = append(file.Metadata.Setup, domain.SetupEntry{
			TestFile: s.TestFile,
			Action:   s.Action,
			Platform: s.Platform,
		})
	}

	for _, cf := range spec.Context {
		if strings.TrimSpace(cf.Name) == "" {
			warnings = append(warnings, fmt.Sprintf("%s: context field with empty name dropped", path))
			continue
		}
		file.Metadata.Context = append(file.Metadata.Context, domain.ContextField{
			Name:     cf.Name,
			Type:     cf.Type,
			Default:  cf.Default,
			Required: cf.Required,
		})
	}

	var transitions []domain.Transition
	for _, t := range spec.Transitions {
		// Transitions declared inside a state file default their
		// source to that state.
		if t.From == "" {
			t.From = spec.ClassName
		}
		if t.To == "" || t.Event == "" {
			warnings = append(warnings, fmt.Sprintf("%s: transition missing to/event dropped", path))
			continue
		}
		transitions = append(transitions, domain.Transition{
			From:          t.From,
			To:            t.To,
			Event:         t.Event,
			Platforms:     t.Platforms,
			Requires:      t.Requires,
			Conditions:    t.Conditions,
			ActionDetails: t.ActionDetails,
			SourcePath:    path,
		})
	}

	return file, transitions, warnings, nil
}
