package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Chaosflow/internal/adapters"
	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/plugin"
)

// Format — формат файла сценария.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File — содержимое файла сценария.
type File struct {
	Namespace        string         `yaml:"namespace" json:"namespace"`
	ID               string         `yaml:"id" json:"id"`
	Title            string         `yaml:"title" json:"title"`
	Version          int            `yaml:"version" json:"version"`
	Tags             []string       `yaml:"tags" json:"tags"`
	PreferredActions []string       `yaml:"preferred_actions" json:"preferred_actions"`
	Vars             map[string]any `yaml:"vars" json:"vars"`
	Stages           []StageSpec    `yaml:"stages" json:"stages"`
}

// StageSpec — описание stage в файле.
type StageSpec struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Uses        string `yaml:"uses" json:"uses"`
	Input       any    `yaml:"input" json:"input"`
	Example     any    `yaml:"example" json:"example"`
}

// FormatOf определяет формат по расширению файла.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile читает и разбирает файл сценария.
func LoadFile(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	return Parse(data, format)
}

// Parse разбирает содержимое файла сценария.
func Parse(data []byte, format Format) (*File, error) {
	var f File

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return &f, nil
}

// Validate проверяет сценарий:
//   - наличие id и stages
//   - непустые и уникальные имена stages
//   - известность kind в uses (если catalog не nil)
func (f *File) Validate(catalog *adapters.Catalog) error {
	if strings.TrimSpace(f.ID) == "" {
		return newValidationError("", "id", "scenario has empty id", ErrEmptyID)
	}
	if len(f.Stages) == 0 {
		return newValidationError("", "stages", "scenario has no stages", ErrEmptyStages)
	}

	names := make(map[string]bool, len(f.Stages))
	for i, st := range f.Stages {
		if st.Name == "" {
			return newValidationError("", "name",
				fmt.Sprintf("stage %d has empty name", i), ErrEmptyStageName)
		}
		if names[st.Name] {
			return newValidationError(st.Name, "name",
				fmt.Sprintf("duplicate stage name: %s", st.Name), ErrDuplicateStageName)
		}
		names[st.Name] = true

		if st.Uses != "" && catalog != nil && !catalog.Has(st.Uses) {
			return newValidationError(st.Name, "uses",
				fmt.Sprintf("unknown adapter kind: %s", st.Uses), ErrUnknownKind)
		}
	}

	return nil
}

// Scenario строит неизменяемый domain.Scenario.
func (f *File) Scenario() *domain.Scenario {
	stages := make([]domain.StageBoundary, len(f.Stages))
	for i, st := range f.Stages {
		stages[i] = domain.StageBoundary{
			Name:        st.Name,
			Description: st.Description,
			Input:       st.Input,
			Example:     st.Example,
		}
	}

	return domain.NewScenario(
		domain.NewNamespaceID(f.Namespace),
		domain.NewScenarioID(f.ID),
		f.Title,
		f.Version,
		stages,
	)
}

// Registry строит реестр: каждому stage с uses — адаптер его kind.
func (f *File) Registry(catalog *adapters.Catalog) (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	for _, st := range f.Stages {
		if st.Uses == "" {
			continue
		}
		adapter, err := catalog.Get(st.Uses)
		if err != nil {
			return nil, newValidationError(st.Name, "uses", err.Error(), ErrUnknownKind)
		}
		reg.Register(st.Name, adapter)
	}
	return reg, nil
}

// Loaded — сценарий, готовый к запуску.
type Loaded struct {
	File     *File
	Scenario *domain.Scenario
	Registry *plugin.Registry
}

// Load читает файл, валидирует его и строит сценарий с реестром.
func Load(path string, catalog *adapters.Catalog) (*Loaded, error) {
	return LoadWith(path, catalog, nil)
}

// LoadWith — как Load, но vars файла дополняются overrides
// перед рендерингом шаблонов в input/example.
func LoadWith(path string, catalog *adapters.Catalog, overrides map[string]any) (*Loaded, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(catalog); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	if err := f.Render(overrides); err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}

	reg, err := f.Registry(catalog)
	if err != nil {
		return nil, err
	}

	return &Loaded{
		File:     f,
		Scenario: f.Scenario(),
		Registry: reg,
	}, nil
}
