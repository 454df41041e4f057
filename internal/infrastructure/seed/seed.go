// Package seed reads checklist catalogs from yaml or toml files.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"releasegate/internal/domain/readiness"
)

const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

type Item struct {
	Slug              string         `yaml:"slug" toml:"slug"`
	Category          string         `yaml:"category" toml:"category"`
	Title             string         `yaml:"title" toml:"title"`
	Description       string         `yaml:"description" toml:"description"`
	AutoEvaluated     bool           `yaml:"auto_evaluated" toml:"auto_evaluated"`
	Weight            any            `yaml:"weight" toml:"weight"`
	DefaultOwnerEmail string         `yaml:"default_owner_email" toml:"default_owner_email"`
	SuccessCriteria   map[string]any `yaml:"success_criteria" toml:"success_criteria"`
}

// Criteria converts the free-form criteria table. Keys use the same camelCase
// names as the JSON API; anything unusable degrades to "not configured".
func (i Item) Criteria() readiness.SuccessCriteria {
	if len(i.SuccessCriteria) == 0 {
		return readiness.SuccessCriteria{}
	}
	raw, err := json.Marshal(i.SuccessCriteria)
	if err != nil {
		return readiness.SuccessCriteria{}
	}
	return readiness.ParseSuccessCriteria(string(raw))
}

type File struct {
	Version int    `yaml:"version" toml:"version"`
	Items   []Item `yaml:"items" toml:"items"`
}

// Load reads path, picking the decoder from its extension.
func Load(path string) (File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return File{}, errors.New("seed file is required")
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return File{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(raw, format)
}

func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported seed file extension %q: use .yaml, .yml or .toml", filepath.Ext(path))
	}
}

func Parse(raw []byte, format string) (File, error) {
	var file File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return File{}, fmt.Errorf("decode yaml seed: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(raw, &file); err != nil {
			return File{}, fmt.Errorf("decode toml seed: %w", err)
		}
	default:
		return File{}, fmt.Errorf("unsupported seed format %q", format)
	}
	if err := validate(file); err != nil {
		return File{}, err
	}
	return file, nil
}

func validate(file File) error {
	if file.Version != 0 && file.Version != 1 {
		return fmt.Errorf("unsupported seed version %d: expected version = 1", file.Version)
	}
	seen := make(map[string]int, len(file.Items))
	for i, item := range file.Items {
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("items[%d].title is required", i)
		}
		key := readiness.NormalizeSlug(item.Slug)
		if key == "" {
			key = readiness.NormalizeSlug(item.Title)
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("items[%d] duplicates slug %q from items[%d]", i, key, prev)
		}
		seen[key] = i
	}
	return nil
}
