package store

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/artpar/pokedex/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// FileProvider
// =============================================================================

// FileProvider reads the roster from a YAML or JSON file. The file holds
// either a top-level list of records or a mapping with a "pokemon" list.
// Every call re-reads the file; caching is the catalog's job.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the roster file at path.
// The file is not opened until the first call.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// rosterDocument is the mapping form of a roster file.
type rosterDocument struct {
	Pokemon []domain.Pokemon `yaml:"pokemon"`
}

// ListPokemon decodes the roster file in file order.
func (f *FileProvider) ListPokemon(ctx context.Context) ([]domain.Pokemon, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStoreError("ListPokemon", "roster", f.path, "roster file not found", ErrNotFound)
		}
		return nil, NewStoreError("ListPokemon", "roster", f.path, err.Error(), err)
	}
	return DecodeRoster(data, f.path)
}

// LastModified returns the roster file's modification time.
func (f *FileProvider) LastModified(ctx context.Context) (time.Time, error) {
	return fileModTime(f.path)
}

// DecodeRoster parses roster file contents. source is only used in errors.
func DecodeRoster(data []byte, source string) ([]domain.Pokemon, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []domain.Pokemon{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, NewStoreError("DecodeRoster", "roster", source, err.Error(), ErrInvalidData)
	}

	var records []domain.Pokemon
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, NewStoreError("DecodeRoster", "roster", source, err.Error(), ErrInvalidData)
		}
	case yaml.MappingNode:
		var doc rosterDocument
		if err := root.Decode(&doc); err != nil {
			return nil, NewStoreError("DecodeRoster", "roster", source, err.Error(), ErrInvalidData)
		}
		records = doc.Pokemon
	default:
		return nil, NewStoreError("DecodeRoster", "roster", source, "expected a list of records", ErrInvalidData)
	}

	if records == nil {
		records = []domain.Pokemon{}
	}
	for i := range records {
		records[i].TypeTwo = emptyToNil(records[i].TypeTwo)
		records[i].ImageURL = emptyToNil(records[i].ImageURL)
	}
	return records, nil
}
