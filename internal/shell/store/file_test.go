package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlRoster = `
- number: 1
  name: Bulbasaur
  type_one: Grass
  type_two: Poison
  total: 318
  generation: 1
- number: 4
  name: Charmander
  type_one: Fire
  type_two: ""
  legendary: false
`

const jsonRoster = `{"pokemon": [
  {"number": 25, "name": "Pikachu", "type_one": "Electric", "type_two": null, "image_url": "http://example.com/pika.png"}
]}`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileProvider_ListPokemon_YAMLList(t *testing.T) {
	p := NewFileProvider(writeRoster(t, yamlRoster))

	records, err := p.ListPokemon(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Bulbasaur", records[0].Name)
	require.NotNil(t, records[0].TypeTwo)
	assert.Equal(t, "Poison", *records[0].TypeTwo)
	assert.Nil(t, records[1].TypeTwo, "empty type_two is treated as absent")
}

func TestFileProvider_ListPokemon_JSONMapping(t *testing.T) {
	p := NewFileProvider(writeRoster(t, jsonRoster))

	records, err := p.ListPokemon(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 25, records[0].Number)
	require.NotNil(t, records[0].ImageURL)
	assert.Equal(t, "http://example.com/pika.png", *records[0].ImageURL)
}

func TestFileProvider_ListPokemon_Missing(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := p.ListPokemon(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileProvider_LastModified(t *testing.T) {
	path := writeRoster(t, yamlRoster)
	p := NewFileProvider(path)

	mtime, err := p.LastModified(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, mtime.Equal(info.ModTime()))
}

func TestDecodeRoster_Empty(t *testing.T) {
	records, err := DecodeRoster([]byte("  \n"), "empty")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeRoster_Scalar(t *testing.T) {
	_, err := DecodeRoster([]byte("just a string"), "scalar")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestDecodeRoster_Malformed(t *testing.T) {
	_, err := DecodeRoster([]byte("- name: [unterminated"), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidData)
}
