package document_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/styleforge/document"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDir_DefaultPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "note.xml", "<note/>")
	writeFile(t, dir, "main.xsl", "<xsl:stylesheet/>")
	writeFile(t, dir, "schema.xsd", "<xs:schema/>")
	writeFile(t, dir, "readme.txt", "ignored")
	writeFile(t, dir, "nested/extra.xml", "<extra/>")

	store := document.NewStore()
	docs, err := document.LoadDir(store, dir, nil, nil)
	require.NoError(t, err)

	assert.Len(t, docs, 4)
	assert.Equal(t, 4, store.Len())

	sheet, err := store.GetByName("main.xsl")
	require.NoError(t, err)
	assert.Equal(t, document.KindStylesheet, sheet.Kind)

	xsd, err := store.GetByName("schema.xsd")
	require.NoError(t, err)
	assert.Equal(t, document.KindSchema, xsd.Kind)
}

func TestLoadDir_CustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "note.xml", "<note/>")
	writeFile(t, dir, "main.xsl", "<xsl:stylesheet/>")

	store := document.NewStore()
	docs, err := document.LoadDir(store, dir, []string{"**/*.xsl"}, nil)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "main.xsl", docs[0].Name)
}

func TestLoadDir_MissingDir(t *testing.T) {
	store := document.NewStore()
	_, err := document.LoadDir(store, filepath.Join(t.TempDir(), "nope"), nil, nil)
	assert.Error(t, err)
}
