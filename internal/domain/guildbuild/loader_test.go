package guildbuild

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, path, name string, modTime time.Time) {
	content := []byte(`{"version": "1", "name": "` + name + `", "roles": [{"name": "AdminOps"}],
		"categories": [{"name": "lounge", "channels": [{"name": "general", "kind": "text"}]}]}`)
	require.NoError(t, os.WriteFile(path, content, 0600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func Test_TemplateLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")
	now := time.Now()
	writeTemplate(t, path, "first", now)

	loader := NewTemplateLoader(path)
	template, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, "first", template.Name)

	cached, err := loader.Load()
	require.NoError(t, err)
	require.Same(t, template, cached)

	writeTemplate(t, path, "second", now.Add(time.Minute))
	template, err = loader.Load()
	require.NoError(t, err)
	require.Equal(t, "second", template.Name)
}

func Test_TemplateLoader_Load_Errors(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.json")
	_, err := NewTemplateLoader(missing).Load()
	require.ErrorIs(t, err, ErrTemplateNotFound)
	require.EqualError(t, err, "template file not found at path "+missing)

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "1", "name": ""}`), 0600))

	_, err = NewTemplateLoader(path).Load()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "name", verrs[0].Path)
}
