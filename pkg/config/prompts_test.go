package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinipath/dxscribe/pkg/pipeline"
)

func TestDefaultCatalogCoversBuiltinPipelines(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Validate())

	for _, name := range pipeline.VersionNames() {
		version, err := pipeline.Lookup(name)
		require.NoError(t, err)
		for _, stage := range version.Stages {
			_, ok := catalog[stage.PromptID]
			require.True(t, ok, "stage %s/%s prompt %s missing from default catalog", name, stage.Name, stage.PromptID)
		}
	}
}

func TestLoadCatalogWithoutFile(t *testing.T) {
	catalog, err := LoadCatalog(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultCatalog(), catalog)
}

func TestLoadCatalogOverlay(t *testing.T) {
	dir := t.TempDir()
	content := `
prompts:
  dx.extract.v1:
    adapter: openai
    model: gpt-5.2-thinking
    template: "Notes: {{.clinical_notes}}"
  ops.extra:
    adapter: mock
    template: "{{.focus_query}}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts.yaml"), []byte(content), 0600))

	catalog, err := LoadCatalog(dir)
	require.NoError(t, err)
	require.Equal(t, "openai", catalog[pipeline.PromptExtractV1].Adapter)
	require.Equal(t, "gpt-5.2-thinking", catalog[pipeline.PromptExtractV1].Model)
	require.Contains(t, catalog, "ops.extra")
	// untouched entries keep their defaults
	require.Equal(t, DefaultCatalog()[pipeline.PromptSummaryV2], catalog[pipeline.PromptSummaryV2])
}

func TestLoadCatalogRejectsBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	content := `
prompts:
  dx.extract.v1:
    adapter: mock
    template: "{{.unclosed"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompts.yaml"), []byte(content), 0600))

	_, err := LoadCatalog(dir)
	require.Error(t, err)
}
