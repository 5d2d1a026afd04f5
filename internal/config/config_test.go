package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default("/tmp/project")
	assert.NoError(t, Validate(cfg))
}

func TestLoadWithoutKDLUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Index.MaxFileCount)
}

func TestLoadParsesKDLFile(t *testing.T) {
	dir := t.TempDir()
	kdlContent := `
project {
  name "demo"
}
index {
  max_file_count 500
  respect_gitignore false
}
performance {
  parallel_threshold 10
}
cache {
  capacity 256
  ttl_seconds 60
}
feature-flags {
  dead_code_entry_points "any-public"
}
exclude {
  "vendor"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lci.kdl"), []byte(kdlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, 500, cfg.Index.MaxFileCount)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.Equal(t, 10, cfg.Performance.ParallelThreshold)
	assert.Equal(t, 256, cfg.Cache.Capacity)
	assert.Equal(t, 60, cfg.Cache.TTLSeconds)
	assert.Equal(t, "any-public", cfg.FeatureFlags.DeadCodeEntryPoints)
	assert.Contains(t, cfg.Exclude, "vendor")
}

func TestEnvOverridesApplyAfterKDL(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LSIF_CACHE_CAPACITY", "999")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 999, cfg.Cache.Capacity)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default("/tmp")
	cfg.Index.MaxFileSize = 0
	assert.Error(t, Validate(cfg))

	cfg = Default("/tmp")
	cfg.FeatureFlags.DeadCodeEntryPoints = "bogus"
	assert.Error(t, Validate(cfg))
}

func TestLanguageTimeoutEnv(t *testing.T) {
	assert.Equal(t, "LSIF_LSP_TIMEOUT_MS_GO", LanguageTimeoutEnv("go"))
	assert.Equal(t, "LSIF_LSP_TIMEOUT_MS_RUST", LanguageTimeoutEnv("rust"))
}

func TestExcludeMatcherDirectoryNames(t *testing.T) {
	m := NewExcludeMatcher(nil)
	assert.True(t, m.MatchDir("project/.git"))
	assert.True(t, m.MatchDir("node_modules"))
	assert.False(t, m.MatchDir("src"))
}

func TestExcludeMatcherGlobs(t *testing.T) {
	m := NewExcludeMatcher([]string{"**/*.generated.go", "vendor/**"})
	assert.True(t, m.MatchFile("pkg/foo.generated.go"))
	assert.True(t, m.MatchFile("vendor/lib/x.go"))
	assert.False(t, m.MatchFile("pkg/foo.go"))
}
