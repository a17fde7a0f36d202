package config

import (
	"context"
	"embed"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/view"
)

//go:embed testdata/*.yaml
var testdataFS embed.FS

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseBytes_ValidSimple(t *testing.T) {
	t.Parallel()
	c, err := ParseBytes([]byte("root: templates\n"))
	require.NoError(t, err)
	assert.Equal(t, "templates", c.Root)
	assert.False(t, c.Debug)
	assert.Zero(t, c.CacheTTL)
	assert.Empty(t, c.Globals)
}

func TestParseFS_Full(t *testing.T) {
	t.Parallel()
	c, err := ParseFS(testdataFS, "testdata/full.yaml")
	require.NoError(t, err)
	assert.Equal(t, "../testdata/templates", c.Root)
	assert.True(t, c.Debug)
	assert.Equal(t, "tmpl", c.Suffix)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
	assert.Equal(t, 8, c.MaxIncludeDepth)
	assert.Equal(t, "Hello world", c.Globals["hello"])
	assert.Len(t, c.Options(), 4)
}

func TestParseBytes_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "missing root", file: "testdata/missing_root.yaml"},
		{name: "negative ttl", file: "testdata/negative_ttl.yaml"},
		{name: "bad yaml", data: "root: [unclosed"},
		{name: "bad duration", data: "root: x\ncache_ttl: soon\n"},
		{name: "negative depth", data: "root: x\nmax_include_depth: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data := []byte(tt.data)
			if tt.file != "" {
				var err error
				data, err = testdataFS.ReadFile(tt.file)
				require.NoError(t, err)
			}
			_, err := ParseBytes(data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()
	c, err := ParseFile("testdata/full.yaml")
	require.NoError(t, err)
	assert.Equal(t, "../testdata/templates", c.Root)

	_, err = ParseFile("testdata/nope.yaml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_NewEngine(t *testing.T) {
	t.Parallel()
	c, err := ParseFile("testdata/full.yaml")
	require.NoError(t, err)

	e, err := c.NewEngine()
	require.NoError(t, err)
	assert.True(t, e.Debug())

	out, err := e.Render(context.Background(), "template_for_global_data", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)

	out, err = e.Render(context.Background(), "template_with_include", nil)
	require.NoError(t, err)
	assert.Equal(t, "This template made by me - from config", out)
}

func TestConfig_NewEngineBadRoot(t *testing.T) {
	t.Parallel()
	c := &Config{Root: "testdata/does-not-exist"}
	_, err := c.NewEngine()
	require.ErrorIs(t, err, view.ErrConfiguration)
}
