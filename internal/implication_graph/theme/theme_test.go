package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFallbacks(t *testing.T) {
	th := Default()

	assert.Equal(t, th.Status["default"], th.StyleFor("no-such-status"))
	assert.NotEqual(t, th.StyleFor("failed"), th.StyleFor("completed"))
	assert.Equal(t, th.PlatformColors["default"], th.PlatformColor("symbian"))
	assert.NotEmpty(t, th.PlatformColor("web"))
}

func TestGroupColorCycles(t *testing.T) {
	th := Default()
	n := len(th.GroupPalette)
	require.NotZero(t, n)

	assert.Equal(t, th.GroupColor(0), th.GroupColor(n))
	assert.Equal(t, th.GroupColor(1), th.GroupColor(n+1))

	empty := &Theme{}
	assert.NotEmpty(t, empty.GroupColor(3), "an empty palette still yields a usable color")
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns the built-in theme", func(t *testing.T) {
		th, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), th)
	})

	t.Run("file overrides merge over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "theme.toml")
		content := `
name = "midnight"
groupPalette = ["#111111", "#222222"]

[status.created]
color = "#123456"
icon = "star"

[platforms]
ios = "#abcdef"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		th, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "midnight", th.Name)
		assert.Equal(t, StatusStyle{Color: "#123456", Icon: "star"}, th.StyleFor("created"))
		assert.Equal(t, "#abcdef", th.PlatformColor("ios"))
		assert.Equal(t, []string{"#111111", "#222222"}, th.GroupPalette)

		def := Default()
		assert.Equal(t, def.StyleFor("pending"), th.StyleFor("pending"), "untouched statuses keep their defaults")
		assert.Equal(t, def.PlatformColor("web"), th.PlatformColor("web"))
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("malformed toml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("name = [unterminated"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
