package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "devtools")
	require.NoError(t, os.WriteFile(file, []byte(" ws://from-file:9222/devtools \n"), 0o600))
	t.Setenv("APPLYFILL_TEST_DEVTOOLS", "ws://from-env:9222")

	got, err := Load(Source{Name: "devtools url", Value: "ws://inline", Env: "APPLYFILL_TEST_DEVTOOLS", File: file})
	require.NoError(t, err)
	assert.Equal(t, "ws://from-file:9222/devtools", got)

	got, err = Load(Source{Value: "ws://inline", Env: "APPLYFILL_TEST_DEVTOOLS"})
	require.NoError(t, err)
	assert.Equal(t, "ws://from-env:9222", got)

	got, err = Load(Source{Value: "  ws://inline  ", Env: "APPLYFILL_TEST_UNSET"})
	require.NoError(t, err)
	assert.Equal(t, "ws://inline", got)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))

	_, err := Load(Source{Name: "devtools url", File: empty})
	assert.ErrorContains(t, err, "is empty")

	_, err = Load(Source{Name: "devtools url", File: filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(Source{Env: "APPLYFILL_TEST_UNSET"})
	assert.EqualError(t, err, "secret is not configured (set APPLYFILL_TEST_UNSET)")
}
