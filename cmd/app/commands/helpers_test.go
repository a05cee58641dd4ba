package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	require.NoError(t, validateFormat("text"))
	require.NoError(t, validateFormat("json"))

	err := validateFormat("yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid format: yaml")
}

func TestReadInput(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "event.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"id":"evt_1"}`), 0o600))

		data, err := readInput(path, nil)

		require.NoError(t, err)
		require.Equal(t, `{"id":"evt_1"}`, string(data))
	})

	t.Run("stdin", func(t *testing.T) {
		data, err := readInput("-", strings.NewReader("from stdin"))

		require.NoError(t, err)
		require.Equal(t, "from stdin", string(data))
	})

	t.Run("missing-path", func(t *testing.T) {
		_, err := readInput("", nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "--file is required")
	})

	t.Run("missing-file", func(t *testing.T) {
		_, err := readInput(filepath.Join(t.TempDir(), "nope.json"), nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read file")
	})
}
