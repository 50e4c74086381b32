package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"deploy-summary/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMetadata(t *testing.T, outDir, name, content string) {
	t.Helper()
	path := MetadataPath(outDir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMetadataPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "Token.sol", "Token.metadata.json"), MetadataPath("out", "Token"))
}

func TestLoaderPassesABIThrough(t *testing.T) {
	out := t.TempDir()
	writeMetadata(t, out, "Token", `{
  "compiler": {"version": "0.8.13"},
  "language": "Solidity",
  "output": {
    "abi": [{"type":"function","name":"transfer"}],
    "devdoc": {"kind": "dev"}
  }
}`)

	abi, err := NewLoader(out).ABI("Token")
	require.NoError(t, err)
	assert.Equal(t, `[{"type":"function","name":"transfer"}]`, string(abi))
}

func TestLoaderErrors(t *testing.T) {
	out := t.TempDir()
	loader := NewLoader(out)

	_, err := loader.ABI("Missing")
	require.ErrorIs(t, err, errors.ErrNotFound)
	e, ok := errors.From(err)
	require.True(t, ok)
	assert.Equal(t, "Missing", e.Metadata()["contract"])

	writeMetadata(t, out, "Broken", `{"output": `)
	_, err = loader.ABI("Broken")
	assert.ErrorIs(t, err, errors.ErrMalformedInput)

	writeMetadata(t, out, "NoOutput", `{"compiler": {}}`)
	_, err = loader.ABI("NoOutput")
	assert.ErrorIs(t, err, errors.ErrMissingField)

	writeMetadata(t, out, "NoABI", `{"output": {"devdoc": {}}}`)
	_, err = loader.ABI("NoABI")
	assert.ErrorIs(t, err, errors.ErrMissingField)
}
