package web3

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadChainDefinitionsMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.yaml")
	content := "chains:\n  \"80001\":\n    name: mumbai\n    description: polygon testnet\n  \"137\":\n    name: matic\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	defs, err := LoadChainDefinitions(path)
	require.NoError(t, err)

	assert.Equal(t, "mumbai", defs.Name(80001))
	assert.Equal(t, "matic", defs.Name(137))
	assert.Equal(t, "anvil", defs.Name(31337))
	assert.Equal(t, "chain-42", defs.Name(42))
}

func TestLoadChainDefinitionsRejectsNonNumericID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chains:\n  polygon:\n    name: polygon\n"), 0o644))

	_, err := LoadChainDefinitions(path)
	require.Error(t, err)
}

func TestLoadChainDefinitionsEmptyPath(t *testing.T) {
	defs, err := LoadChainDefinitions("")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", defs.Name(1))
}

func TestInspectABI(t *testing.T) {
	raw := json.RawMessage(`[
		{"type":"constructor","inputs":[{"name":"owner","type":"address"}]},
		{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
		{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}],"anonymous":false}
	]`)

	stats, err := InspectABI(raw)
	require.NoError(t, err)
	assert.Equal(t, ABIStats{Methods: 1, Events: 1}, stats)

	_, err = InspectABI(json.RawMessage(`{"not":"an abi"}`))
	assert.Error(t, err)
}

func TestIsAddress(t *testing.T) {
	assert.True(t, IsAddress("0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"))
	assert.False(t, IsAddress("0xDEPLOYER"))
}
