package web3

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChainDefinitions models the structure of configs/chains.yaml, keyed by
// decimal chain id.
type ChainDefinitions struct {
	Chains map[string]ChainDefinition `yaml:"chains"`
}

// ChainDefinition describes a single network.
type ChainDefinition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// DefaultChainDefinitions lists the networks the deployment scripts target.
func DefaultChainDefinitions() ChainDefinitions {
	return ChainDefinitions{Chains: map[string]ChainDefinition{
		"1":     {Name: "mainnet", Description: "Ethereum mainnet"},
		"137":   {Name: "polygon", Description: "Polygon mainnet"},
		"31337": {Name: "anvil", Description: "local anvil node"},
	}}
}

// LoadChainDefinitions parses the YAML chain file and merges it over the
// defaults. An empty path yields the defaults.
func LoadChainDefinitions(path string) (ChainDefinitions, error) {
	defs := DefaultChainDefinitions()
	if strings.TrimSpace(path) == "" {
		return defs, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ChainDefinitions{}, fmt.Errorf("读取链配置失败: %w", err)
	}

	var loaded ChainDefinitions
	if err := yaml.Unmarshal(content, &loaded); err != nil {
		return ChainDefinitions{}, fmt.Errorf("解析链配置失败: %w", err)
	}
	for id, chain := range loaded.Chains {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return ChainDefinitions{}, fmt.Errorf("链 ID %q 不是整数", id)
		}
		defs.Chains[id] = chain
	}
	return defs, nil
}

// Name returns the human readable name for chainID, or "chain-<id>" when
// the id is unknown.
func (d ChainDefinitions) Name(chainID int64) string {
	if chain, ok := d.Chains[strconv.FormatInt(chainID, 10)]; ok && chain.Name != "" {
		return chain.Name
	}
	return "chain-" + strconv.FormatInt(chainID, 10)
}
