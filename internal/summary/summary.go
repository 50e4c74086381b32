// Package summary condenses a Foundry broadcast log and the matching compiler
// metadata into the parsed_run-latest.json deployment summary.
package summary

import (
	"encoding/json"
	"strconv"

	"deploy-summary/internal/broadcast"
	"deploy-summary/internal/errors"

	"github.com/iancoleman/orderedmap"
)

// OutputFile is written next to run-latest.json.
const OutputFile = "parsed_run-latest.json"

// Summary is the condensed deployment artifact.
type Summary struct {
	Time              json.RawMessage `json:"time"`
	Deployer          string          `json:"deployer"`
	DeployedContracts *Contracts      `json:"deployed_contracts"`
}

// Deployment is one created contract.
type Deployment struct {
	Address string          `json:"address"`
	TxHash  string          `json:"tx_hash"`
	ABI     json.RawMessage `json:"abi"`
}

// Contracts maps contract names to deployments and encodes them in the
// order each name was first recorded.
type Contracts struct {
	m *orderedmap.OrderedMap
}

// NewContracts returns an empty mapping.
func NewContracts() *Contracts {
	return &Contracts{m: orderedmap.New()}
}

// Set records d under name. An existing entry is replaced in place.
func (c *Contracts) Set(name string, d Deployment) {
	c.m.Set(name, d)
}

// Get returns the deployment recorded for name.
func (c *Contracts) Get(name string) (Deployment, bool) {
	v, ok := c.m.Get(name)
	if !ok {
		return Deployment{}, false
	}
	return v.(Deployment), true
}

// Names lists contract names in encoding order.
func (c *Contracts) Names() []string {
	return c.m.Keys()
}

// Len returns the number of recorded contracts.
func (c *Contracts) Len() int {
	return len(c.m.Keys())
}

// MarshalJSON implements json.Marshaler.
func (c *Contracts) MarshalJSON() ([]byte, error) {
	return c.m.MarshalJSON()
}

// ABISource resolves a contract name to its interface description.
type ABISource interface {
	ABI(contractName string) (json.RawMessage, error)
}

// Build assembles the summary for log. Every transaction whose type is in
// creationTypes is joined with its contract's ABI; a later creation of the
// same name overwrites the earlier one. The first error aborts the build.
func Build(log *broadcast.Log, abis ABISource, creationTypes []string) (*Summary, error) {
	deployer, err := log.Deployer()
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Time:              log.Timestamp,
		Deployer:          deployer,
		DeployedContracts: NewContracts(),
	}

	for i, tx := range log.Transactions {
		isCreation, err := tx.IsCreation(creationTypes)
		if err != nil {
			return nil, withIndex(err, i)
		}
		if !isCreation {
			continue
		}
		creation, err := tx.CreationFields()
		if err != nil {
			return nil, withIndex(err, i)
		}
		abi, err := abis.ABI(creation.ContractName)
		if err != nil {
			return nil, err
		}
		s.DeployedContracts.Set(creation.ContractName, Deployment{
			Address: creation.ContractAddress,
			TxHash:  creation.Hash,
			ABI:     abi,
		})
	}
	return s, nil
}

// Encode renders s as JSON indented by two spaces.
func Encode(s *Summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func withIndex(err error, i int) error {
	if e, ok := errors.From(err); ok {
		errors.WithMetadata("transaction_index", strconv.Itoa(i))(e)
	}
	return err
}
