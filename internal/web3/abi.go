package web3

import (
	"bytes"
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ABIStats summarises a contract interface for diagnostics.
type ABIStats struct {
	Methods int
	Events  int
	Errors  int
}

// InspectABI parses raw with go-ethereum's ABI decoder. The raw bytes are
// never modified; callers only use the result for logging.
func InspectABI(raw json.RawMessage) (ABIStats, error) {
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return ABIStats{}, err
	}
	return ABIStats{
		Methods: len(parsed.Methods),
		Events:  len(parsed.Events),
		Errors:  len(parsed.Errors),
	}, nil
}

// IsAddress reports whether s is a 20 byte hex address, with or without 0x.
func IsAddress(s string) bool {
	return common.IsHexAddress(s)
}
