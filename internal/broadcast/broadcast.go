// Package broadcast reads the per-run transaction log Foundry writes to
// broadcast/<script>/<chainId>/run-latest.json.
package broadcast

import (
	"encoding/json"
	stdErrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"deploy-summary/internal/errors"
)

// LatestRunFile is the name Foundry gives the most recent broadcast.
const LatestRunFile = "run-latest.json"

// Log is the subset of a broadcast file the summary needs.
type Log struct {
	// Timestamp is kept as raw JSON so it can be copied out unchanged.
	Timestamp    json.RawMessage `json:"timestamp"`
	Transactions []Transaction   `json:"transactions"`
}

// Transaction is one submitted transaction, in submission order.
type Transaction struct {
	TransactionType *string   `json:"transactionType"`
	ContractName    *string   `json:"contractName"`
	ContractAddress *string   `json:"contractAddress"`
	Hash            *string   `json:"hash"`
	Transaction     *TxFields `json:"transaction"`
}

// TxFields is the nested request object of a broadcast transaction.
type TxFields struct {
	From *string `json:"from"`
}

// Path returns the conventional location of the latest broadcast log.
func Path(broadcastDir, scriptName string, chainID int64) string {
	return filepath.Join(RunDir(broadcastDir, scriptName, chainID), LatestRunFile)
}

// RunDir is the per-chain directory holding the broadcast logs.
func RunDir(broadcastDir, scriptName string, chainID int64) string {
	return filepath.Join(broadcastDir, scriptName, strconv.FormatInt(chainID, 10))
}

// Load reads and decodes the log at path. The top-level timestamp and
// transactions keys must be present.
func Load(path string) (*Log, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(err, "read broadcast log", path)
	}

	var log Log
	if err := json.Unmarshal(content, &log); err != nil {
		return nil, errors.Wrap(errors.CodeMalformedInput, err, "decode broadcast log", errors.WithPath(path))
	}
	if len(log.Timestamp) == 0 {
		return nil, missing("timestamp", path)
	}
	if log.Transactions == nil {
		return nil, missing("transactions", path)
	}
	return &log, nil
}

// Deployer returns the sender of the first transaction whatever its type.
func (l *Log) Deployer() (string, error) {
	if len(l.Transactions) == 0 {
		return "", errors.New(errors.CodeMissingField, "broadcast log has no transactions",
			errors.WithMetadata("field", "transactions[0]"))
	}
	first := l.Transactions[0]
	if first.Transaction == nil {
		return "", missing("transactions[0].transaction", "")
	}
	if first.Transaction.From == nil {
		return "", missing("transactions[0].transaction.from", "")
	}
	return *first.Transaction.From, nil
}

// Type returns the transaction type tag, or "" when absent.
func (t Transaction) Type() string {
	if t.TransactionType == nil {
		return ""
	}
	return *t.TransactionType
}

// IsCreation reports whether the type tag is one of creationTypes.
// A transaction without a type tag fails with MISSING_FIELD.
func (t Transaction) IsCreation(creationTypes []string) (bool, error) {
	if t.TransactionType == nil {
		return false, missing("transactionType", "")
	}
	return slices.Contains(creationTypes, *t.TransactionType), nil
}

// Creation holds the fields a creation transaction must carry.
type Creation struct {
	ContractName    string
	ContractAddress string
	Hash            string
}

// CreationFields returns the contract name, address and hash, failing with
// MISSING_FIELD if any is absent or null.
func (t Transaction) CreationFields() (Creation, error) {
	if t.ContractName == nil {
		return Creation{}, missing("contractName", "")
	}
	if t.ContractAddress == nil {
		return Creation{}, missing("contractAddress", "")
	}
	if t.Hash == nil {
		return Creation{}, missing("hash", "")
	}
	return Creation{
		ContractName:    *t.ContractName,
		ContractAddress: *t.ContractAddress,
		Hash:            *t.Hash,
	}, nil
}

func missing(field, path string) *errors.Error {
	opts := []errors.Option{errors.WithMetadata("field", field)}
	if path != "" {
		opts = append(opts, errors.WithPath(path))
	}
	return errors.New(errors.CodeMissingField, "missing key "+field, opts...)
}

func readError(err error, message, path string) *errors.Error {
	if stdErrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.CodeNotFound, err, message, errors.WithPath(path))
	}
	return errors.Wrap(errors.CodeIOFailure, err, message, errors.WithPath(path))
}
