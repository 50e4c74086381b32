// Package artifact loads contract interfaces from the compiler metadata files
// forge writes to out/<Name>.sol/<Name>.metadata.json.
package artifact

import (
	"encoding/json"
	stdErrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"deploy-summary/internal/errors"
)

// MetadataPath returns the metadata file for contractName under outDir.
func MetadataPath(outDir, contractName string) string {
	return filepath.Join(outDir, contractName+".sol", contractName+".metadata.json")
}

type metadataFile struct {
	Output *struct {
		ABI json.RawMessage `json:"abi"`
	} `json:"output"`
}

// LoadABI returns output.abi from the metadata file at path, byte for byte.
func LoadABI(path string) (json.RawMessage, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeIOFailure
		if stdErrors.Is(err, fs.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return nil, errors.Wrap(code, err, "read contract metadata", errors.WithPath(path))
	}

	var meta metadataFile
	if err := json.Unmarshal(content, &meta); err != nil {
		return nil, errors.Wrap(errors.CodeMalformedInput, err, "decode contract metadata", errors.WithPath(path))
	}
	if meta.Output == nil {
		return nil, errors.New(errors.CodeMissingField, "missing key output",
			errors.WithPath(path), errors.WithMetadata("field", "output"))
	}
	if len(meta.Output.ABI) == 0 {
		return nil, errors.New(errors.CodeMissingField, "missing key output.abi",
			errors.WithPath(path), errors.WithMetadata("field", "output.abi"))
	}
	return meta.Output.ABI, nil
}

// Loader resolves contract names to interfaces under a fixed out directory.
type Loader struct {
	OutDir string
}

// NewLoader returns a Loader rooted at outDir.
func NewLoader(outDir string) *Loader {
	return &Loader{OutDir: outDir}
}

// ABI loads the interface for contractName.
func (l *Loader) ABI(contractName string) (json.RawMessage, error) {
	abi, err := LoadABI(MetadataPath(l.OutDir, contractName))
	if err != nil {
		if e, ok := errors.From(err); ok {
			errors.WithMetadata("contract", contractName)(e)
		}
		return nil, err
	}
	return abi, nil
}
