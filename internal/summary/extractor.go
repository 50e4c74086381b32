package summary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"deploy-summary/internal/artifact"
	"deploy-summary/internal/broadcast"
	"deploy-summary/internal/config"
	"deploy-summary/internal/errors"
	"deploy-summary/internal/publish"
	"deploy-summary/internal/web3"

	"github.com/google/uuid"
)

// Publisher receives the encoded summary after it has been written.
type Publisher interface {
	Publish(ctx context.Context, msg publish.Message) error
}

// Extractor turns a chain's latest broadcast into parsed_run-latest.json.
type Extractor struct {
	paths         config.PathsConfig
	creationTypes []string
	chains        web3.ChainDefinitions
	abis          ABISource
	publisher     Publisher
	logger        *slog.Logger
	stdout        io.Writer
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithChains labels chain ids in messages.
func WithChains(defs web3.ChainDefinitions) Option {
	return func(e *Extractor) { e.chains = defs }
}

// WithPublisher forwards each written summary to p.
func WithPublisher(p Publisher) Option {
	return func(e *Extractor) { e.publisher = p }
}

// WithLogger overrides the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStdout redirects the confirmation line.
func WithStdout(w io.Writer) Option {
	return func(e *Extractor) {
		if w != nil {
			e.stdout = w
		}
	}
}

// WithABISource replaces the metadata loader rooted at paths.OutDir.
func WithABISource(src ABISource) Option {
	return func(e *Extractor) { e.abis = src }
}

// NewExtractor builds an Extractor over the project layout in paths.
func NewExtractor(paths config.PathsConfig, extract config.ExtractConfig, opts ...Option) *Extractor {
	creationTypes := extract.CreationTypes
	if len(creationTypes) == 0 {
		creationTypes = []string{"CREATE"}
	}
	e := &Extractor{
		paths:         paths,
		creationTypes: creationTypes,
		chains:        web3.DefaultChainDefinitions(),
		abis:          artifact.NewLoader(paths.OutDir),
		logger:        slog.Default(),
		stdout:        os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes a completed run.
type Result struct {
	RunID       string
	ChainID     int64
	InputPath   string
	OutputPath  string
	DisplayPath string
	Summary     *Summary
	Payload     []byte
}

// InputPath returns the broadcast log read for chainID.
func (e *Extractor) InputPath(chainID int64) string {
	return broadcast.Path(e.paths.BroadcastDir, e.paths.ScriptName, chainID)
}

// OutputPath returns the summary file written for chainID.
func (e *Extractor) OutputPath(chainID int64) string {
	return filepath.Join(broadcast.RunDir(e.paths.BroadcastDir, e.paths.ScriptName, chainID), OutputFile)
}

// Run reads the latest broadcast for chainID, builds the summary, overwrites
// the output file and prints a confirmation. Nothing is written if any
// input fails to load.
func (e *Extractor) Run(ctx context.Context, chainID int64) (*Result, error) {
	res := &Result{
		RunID:      uuid.NewString(),
		ChainID:    chainID,
		InputPath:  e.InputPath(chainID),
		OutputPath: e.OutputPath(chainID),
	}
	log := e.logger.With("run_id", res.RunID, "chain_id", chainID, "chain", e.chains.Name(chainID))

	runLog, err := broadcast.Load(res.InputPath)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded broadcast log", "path", res.InputPath, "transactions", len(runLog.Transactions))

	s, err := Build(runLog, e.abis, e.creationTypes)
	if err != nil {
		return nil, err
	}
	e.inspect(log, runLog, s)

	payload, err := Encode(s)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageFailure, err, "encode summary")
	}
	if err := os.WriteFile(res.OutputPath, payload, 0o644); err != nil {
		return nil, errors.Wrap(errors.CodeStorageFailure, err, "write summary", errors.WithPath(res.OutputPath))
	}
	res.Summary = s
	res.Payload = payload
	res.DisplayPath = e.displayPath(chainID)

	log.Info("wrote deployment summary", "path", res.OutputPath, "contracts", s.DeployedContracts.Len())
	fmt.Fprintf(e.stdout, "Parsed %s for chainId %d to %s\n", broadcast.LatestRunFile, chainID, res.DisplayPath)

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, publish.Message{
			RunID:     res.RunID,
			ChainID:   chainID,
			ChainName: e.chains.Name(chainID),
			Payload:   payload,
		}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// inspect logs warnings about suspicious input. It never changes s.
func (e *Extractor) inspect(log *slog.Logger, runLog *broadcast.Log, s *Summary) {
	first := runLog.Transactions[0]
	if ok, _ := first.IsCreation(e.creationTypes); !ok {
		log.Warn("first transaction is not a contract creation, deployer may be wrong",
			"type", first.Type(), "deployer", s.Deployer)
	}
	if !web3.IsAddress(s.Deployer) {
		log.Warn("deployer is not a hex address", "deployer", s.Deployer)
	}
	for _, name := range s.DeployedContracts.Names() {
		d, _ := s.DeployedContracts.Get(name)
		stats, err := web3.InspectABI(d.ABI)
		if err != nil {
			log.Warn("contract abi not understood by go-ethereum", "contract", name, "error", err)
			continue
		}
		log.Debug("recorded contract", "contract", name, "address", d.Address,
			"methods", stats.Methods, "events", stats.Events, "errors", stats.Errors)
	}
}

func (e *Extractor) displayPath(chainID int64) string {
	return path.Join(e.paths.ProjectLabel, filepath.Base(e.paths.BroadcastDir), e.paths.ScriptName,
		strconv.FormatInt(chainID, 10), OutputFile)
}
