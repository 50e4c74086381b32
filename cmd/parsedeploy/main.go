package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"deploy-summary/internal/config"
	"deploy-summary/internal/errors"
	"deploy-summary/internal/publish"
	"deploy-summary/internal/summary"
	"deploy-summary/internal/web3"
	"deploy-summary/pkg/logger"
)

// main 解析指定链的最新广播日志并写出部署摘要。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if e, ok := errors.From(err); ok {
			logger.L().Error("parsedeploy failed", append([]any{"error", err}, e.LogAttrs()...)...)
		}
		_ = logger.Sync()
		log.Fatalf("parsedeploy 运行失败: %v", err)
	}
	_ = logger.Sync()
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chainID, err := parseChainID(args, cfg.Extract.DefaultChainID)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
	}); err != nil {
		return err
	}

	chains, err := web3.LoadChainDefinitions(cfg.Chains.ChainConfig)
	if err != nil {
		return err
	}

	publisher, err := publish.FromConfig(ctx, cfg.Publish)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.L().Warn("关闭摘要投递目标失败", "error", err)
		}
	}()

	extractor := summary.NewExtractor(cfg.Paths, cfg.Extract,
		summary.WithChains(chains),
		summary.WithPublisher(publisher),
		summary.WithLogger(logger.Named("summary")),
		summary.WithStdout(stdout),
	)
	_, err = extractor.Run(ctx, chainID)
	return err
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("PARSEDEPLOY_CONFIG")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func parseChainID(args []string, fallback int64) (int64, error) {
	switch len(args) {
	case 0:
		return fallback, nil
	case 1:
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, errors.Wrap(errors.CodeInvalidArgument, err, fmt.Sprintf("chain id %q is not an integer", args[0]))
		}
		return id, nil
	default:
		return 0, errors.New(errors.CodeInvalidArgument, "usage: parsedeploy [chainId]")
	}
}
