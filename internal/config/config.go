package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultChainID 为 Polygon 主网。
const DefaultChainID = 137

// Config 描述了 parsedeploy 启动时加载的配置。
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Extract ExtractConfig `json:"extract"`
	Chains  ChainsConfig  `json:"chains"`
	Log     LogConfig     `json:"log"`
	Publish PublishConfig `json:"publish"`
}

// PathsConfig 描述 Foundry 工程中广播日志与编译产物的位置。
type PathsConfig struct {
	BroadcastDir string `json:"broadcast_dir"`
	ScriptName   string `json:"script_name"`
	OutDir       string `json:"out_dir"`
	// ProjectLabel 仅用于确认信息中的展示路径。
	ProjectLabel string `json:"project_label"`
}

// ExtractConfig 控制摘要提取行为。
type ExtractConfig struct {
	DefaultChainID int64    `json:"default_chain_id"`
	CreationTypes  []string `json:"creation_types"`
}

// ChainsConfig 指向链定义 YAML 文件，可为空。
type ChainsConfig struct {
	ChainConfig string `json:"chain_config"`
}

// LogConfig 对应 pkg/logger 的配置。
type LogConfig struct {
	Level       string   `json:"level"`
	Format      string   `json:"format"`
	OutputPaths []string `json:"output_paths"`
	MaxSizeMB   int      `json:"max_size_mb"`
	MaxBackups  int      `json:"max_backups"`
}

// PublishConfig 描述可选的摘要投递目标，默认全部关闭。
type PublishConfig struct {
	Redis    RedisConfig    `json:"redis"`
	MySQL    MySQLConfig    `json:"mysql"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
}

// RedisConfig 将摘要写入 Redis 键。
type RedisConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	KeyPrefix  string `json:"key_prefix"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// MySQLConfig 将摘要保存到 MySQL 表。
type MySQLConfig struct {
	Enabled bool   `json:"enabled"`
	DSN     string `json:"dsn"`
	Table   string `json:"table"`
}

// RabbitMQConfig 将摘要作为消息投递到 RabbitMQ。
type RabbitMQConfig struct {
	Enabled    bool   `json:"enabled"`
	URL        string `json:"url"`
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`
}

// Default 返回不依赖配置文件的默认配置，路径相对当前工作目录。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults("")
	return cfg
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置默认值，并将相对路径解析到 baseDir。
func (c *Config) applyDefaults(baseDir string) {
	if c.Paths.BroadcastDir == "" {
		c.Paths.BroadcastDir = filepath.Join("..", "broadcast")
	}
	if c.Paths.ScriptName == "" {
		c.Paths.ScriptName = "Mdao.s.sol"
	}
	if c.Paths.OutDir == "" {
		c.Paths.OutDir = filepath.Join("..", "out")
	}
	if c.Paths.ProjectLabel == "" {
		c.Paths.ProjectLabel = "core-evm-contracts"
	}
	c.Paths.BroadcastDir = resolve(baseDir, c.Paths.BroadcastDir)
	c.Paths.OutDir = resolve(baseDir, c.Paths.OutDir)
	for i, out := range c.Log.OutputPaths {
		switch strings.ToLower(out) {
		case "", "stdout", "stderr":
		default:
			c.Log.OutputPaths[i] = resolve(baseDir, out)
		}
	}
	if c.Chains.ChainConfig != "" {
		c.Chains.ChainConfig = resolve(baseDir, c.Chains.ChainConfig)
	}

	if c.Extract.DefaultChainID == 0 {
		c.Extract.DefaultChainID = DefaultChainID
	}
	if len(c.Extract.CreationTypes) == 0 {
		c.Extract.CreationTypes = []string{"CREATE"}
	}

	if c.Publish.Redis.KeyPrefix == "" {
		c.Publish.Redis.KeyPrefix = "deployments:"
	}
	if c.Publish.MySQL.Table == "" {
		c.Publish.MySQL.Table = "deployment_summaries"
	}
	if c.Publish.RabbitMQ.RoutingKey == "" {
		c.Publish.RabbitMQ.RoutingKey = "deployments.parsed"
	}
}

func resolve(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
