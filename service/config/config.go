/*
 * @module service/config/config
 * @description 清洗任务配置，提供默认值、YAML 文件覆盖和配置校验
 * @architecture 配置对象显式传入流水线入口，不使用全局状态
 * @documentReference DESIGN.md
 * @stateFlow 默认配置 -> (可选)YAML 覆盖 -> 校验 -> 传入流水线
 * @rules 源路径与输出路径必须非空，日志级别必须合法
 * @dependencies gopkg.in/yaml.v3
 * @refs main.go, service/cleansing/pipeline.go
 */

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSourcePath = "data/raw/netflix_titles.csv"
	DefaultSinkPath   = "data/processed/netflix_titles_cleaned.csv"
	DefaultSinkTable  = "catalog_titles"
	DefaultLogLevel   = "info"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Config 清洗任务配置
type Config struct {
	SourcePath      string `json:"source_path" yaml:"source_path"`           // 原始数据位置(CSV 路径或数据库)
	SourceTable     string `json:"source_table" yaml:"source_table"`         // 数据库源表名
	SinkPath        string `json:"sink_path" yaml:"sink_path"`               // 输出位置(CSV 路径或数据库)
	SinkTable       string `json:"sink_table" yaml:"sink_table"`             // 数据库输出表名
	MetricsTextfile string `json:"metrics_textfile" yaml:"metrics_textfile"` // Prometheus textfile 输出路径，为空则不输出
	LogLevel        string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		SourcePath:  DefaultSourcePath,
		SourceTable: DefaultSinkTable,
		SinkPath:    DefaultSinkPath,
		SinkTable:   DefaultSinkTable,
		LogLevel:    DefaultLogLevel,
	}
}

// LoadConfig 读取 YAML 配置文件并覆盖默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig 解析 YAML 配置内容，未设置的字段保持默认值
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourcePath) == "" {
		return fmt.Errorf("source_path 不能为空")
	}
	if strings.TrimSpace(c.SinkPath) == "" {
		return fmt.Errorf("sink_path 不能为空")
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("不支持的日志级别: %s", c.LogLevel)
	}
	return nil
}
