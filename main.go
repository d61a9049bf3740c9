package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"catalog-cleaner/logger"
	"catalog-cleaner/service/cleansing"
	"catalog-cleaner/service/config"
)

// 用法: catalog-cleaner [config.yaml]
func main() {
	cfg := config.DefaultConfig()
	if len(os.Args) > 1 {
		loaded, err := config.LoadConfig(os.Args[1])
		if err != nil {
			logger.InitLogger(config.DefaultLogLevel)
			slog.Error("加载配置失败", "path", os.Args[1], "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger.InitLogger(cfg.LogLevel)

	result, err := cleansing.RunWithConfig(context.Background(), cfg)
	if err != nil {
		slog.Error("数据清洗失败", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Rows before cleaning: %d\n", result.Metrics.RowsBefore)
	fmt.Printf("Duplicate rows removed: %d\n", result.Metrics.DuplicatesRemoved)
	fmt.Printf("Rows after cleaning: %d\n", result.Metrics.RowsAfter)
	fmt.Printf("Saved cleaned dataset to: %s\n", result.Output)
}
