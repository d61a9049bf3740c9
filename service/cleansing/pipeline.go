/*
 * @module service/cleansing/pipeline
 * @description 清洗流水线编排，串联记录源读取、数据集清洗、记录落地和指标导出
 * @architecture 管道模式 - 单线程同步执行，失败即终止
 * @documentReference DESIGN.md
 * @stateFlow 读取记录源 -> Prepare -> 打开并写入记录落地 -> 记录指标 -> 返回运行结果
 * @rules 读取失败时不创建任何输出；所有错误向调用方返回，不吞掉
 * @dependencies github.com/google/uuid, catalog-cleaner/service/datasource, catalog-cleaner/service/monitoring
 * @refs cleaner.go, service/config/config.go
 */

package cleansing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"catalog-cleaner/service/config"
	"catalog-cleaner/service/datasource"
	"catalog-cleaner/service/models"
	"catalog-cleaner/service/monitoring"
)

// SinkOpener 延迟打开记录落地，保证读取失败时不产生输出
type SinkOpener func() (datasource.RecordSink, error)

// RunResult 一次清洗运行的结果
type RunResult struct {
	RunID    string                 `json:"run_id"`
	Metrics  models.CleaningMetrics `json:"metrics"`
	Output   string                 `json:"output"`
	Duration time.Duration          `json:"duration"`
}

// Pipeline 清洗流水线
type Pipeline struct {
	source    datasource.RecordSource
	openSink  SinkOpener
	cleaner   *Cleaner
	collector *monitoring.MetricsCollector
}

// NewPipeline 创建清洗流水线，collector 可为 nil
func NewPipeline(source datasource.RecordSource, sink datasource.RecordSink, collector *monitoring.MetricsCollector) *Pipeline {
	return NewLazyPipeline(source, func() (datasource.RecordSink, error) { return sink, nil }, collector)
}

// NewLazyPipeline 创建在清洗完成后才打开记录落地的流水线
func NewLazyPipeline(source datasource.RecordSource, openSink SinkOpener, collector *monitoring.MetricsCollector) *Pipeline {
	return &Pipeline{
		source:    source,
		openSink:  openSink,
		cleaner:   NewCleaner(),
		collector: collector,
	}
}

// WithCleaner 替换清洗策略
func (p *Pipeline) WithCleaner(cleaner *Cleaner) *Pipeline {
	p.cleaner = cleaner
	return p
}

// Run 执行一次完整清洗
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	startTime := time.Now()
	log := slog.With("run_id", runID)

	log.Info("开始清洗", "source", p.source.Location())

	raw, err := p.source.Read(ctx)
	if err != nil {
		log.Error("读取原始数据失败", "error", err)
		return nil, fmt.Errorf("读取原始数据失败: %w", err)
	}

	cleaned, metrics := p.cleaner.Prepare(raw)

	sink, err := p.openSink()
	if err != nil {
		return nil, fmt.Errorf("打开输出位置失败: %w", err)
	}
	if err := sink.Write(ctx, cleaned); err != nil {
		log.Error("写出清洗结果失败", "error", err)
		return nil, fmt.Errorf("写出清洗结果失败: %w", err)
	}

	duration := time.Since(startTime)
	if p.collector != nil {
		p.collector.Record(metrics, duration)
	}

	log.Info("清洗完成",
		"rows_before", metrics.RowsBefore,
		"duplicates_removed", metrics.DuplicatesRemoved,
		"invalid_titles_dropped", metrics.InvalidTitlesDropped,
		"rows_after", metrics.RowsAfter,
		"output", sink.Location(),
		"duration", duration)

	return &RunResult{
		RunID:    runID,
		Metrics:  metrics,
		Output:   sink.Location(),
		Duration: duration,
	}, nil
}

// RunWithConfig 按配置创建记录源、记录落地并执行清洗
func RunWithConfig(ctx context.Context, cfg *config.Config) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	source, err := datasource.OpenSource(cfg.SourcePath, cfg.SourceTable)
	if err != nil {
		return nil, fmt.Errorf("打开原始数据失败: %w", err)
	}
	defer closeQuietly(source)

	var sink datasource.RecordSink
	defer func() {
		if sink != nil {
			closeQuietly(sink)
		}
	}()

	collector := monitoring.NewMetricsCollector()
	pipeline := NewLazyPipeline(source, func() (datasource.RecordSink, error) {
		opened, err := datasource.OpenSink(cfg.SinkPath, cfg.SinkTable)
		if err != nil {
			return nil, err
		}
		sink = opened
		return opened, nil
	}, collector)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.MetricsTextfile != "" {
		if err := collector.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// closeQuietly 关闭持有连接的记录源或落地，关闭失败只记录日志
func closeQuietly(v interface{}) {
	closer, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("关闭数据连接失败", "error", err)
	}
}
