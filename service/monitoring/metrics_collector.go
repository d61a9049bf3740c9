/*
 * @module service/monitoring/metrics_collector
 * @description 清洗运行指标收集器，记录行数、去重数、耗时等并导出为 Prometheus textfile
 * @architecture 分层架构 - 监控层，使用独立 Registry 避免污染全局指标
 * @documentReference DESIGN.md
 * @stateFlow 清洗完成 -> Record 写入指标 -> WriteTextfile 导出
 * @rules 批处理任务通过 textfile 方式暴露指标，不启动 HTTP 服务
 * @dependencies github.com/prometheus/client_golang
 * @refs service/cleansing/pipeline.go
 */

package monitoring

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"catalog-cleaner/service/models"
)

const namespace = "catalog_cleaner"

// MetricsCollector 指标收集器
type MetricsCollector struct {
	registry *prometheus.Registry

	rowsBefore           prometheus.Gauge
	duplicatesRemoved    prometheus.Gauge
	invalidTitlesDropped prometheus.Gauge
	missingValuesFilled  prometheus.Gauge
	rowsAfter            prometheus.Gauge
	runDuration          prometheus.Gauge
	lastSuccess          prometheus.Gauge
}

// NewMetricsCollector 创建指标收集器实例
func NewMetricsCollector() *MetricsCollector {
	c := &MetricsCollector{
		registry:             prometheus.NewRegistry(),
		rowsBefore:           newGauge("rows_before", "清洗前行数"),
		duplicatesRemoved:    newGauge("duplicates_removed", "去除的重复行数"),
		invalidTitlesDropped: newGauge("invalid_titles_dropped", "标题缺失被丢弃的行数"),
		missingValuesFilled:  newGauge("missing_values_filled", "填充为 Unknown 的缺失值个数"),
		rowsAfter:            newGauge("rows_after", "清洗后行数"),
		runDuration:          newGauge("run_duration_seconds", "最近一次运行耗时(秒)"),
		lastSuccess:          newGauge("last_success_timestamp_seconds", "最近一次成功运行的 Unix 时间戳"),
	}

	c.registry.MustRegister(
		c.rowsBefore,
		c.duplicatesRemoved,
		c.invalidTitlesDropped,
		c.missingValuesFilled,
		c.rowsAfter,
		c.runDuration,
		c.lastSuccess,
	)
	return c
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

// Record 记录一次成功运行的指标
func (c *MetricsCollector) Record(metrics models.CleaningMetrics, duration time.Duration) {
	c.rowsBefore.Set(float64(metrics.RowsBefore))
	c.duplicatesRemoved.Set(float64(metrics.DuplicatesRemoved))
	c.invalidTitlesDropped.Set(float64(metrics.InvalidTitlesDropped))
	c.missingValuesFilled.Set(float64(metrics.MissingValuesFilled))
	c.rowsAfter.Set(float64(metrics.RowsAfter))
	c.runDuration.Set(duration.Seconds())
	c.lastSuccess.SetToCurrentTime()
}

// Gatherer 返回内部 Registry
func (c *MetricsCollector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile 以 node_exporter textfile 格式写出指标
func (c *MetricsCollector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建指标目录失败: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("写出指标文件失败: %w", err)
	}
	return nil
}
