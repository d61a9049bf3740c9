/*
 * @module service/cleansing/pipeline_test
 * @description 清洗流水线集成测试
 * @architecture 测试层 - 使用临时目录中的 CSV 与 SQLite 文件
 * @documentReference DESIGN.md
 * @stateFlow 准备原始文件 -> 运行流水线 -> 校验输出文件、指标与错误
 * @rules 确保读取失败不产生输出，成功运行输出与指标一致
 * @dependencies testing, testify/suite, catalog-cleaner/testutil
 * @refs pipeline.go
 */

package cleansing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"catalog-cleaner/service/config"
	"catalog-cleaner/service/datasource"
	"catalog-cleaner/service/models"
	"catalog-cleaner/service/monitoring"
	"catalog-cleaner/testutil"
)

const rawCatalogCSV = `show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description
s1,Movie,Dick Johnson Is Dead,Kirsten Johnson,,united states,"September 25, 2021",2020,pg-13,90 min,Documentaries,A documentary.
s2,TV Show,Blood & Water,,"Ama Qamata, Khosi Ngema","South Africa, south africa",,2021,TV-MA,2 Seasons,"International TV Shows, TV Dramas, TV Mysteries",A drama.
s3,TV Show,   ,Julien Leclercq,Sami Bouajila,,"September 24, 2021",2021,tv-ma,1 Season,"Crime TV Shows, International TV Shows",A title-less row.
s2,TV Show,Blood & Water,,"Ama Qamata, Khosi Ngema","South Africa, south africa",,2021,TV-MA,2 Seasons,"International TV Shows, TV Dramas, TV Mysteries",A drama.
s5,Movie,Kota Factory,,,"India,  united   states",,2021,NaN,, Dramas ,
`

// recordingSink 记录写入内容的测试落地
type recordingSink struct {
	written *models.Table
	err     error
}

func (s *recordingSink) Write(_ context.Context, table *models.Table) error {
	if s.err != nil {
		return s.err
	}
	s.written = table
	return nil
}

func (s *recordingSink) Location() string { return "memory" }

// PipelineTestSuite 流水线测试套件
type PipelineTestSuite struct {
	suite.Suite
	dir string
	ctx context.Context
}

func (s *PipelineTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.ctx = context.Background()
}

func (s *PipelineTestSuite) TestRunCSVToCSV() {
	source := testutil.WriteFile(s.T(), s.dir, "raw/netflix_titles.csv", rawCatalogCSV)
	output := filepath.Join(s.dir, "processed", "netflix_titles_cleaned.csv")
	collector := monitoring.NewMetricsCollector()

	result, err := NewPipeline(datasource.NewCSVSource(source), datasource.NewCSVSink(output), collector).Run(s.ctx)
	s.Require().NoError(err)

	s.NotEmpty(result.RunID)
	s.Equal(output, result.Output)
	s.Equal(5, result.Metrics.RowsBefore)
	s.Equal(1, result.Metrics.DuplicatesRemoved)
	s.Equal(1, result.Metrics.InvalidTitlesDropped)
	s.Equal(3, result.Metrics.RowsAfter)

	cleaned, err := datasource.NewCSVSource(output).Read(s.ctx)
	s.Require().NoError(err)
	s.Equal(testutil.CatalogColumns, cleaned.Columns)
	s.Require().Equal(3, cleaned.Len())

	s.Equal("United States", cleaned.Value(0, "country"))
	s.Equal("PG-13", cleaned.Value(0, "rating"))
	s.Equal("Unknown", cleaned.Value(0, "cast"))

	s.Equal("South Africa", cleaned.Value(1, "country"))
	s.Equal("International TV Shows|TV Dramas|TV Mysteries", cleaned.Value(1, "listed_in"))
	s.Equal("Unknown", cleaned.Value(1, "director"))
	s.Equal("Unknown", cleaned.Value(1, "date_added"))

	s.Equal("India|United States", cleaned.Value(2, "country"))
	s.Equal("Unknown", cleaned.Value(2, "rating"))
	s.Equal("Unknown", cleaned.Value(2, "duration"))
	s.Equal("Dramas", cleaned.Value(2, "listed_in"))
	s.Equal("Unknown", cleaned.Value(2, "description"))
	s.Equal("2021", cleaned.Value(2, "release_year"))
}

func (s *PipelineTestSuite) TestRunSourceNotFoundWritesNothing() {
	output := filepath.Join(s.dir, "processed", "out.csv")
	opened := false

	pipeline := NewLazyPipeline(
		datasource.NewCSVSource(filepath.Join(s.dir, "missing.csv")),
		func() (datasource.RecordSink, error) {
			opened = true
			return datasource.NewCSVSink(output), nil
		},
		nil,
	)

	result, err := pipeline.Run(s.ctx)

	s.Nil(result)
	s.Require().Error(err)
	s.True(errors.Is(err, datasource.ErrSourceNotFound))
	s.False(opened)
	_, statErr := os.Stat(filepath.Dir(output))
	s.True(os.IsNotExist(statErr))
}

func (s *PipelineTestSuite) TestRunSinkError() {
	source := testutil.WriteFile(s.T(), s.dir, "raw.csv", rawCatalogCSV)
	sinkErr := errors.New("disk full")

	_, err := NewPipeline(datasource.NewCSVSource(source), &recordingSink{err: sinkErr}, nil).Run(s.ctx)

	s.Require().Error(err)
	s.True(errors.Is(err, sinkErr))
}

func (s *PipelineTestSuite) TestRunWithCustomCleaner() {
	source := testutil.WriteFile(s.T(), s.dir, "raw.csv", "title,genres\nA,\"b, a\"\nA,\"b, a\"\n")
	sink := &recordingSink{}
	cleaner := &Cleaner{
		TitleColumn: "title",
		Rules:       []ColumnRule{{Column: "genres", Type: RuleCategories}},
	}

	result, err := NewPipeline(datasource.NewCSVSource(source), sink, nil).WithCleaner(cleaner).Run(s.ctx)
	s.Require().NoError(err)

	s.Equal(1, result.Metrics.DuplicatesRemoved)
	s.Require().NotNil(sink.written)
	s.Equal("a|b", sink.written.Value(0, "genres"))
}

func (s *PipelineTestSuite) TestRunWithConfigSQLiteAndMetrics() {
	cfg := config.DefaultConfig()
	cfg.SourcePath = testutil.WriteFile(s.T(), s.dir, "raw/netflix_titles.csv", rawCatalogCSV)
	cfg.SinkPath = filepath.Join(s.dir, "processed", "catalog.db")
	cfg.MetricsTextfile = filepath.Join(s.dir, "metrics", "catalog_cleaner.prom")

	result, err := RunWithConfig(s.ctx, cfg)
	s.Require().NoError(err)
	s.Equal(3, result.Metrics.RowsAfter)

	source, err := datasource.OpenSource(cfg.SinkPath, cfg.SinkTable)
	s.Require().NoError(err)
	cleaned, err := source.Read(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, cleaned.Len())
	s.Equal("India|United States", cleaned.Value(2, "country"))

	info, err := os.Stat(cfg.MetricsTextfile)
	s.Require().NoError(err)
	s.Greater(info.Size(), int64(0))
}

func (s *PipelineTestSuite) TestRunWithConfigMissingSource() {
	cfg := config.DefaultConfig()
	cfg.SourcePath = filepath.Join(s.dir, "data", "raw", "netflix_titles.csv")
	cfg.SinkPath = filepath.Join(s.dir, "data", "processed", "out.csv")

	_, err := RunWithConfig(s.ctx, cfg)

	s.Require().Error(err)
	s.True(errors.Is(err, datasource.ErrSourceNotFound))
	_, statErr := os.Stat(cfg.SinkPath)
	s.True(os.IsNotExist(statErr))
}

func (s *PipelineTestSuite) TestRunWithConfigInvalid() {
	cfg := config.DefaultConfig()
	cfg.SinkPath = ""

	_, err := RunWithConfig(s.ctx, cfg)
	s.Error(err)
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
