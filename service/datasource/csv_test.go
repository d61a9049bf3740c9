package datasource

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-cleaner/service/models"
	"catalog-cleaner/testutil"
)

func TestCSVSourceRead(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "raw.csv",
		"\xEF\xBB\xBFshow_id,title,country\n"+
			"s1,Movie A,\"United States, India\"\n"+
			"s2,,India\n")

	table, err := NewCSVSource(path).Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"show_id", "title", "country"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "United States, India", table.Value(0, "country"))
	assert.Nil(t, table.Value(1, "title"), "空单元格应读取为缺失值")
}

func TestCSVSourceNotFound(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Read(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestCSVSourceMalformedRow(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.csv", "a,b\n1,2\n3,4,5\n")

	_, err := NewCSVSource(path).Read(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSourceNotFound))
}

func TestReadCSVEmpty(t *testing.T) {
	table, err := ReadCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Equal(t, 0, table.Len())
}

func TestCSVSinkWriteCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "nested", "clean.csv")
	table, err := models.NewTable([]string{"title", "country"}, []models.Record{
		{"A", "India|United States"},
		{"B", nil},
	})
	require.NoError(t, err)

	require.NoError(t, NewCSVSink(path).Write(context.Background(), table))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "title,country\nA,India|United States\nB,\n", string(content))
}

func TestCSVRoundTrip(t *testing.T) {
	table, err := models.NewTable([]string{"title", "description"}, []models.Record{
		{"A, the movie", "line with \"quotes\""},
		{"B", "plain"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(context.Background(), &buf, table))

	read, err := ReadCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, read.Columns)
	assert.Equal(t, table.Records, read.Records)
}
