package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"infograph/internal/domain"
)

func writeTestArchive(t *testing.T, datasets []FilteredDataset, mode domain.SourceFilterMode) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteArchive(&buf, datasets, mode))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return zr
}

func readArchiveFile(t *testing.T, zr *zip.Reader, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return data
		}
	}
	t.Fatalf("archive is missing %s", name)
	return nil
}

func exportableDataset() domain.Dataset {
	ds := untaggedDataset()
	ds.FileID = uuid.New()
	ds.Page = 1
	ds.SourceItemID = "item-1"
	ds.Metadata.Confidence = 0.9
	return ds
}

func TestWriteArchive_ContainsAllEntries(t *testing.T) {
	ds := exportableDataset()
	zr := writeTestArchive(t, Filter([]domain.Dataset{ds}, domain.SourceFilterAll), domain.SourceFilterAll)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"data.csv", "data.json", "data.xlsx", "manifest.json"}, names)
}

func TestWriteArchive_CSVContent(t *testing.T) {
	ds := exportableDataset()
	zr := writeTestArchive(t, Filter([]domain.Dataset{ds}, domain.SourceFilterAll), domain.SourceFilterAll)

	raw := readArchiveFile(t, zr, "data.csv")
	require.True(t, bytes.HasPrefix(raw, BOM))

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, BOM)))
	records, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"Team", "Count"}, records[0])
	assert.Equal(t, []string{"Eng", "12"}, records[1])
	assert.Equal(t, []string{"Sales", "7"}, records[2])
}

func TestWriteArchive_JSONContent(t *testing.T) {
	ds := exportableDataset()
	zr := writeTestArchive(t, Filter([]domain.Dataset{ds}, domain.SourceFilterAll), domain.SourceFilterAll)

	var payload []map[string]any
	require.NoError(t, json.Unmarshal(readArchiveFile(t, zr, "data.json"), &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, ds.ID, payload[0]["dataset_id"])
	assert.Equal(t, "Headcount", payload[0]["title"])
	rows := payload[0]["rows"].([]any)
	assert.Len(t, rows, 2)
}

func TestWriteArchive_Manifest(t *testing.T) {
	ds := exportableDataset()
	filtered := Filter([]domain.Dataset{ds}, domain.SourceFilterAnnotated)
	zr := writeTestArchive(t, filtered, domain.SourceFilterAnnotated)

	var m map[string]any
	require.NoError(t, json.Unmarshal(readArchiveFile(t, zr, "manifest.json"), &m))
	assert.Equal(t, "annotated", m["source_filter"])
	assert.EqualValues(t, 1, m["dataset_count"])

	entries := m["datasets"].([]any)
	entry := entries[0].(map[string]any)
	assert.Equal(t, ds.ID, entry["dataset_id"])
	assert.Equal(t, "item-1", entry["source_item_id"])
	assert.EqualValues(t, 2, entry["row_count"])
}

func TestWriteArchive_XLSXSheetPerDataset(t *testing.T) {
	ds1 := exportableDataset()
	ds2 := sourcedDataset()
	ds2.FileID = uuid.New()

	zr := writeTestArchive(t, Filter([]domain.Dataset{ds1, ds2}, domain.SourceFilterAll), domain.SourceFilterAll)

	f, err := excelize.OpenReader(bytes.NewReader(readArchiveFile(t, zr, "data.xlsx")))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, []string{"Headcount", "Monthly Revenue"}, sheets)

	cell, err := f.GetCellValue("Headcount", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Team", cell)
	cell, err = f.GetCellValue("Headcount", "B2")
	require.NoError(t, err)
	assert.Equal(t, "12", cell)
}

func TestWriteArchive_MultipleDatasetsGetTitleMarkersInCSV(t *testing.T) {
	ds1 := exportableDataset()
	ds2 := sourcedDataset()

	zr := writeTestArchive(t, Filter([]domain.Dataset{ds1, ds2}, domain.SourceFilterAll), domain.SourceFilterAll)
	raw := string(readArchiveFile(t, zr, "data.csv"))
	assert.Contains(t, raw, "# Headcount")
	assert.Contains(t, raw, "# Monthly Revenue")
}
