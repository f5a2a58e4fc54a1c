package export

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"infograph/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// manifest describes the provenance of an export archive.
type manifest struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	SourceFilter string             `json:"source_filter"`
	DatasetCount int                `json:"dataset_count"`
	Datasets     []manifestDataset  `json:"datasets"`
}

type manifestDataset struct {
	DatasetID    string             `json:"dataset_id"`
	SourceItemID string             `json:"source_item_id,omitempty"`
	FileID       string             `json:"file_id"`
	Page         int                `json:"page"`
	Title        string             `json:"title"`
	Kind         domain.ElementKind `json:"kind"`
	RowCount     int                `json:"row_count"`
	Confidence   float64            `json:"confidence"`
	CreatedAt    time.Time          `json:"created_at"`
}

// jsonDataset is the shape of one dataset inside data.json.
type jsonDataset struct {
	DatasetID string             `json:"dataset_id"`
	Title     string             `json:"title"`
	Kind      domain.ElementKind `json:"kind"`
	Columns   []string           `json:"columns"`
	Rows      []domain.Row       `json:"rows"`
}

// Writer assembles export archives from filtered datasets.
type Writer struct {
	now func() time.Time
}

// NewWriter creates an export Writer.
func NewWriter() *Writer {
	return &Writer{now: time.Now}
}

// WriteArchive writes a ZIP with data.csv, data.json, data.xlsx and
// manifest.json for the given filtered datasets.
func (w *Writer) WriteArchive(out io.Writer, datasets []FilteredDataset, mode domain.SourceFilterMode) error {
	zw := zip.NewWriter(out)

	csvFile, err := zw.Create("data.csv")
	if err != nil {
		return fmt.Errorf("creating data.csv: %w", err)
	}
	if err := w.writeCSV(csvFile, datasets); err != nil {
		return fmt.Errorf("writing data.csv: %w", err)
	}

	jsonFile, err := zw.Create("data.json")
	if err != nil {
		return fmt.Errorf("creating data.json: %w", err)
	}
	if err := w.writeJSON(jsonFile, datasets); err != nil {
		return fmt.Errorf("writing data.json: %w", err)
	}

	xlsxFile, err := zw.Create("data.xlsx")
	if err != nil {
		return fmt.Errorf("creating data.xlsx: %w", err)
	}
	if err := w.writeXLSX(xlsxFile, datasets); err != nil {
		return fmt.Errorf("writing data.xlsx: %w", err)
	}

	manifestFile, err := zw.Create("manifest.json")
	if err != nil {
		return fmt.Errorf("creating manifest.json: %w", err)
	}
	if err := w.writeManifest(manifestFile, datasets, mode); err != nil {
		return fmt.Errorf("writing manifest.json: %w", err)
	}

	return zw.Close()
}

// writeCSV concatenates all datasets into one CSV stream. Each dataset gets
// its own header row preceded by a title line, so a multi-dataset export
// stays readable when opened directly in a spreadsheet.
func (w *Writer) writeCSV(out io.Writer, datasets []FilteredDataset) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(out)

	for i, fd := range datasets {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if len(datasets) > 1 {
			if err := cw.Write([]string{fmt.Sprintf("# %s", datasetLabel(fd.Dataset))}); err != nil {
				return err
			}
		}
		if err := cw.Write(fd.Columns); err != nil {
			return err
		}
		for _, row := range fd.Rows {
			record := make([]string, len(fd.Columns))
			for j, col := range fd.Columns {
				record[j] = formatCell(row[col])
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeJSON(out io.Writer, datasets []FilteredDataset) error {
	payload := make([]jsonDataset, 0, len(datasets))
	for _, fd := range datasets {
		payload = append(payload, jsonDataset{
			DatasetID: fd.Dataset.ID,
			Title:     fd.Dataset.Title,
			Kind:      fd.Dataset.Kind,
			Columns:   fd.Columns,
			Rows:      fd.Rows,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// writeXLSX puts each dataset on its own sheet, named after the dataset
// title. Sheet names are capped at Excel's 31-character limit.
func (w *Writer) writeXLSX(out io.Writer, datasets []FilteredDataset) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, fd := range datasets {
		name := sheetName(fd.Dataset, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return err
			}
		}

		header := make([]any, len(fd.Columns))
		for j, col := range fd.Columns {
			header[j] = col
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}

		for r, row := range fd.Rows {
			cells := make([]any, len(fd.Columns))
			for j, col := range fd.Columns {
				cells[j] = row[col]
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return err
			}
		}
	}

	return f.Write(out)
}

func (w *Writer) writeManifest(out io.Writer, datasets []FilteredDataset, mode domain.SourceFilterMode) error {
	if mode == "" {
		mode = domain.SourceFilterAll
	}
	m := manifest{
		GeneratedAt:  w.now().UTC(),
		SourceFilter: string(mode),
		DatasetCount: len(datasets),
		Datasets:     make([]manifestDataset, 0, len(datasets)),
	}
	for _, fd := range datasets {
		ds := fd.Dataset
		m.Datasets = append(m.Datasets, manifestDataset{
			DatasetID:    ds.ID,
			SourceItemID: ds.SourceItemID,
			FileID:       ds.FileID.String(),
			Page:         ds.Page,
			Title:        ds.Title,
			Kind:         ds.Kind,
			RowCount:     len(fd.Rows),
			Confidence:   ds.Metadata.Confidence,
			CreatedAt:    ds.CreatedAt,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func datasetLabel(ds domain.Dataset) string {
	if ds.Title != "" {
		return ds.Title
	}
	return ds.ID
}

func sheetName(ds domain.Dataset, idx int) string {
	name := ds.Title
	if name == "" {
		name = fmt.Sprintf("Dataset %d", idx+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// formatCell renders a row value for CSV. JSON numbers arrive as float64;
// integral values are printed without a decimal point.
func formatCell(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
