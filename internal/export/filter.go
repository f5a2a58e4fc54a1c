package export

import (
	"strings"

	"infograph/internal/domain"
)

// FilteredDataset is a dataset projected through a source filter: possibly
// fewer rows, and no source column when a specific source was requested.
type FilteredDataset struct {
	Dataset domain.Dataset
	Columns []string
	Rows    []domain.Row
}

// Filter applies a source filter mode to a set of datasets. Rows without a
// source tag are always retained: filtering selects by provenance, and an
// untagged row has no provenance to disqualify it. When filtering to one
// source the tag column itself is dropped, since every surviving tagged
// row would carry the same value.
func Filter(datasets []domain.Dataset, mode domain.SourceFilterMode) []FilteredDataset {
	out := make([]FilteredDataset, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, filterOne(ds, mode))
	}
	return out
}

func filterOne(ds domain.Dataset, mode domain.SourceFilterMode) FilteredDataset {
	if mode == "" || mode == domain.SourceFilterAll {
		return FilteredDataset{Dataset: ds, Columns: ds.Columns, Rows: ds.Rows}
	}

	want := domain.SourceAnnotated
	if mode == domain.SourceFilterEstimated {
		want = domain.SourceEstimated
	}

	columns := make([]string, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		if col != domain.SourceColumn {
			columns = append(columns, col)
		}
	}

	rows := make([]domain.Row, 0, len(ds.Rows))
	for _, src := range ds.Rows {
		tag, tagged := sourceTag(src)
		if tagged && tag != want {
			continue
		}
		row := make(domain.Row, len(columns))
		for _, col := range columns {
			row[col] = src[col]
		}
		rows = append(rows, row)
	}

	return FilteredDataset{Dataset: ds, Columns: columns, Rows: rows}
}

func sourceTag(row domain.Row) (string, bool) {
	val, ok := row[domain.SourceColumn]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s)), true
}
