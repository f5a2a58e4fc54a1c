package domain

// ElementKind classifies a visual element detected in a source image.
type ElementKind string

const (
	ElementBarChart        ElementKind = "bar_chart"
	ElementGroupedBarChart ElementKind = "grouped_bar_chart"
	ElementStackedBarChart ElementKind = "stacked_bar_chart"
	ElementLineChart       ElementKind = "line_chart"
	ElementMultiLineChart  ElementKind = "multi_line_chart"
	ElementPieChart        ElementKind = "pie_chart"
	ElementTable           ElementKind = "table"
	ElementKPIPanel        ElementKind = "kpi_panel"
	ElementMapData         ElementKind = "map_data"
	ElementOther           ElementKind = "other"
)

// validElementKinds is the set of kinds the model is allowed to report.
var validElementKinds = map[ElementKind]bool{
	ElementBarChart:        true,
	ElementGroupedBarChart: true,
	ElementStackedBarChart: true,
	ElementLineChart:       true,
	ElementMultiLineChart:  true,
	ElementPieChart:        true,
	ElementTable:           true,
	ElementKPIPanel:        true,
	ElementMapData:         true,
	ElementOther:           true,
}

// ParseElementKind maps a raw string onto an ElementKind, falling back to
// ElementOther for anything the model invented.
func ParseElementKind(s string) ElementKind {
	k := ElementKind(s)
	if validElementKinds[k] {
		return k
	}
	return ElementOther
}

// Granularity controls how many rows an extraction produces and whether
// axis-read values are included and tagged.
type Granularity string

const (
	GranularityAnnotatedOnly  Granularity = "annotated_only"
	GranularityFull           Granularity = "full"
	GranularityFullWithSource Granularity = "full_with_source"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityAnnotatedOnly, GranularityFull, GranularityFullWithSource:
		return true
	}
	return false
}

// SourceFilterMode selects which rows survive source filtering.
type SourceFilterMode string

const (
	SourceFilterAll       SourceFilterMode = "all"
	SourceFilterAnnotated SourceFilterMode = "annotated"
	SourceFilterEstimated SourceFilterMode = "estimated"
)

// Valid reports whether m is a known filter mode.
func (m SourceFilterMode) Valid() bool {
	switch m {
	case SourceFilterAll, SourceFilterAnnotated, SourceFilterEstimated:
		return true
	}
	return false
}

// Per-row source tag values and the column that carries them.
const (
	SourceAnnotated = "annotated"
	SourceEstimated = "estimated"
	SourceColumn    = "source"
)

// FileType identifies a supported upload type.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypePNG FileType = "png"
	FileTypeJPG FileType = "jpg"
)

// AllowedExtensions maps upload file extensions to file types.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"png":  FileTypePNG,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
}

// AllowedFileTypes maps file types to canonical content types.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypePNG: "image/png",
	FileTypeJPG: "image/jpeg",
}

// AllowedContentTypes is the set of content types accepted by magic-byte
// detection at upload time.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// FileStatus tracks the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)
