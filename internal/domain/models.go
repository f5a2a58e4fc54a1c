package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserItemPrefix marks item ids minted by the user rather than by an
// identification. Selections carrying this prefix must supply their own
// bounding box.
const UserItemPrefix = "new-"

// ImageDimensions is the pixel space bounding boxes are expressed in.
type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BoundingBox locates an element in source-image pixel units, origin top-left.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ClampTo constrains the box to lie within the given image dimensions.
// Model spatial estimates are approximate, so out-of-range boxes are
// clamped rather than rejected.
func (b BoundingBox) ClampTo(dims ImageDimensions) BoundingBox {
	if b.X < 0 {
		b.X = 0
	}
	if b.Y < 0 {
		b.Y = 0
	}
	if b.X > dims.Width {
		b.X = dims.Width
	}
	if b.Y > dims.Height {
		b.Y = dims.Height
	}
	if b.Width < 0 {
		b.Width = 0
	}
	if b.Height < 0 {
		b.Height = 0
	}
	if b.X+b.Width > dims.Width {
		b.Width = dims.Width - b.X
	}
	if b.Y+b.Height > dims.Height {
		b.Height = dims.Height - b.Y
	}
	return b
}

// DetectedItem is one visual element found during identification.
// Immutable once created.
type DetectedItem struct {
	ItemID      string      `json:"item_id"`
	Kind        ElementKind `json:"kind"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	DataPreview string      `json:"data_preview"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
	Warnings    []string    `json:"warnings"`
}

// SourceReference names the file and page an identification was run against.
type SourceReference struct {
	FileID uuid.UUID `json:"file_id"`
	Page   int       `json:"page"`
}

// Identification is the result of one identify call. Write-once; readable
// until ExpiresAt, after which reads fail with ErrIdentificationExpired.
type Identification struct {
	ID              string          `json:"identification_id"`
	Source          SourceReference `json:"source"`
	ImageDimensions ImageDimensions `json:"image_dimensions"`
	Items           []DetectedItem  `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

// Item returns the detected item with the given id, if present.
func (i *Identification) Item(itemID string) (*DetectedItem, bool) {
	for idx := range i.Items {
		if i.Items[idx].ItemID == itemID {
			return &i.Items[idx], true
		}
	}
	return nil, false
}

// ItemSelection is one user-confirmed extraction target. Zero-value override
// fields mean "keep the detected value"; a selection whose ItemID matches no
// detected item must carry its own bounding box.
type ItemSelection struct {
	ItemID      string       `json:"item_id"`
	Title       string       `json:"title,omitempty"`
	Kind        ElementKind  `json:"kind,omitempty"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

// ExtractionOptions tune one extraction run.
type ExtractionOptions struct {
	Granularity    Granularity `json:"granularity"`
	MergeDatasets  bool        `json:"merge_datasets"`
	OutputLanguage string      `json:"output_language,omitempty"`
}

// PlannedItem is a selection resolved against a stored identification,
// ready to be extracted. User-added items carry no confidence or warnings.
type PlannedItem struct {
	ItemID      string      `json:"item_id"`
	Kind        ElementKind `json:"kind"`
	Title       string      `json:"title"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
	UserAdded   bool        `json:"user_added,omitempty"`
}

// Row is one extracted record. After normalization every row of a dataset
// has the same key set; missing cells are empty strings, not absent keys.
type Row map[string]any

// DatasetMetadata carries extraction provenance for a dataset.
type DatasetMetadata struct {
	SourceBoundingBox *BoundingBox `json:"source_bounding_box,omitempty"`
	Confidence        float64      `json:"confidence"`
	Notes             string       `json:"notes,omitempty"`
}

// EditHistoryEntry records one review-time modification of a dataset.
type EditHistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes"`
}

// Dataset is one extraction result. The core never mutates a dataset after
// creation; only the review flow does.
type Dataset struct {
	ID           string             `json:"dataset_id"`
	SourceItemID string             `json:"source_item_id,omitempty"`
	FileID       uuid.UUID          `json:"file_id"`
	Page         int                `json:"page"`
	Title        string             `json:"title"`
	Kind         ElementKind        `json:"kind"`
	Columns      []string           `json:"columns"`
	Rows         []Row              `json:"rows"`
	Metadata     DatasetMetadata    `json:"metadata"`
	EditHistory  []EditHistoryEntry `json:"edit_history,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ItemFailure reports one planned item that produced no dataset. Surfaced
// as a warning alongside successful datasets, never silently dropped.
type ItemFailure struct {
	ItemID   string `json:"item_id"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}

// FileMeta describes an uploaded source file.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	ContentType  string     `db:"content_type" json:"content_type"`
	S3Bucket     string     `db:"s3_bucket" json:"-"`
	S3Key        string     `db:"s3_key" json:"-"`
	Pages        int        `db:"pages" json:"pages,omitempty"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
