package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"infograph/internal/domain"
	"infograph/internal/port"
)

type datasetRepo struct {
	db *sqlx.DB
}

// NewDatasetRepo creates a new PostgreSQL-backed DatasetRepository.
func NewDatasetRepo(db *sqlx.DB) port.DatasetRepository {
	return &datasetRepo{db: db}
}

// datasetRow mirrors the datasets table. Table shape (columns, rows) and
// provenance are stored as JSONB.
type datasetRow struct {
	ID           string          `db:"id"`
	SourceItemID string          `db:"source_item_id"`
	FileID       uuid.UUID       `db:"file_id"`
	Page         int             `db:"page"`
	Title        string          `db:"title"`
	Kind         string          `db:"kind"`
	Columns      json.RawMessage `db:"columns"`
	Rows         json.RawMessage `db:"rows"`
	Metadata     json.RawMessage `db:"metadata"`
	EditHistory  json.RawMessage `db:"edit_history"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func toDatasetRow(ds *domain.Dataset) (*datasetRow, error) {
	columns, err := json.Marshal(ds.Columns)
	if err != nil {
		return nil, fmt.Errorf("marshaling columns: %w", err)
	}
	rows, err := json.Marshal(ds.Rows)
	if err != nil {
		return nil, fmt.Errorf("marshaling rows: %w", err)
	}
	metadata, err := json.Marshal(ds.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}
	history := ds.EditHistory
	if history == nil {
		history = []domain.EditHistoryEntry{}
	}
	editHistory, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("marshaling edit history: %w", err)
	}
	return &datasetRow{
		ID:           ds.ID,
		SourceItemID: ds.SourceItemID,
		FileID:       ds.FileID,
		Page:         ds.Page,
		Title:        ds.Title,
		Kind:         string(ds.Kind),
		Columns:      columns,
		Rows:         rows,
		Metadata:     metadata,
		EditHistory:  editHistory,
		CreatedAt:    ds.CreatedAt,
		UpdatedAt:    ds.UpdatedAt,
	}, nil
}

func (row *datasetRow) toDomain() (*domain.Dataset, error) {
	ds := &domain.Dataset{
		ID:           row.ID,
		SourceItemID: row.SourceItemID,
		FileID:       row.FileID,
		Page:         row.Page,
		Title:        row.Title,
		Kind:         domain.ElementKind(row.Kind),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Columns, &ds.Columns); err != nil {
		return nil, fmt.Errorf("unmarshaling columns: %w", err)
	}
	if err := json.Unmarshal(row.Rows, &ds.Rows); err != nil {
		return nil, fmt.Errorf("unmarshaling rows: %w", err)
	}
	if err := json.Unmarshal(row.Metadata, &ds.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	if len(row.EditHistory) > 0 {
		if err := json.Unmarshal(row.EditHistory, &ds.EditHistory); err != nil {
			return nil, fmt.Errorf("unmarshaling edit history: %w", err)
		}
	}
	return ds, nil
}

func (r *datasetRepo) Create(ctx context.Context, ds *domain.Dataset) error {
	row, err := toDatasetRow(ds)
	if err != nil {
		return fmt.Errorf("datasetRepo.Create: %w", err)
	}

	query := `INSERT INTO datasets
		(id, source_item_id, file_id, page, title, kind, columns, rows,
		 metadata, edit_history, created_at, updated_at)
		VALUES (:id, :source_item_id, :file_id, :page, :title, :kind, :columns,
		        :rows, :metadata, :edit_history, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("datasetRepo.Create: %w", err)
	}
	return nil
}

func (r *datasetRepo) GetByID(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	var row datasetRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM datasets WHERE id = $1", datasetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("datasetRepo.GetByID: %w", err)
	}
	return row.toDomain()
}

func (r *datasetRepo) List(ctx context.Context, offset, limit int) ([]domain.Dataset, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM datasets"); err != nil {
		return nil, 0, fmt.Errorf("datasetRepo.List count: %w", err)
	}

	var rows []datasetRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM datasets ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("datasetRepo.List: %w", err)
	}

	datasets := make([]domain.Dataset, 0, len(rows))
	for i := range rows {
		ds, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("datasetRepo.List: %w", err)
		}
		datasets = append(datasets, *ds)
	}
	return datasets, total, nil
}

func (r *datasetRepo) Update(ctx context.Context, ds *domain.Dataset) error {
	row, err := toDatasetRow(ds)
	if err != nil {
		return fmt.Errorf("datasetRepo.Update: %w", err)
	}

	query := `UPDATE datasets SET
		title = :title, columns = :columns, rows = :rows, metadata = :metadata,
		edit_history = :edit_history, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("datasetRepo.Update: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrDatasetNotFound
	}
	return nil
}
