package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db            *sql.DB
	snippetTokens int
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db, snippetTokens: DefaultSnippetTokens}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Record operations

func (s *SQLiteStorage) upsertRecordWithQuerier(ctx context.Context, q querier, record *Record) error {
	query := `
		INSERT INTO records (dataset_id, local_id, language, source_path, content_hash, page_count,
		                     last_imported_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id, local_id) DO UPDATE SET
			language = excluded.language,
			source_path = excluded.source_path,
			content_hash = excluded.content_hash,
			page_count = excluded.page_count,
			last_imported_at = excluded.last_imported_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		record.DatasetID, record.LocalID, record.Language, record.SourcePath,
		record.ContentHash[:], record.PageCount, now, now, now).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	record.LastImportedAt = now
	record.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertRecord(ctx context.Context, record *Record) error {
	return s.upsertRecordWithQuerier(ctx, s.querier(), record)
}

const recordColumns = `id, dataset_id, local_id, language, source_path, content_hash, page_count,
		       last_imported_at, created_at, updated_at`

func scanRecord(scan func(dest ...interface{}) error) (*Record, error) {
	var record Record
	var hash []byte
	var language, sourcePath sql.NullString
	var lastImportedAt sql.NullTime
	err := scan(
		&record.ID, &record.DatasetID, &record.LocalID, &language, &sourcePath,
		&hash, &record.PageCount, &lastImportedAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	copy(record.ContentHash[:], hash)
	record.Language = language.String
	record.SourcePath = sourcePath.String
	if lastImportedAt.Valid {
		record.LastImportedAt = lastImportedAt.Time
	}
	return &record, nil
}

func (s *SQLiteStorage) getRecordWithQuerier(ctx context.Context, q querier, id types.RecordID) (*Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM records
		WHERE dataset_id = ? AND local_id = ?
	`
	record, err := scanRecord(q.QueryRowContext(ctx, query, id.DatasetID, id.LocalID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SQLiteStorage) GetRecord(ctx context.Context, id types.RecordID) (*Record, error) {
	return s.getRecordWithQuerier(ctx, s.querier(), id)
}

func (s *SQLiteStorage) listRecordsWithQuerier(ctx context.Context, q querier, datasetID string) ([]*Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM records
		WHERE (? = '' OR dataset_id = ?)
		ORDER BY dataset_id, local_id
	`
	rows, err := q.QueryContext(ctx, query, datasetID, datasetID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := make([]*Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) ListRecords(ctx context.Context, datasetID string) ([]*Record, error) {
	return s.listRecordsWithQuerier(ctx, s.querier(), datasetID)
}

func (s *SQLiteStorage) deleteRecordWithQuerier(ctx context.Context, q querier, id types.RecordID) error {
	result, err := q.ExecContext(ctx, `DELETE FROM records WHERE dataset_id = ? AND local_id = ?`,
		id.DatasetID, id.LocalID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id types.RecordID) error {
	return s.deleteRecordWithQuerier(ctx, s.querier(), id)
}

// Page operations

func (s *SQLiteStorage) upsertPageWithQuerier(ctx context.Context, q querier, page *Page) error {
	query := `
		INSERT INTO pages (record_id, page_id, page_order, resource_id, language, image_url,
		                   fulltext, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(record_id, page_id) DO UPDATE SET
			page_order = excluded.page_order,
			resource_id = excluded.resource_id,
			language = excluded.language,
			image_url = excluded.image_url,
			fulltext = excluded.fulltext,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		page.RecordID, page.PageID, page.PageOrder, page.ResourceID, page.Language,
		page.ImageURL, page.FullText, page.ContentHash[:], now, now).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	page.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertPage(ctx context.Context, page *Page) error {
	return s.upsertPageWithQuerier(ctx, s.querier(), page)
}

func (s *SQLiteStorage) deletePagesByRecordWithQuerier(ctx context.Context, q querier, recordID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM pages WHERE record_id = ?`, recordID)
	return err
}

func (s *SQLiteStorage) DeletePagesByRecord(ctx context.Context, recordID int64) error {
	return s.deletePagesByRecordWithQuerier(ctx, s.querier(), recordID)
}

const pageColumns = `p.id, p.page_id, p.resource_id, p.language, p.image_url, p.fulltext`

func scanPage(scan func(dest ...interface{}) error, record types.RecordID) (int64, *types.Page, error) {
	var pk int64
	var p Page
	var resourceID, language, imageURL sql.NullString
	if err := scan(&pk, &p.PageID, &resourceID, &language, &imageURL, &p.FullText); err != nil {
		return 0, nil, err
	}
	p.ResourceID = resourceID.String
	p.Language = language.String
	p.ImageURL = imageURL.String
	return pk, p.ToTypesPage(record), nil
}

func (s *SQLiteStorage) getPageWithQuerier(ctx context.Context, q querier, id types.RecordID, pageID string) (*types.Page, error) {
	query := `SELECT ` + pageColumns + `
		FROM pages p
		INNER JOIN records r ON p.record_id = r.id
		WHERE r.dataset_id = ? AND r.local_id = ? AND p.page_id = ?
	`
	pk, page, err := scanPage(q.QueryRowContext(ctx, query, id.DatasetID, id.LocalID, pageID).Scan, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	annotations, err := s.listAnnotationsWithQuerier(ctx, q,
		`SELECT `+annotationColumns+` FROM annotations a WHERE a.page_id = ? ORDER BY a.ordinal`, pk)
	if err != nil {
		return nil, err
	}
	page.Annotations = append(page.Annotations, annotations[pk]...)
	return page, nil
}

func (s *SQLiteStorage) GetPage(ctx context.Context, id types.RecordID, pageID string) (*types.Page, error) {
	return s.getPageWithQuerier(ctx, s.querier(), id, pageID)
}

func (s *SQLiteStorage) pageExistsWithQuerier(ctx context.Context, q querier, id types.RecordID, pageID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM pages p
			INNER JOIN records r ON p.record_id = r.id
			WHERE r.dataset_id = ? AND r.local_id = ? AND p.page_id = ?
		)
	`
	var exists bool
	if err := q.QueryRowContext(ctx, query, id.DatasetID, id.LocalID, pageID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check page: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStorage) PageExists(ctx context.Context, id types.RecordID, pageID string) (bool, error) {
	return s.pageExistsWithQuerier(ctx, s.querier(), id, pageID)
}

func (s *SQLiteStorage) listPagesWithQuerier(ctx context.Context, q querier, id types.RecordID) ([]*types.Page, error) {
	query := `SELECT ` + pageColumns + `
		FROM pages p
		INNER JOIN records r ON p.record_id = r.id
		WHERE r.dataset_id = ? AND r.local_id = ?
		ORDER BY p.page_order, p.id
	`
	rows, err := q.QueryContext(ctx, query, id.DatasetID, id.LocalID)
	if err != nil {
		return nil, err
	}

	pages := make([]*types.Page, 0)
	keys := make([]int64, 0)
	for rows.Next() {
		pk, page, err := scanPage(rows.Scan, id)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		pages = append(pages, page)
		keys = append(keys, pk)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// Release the connection before the annotation query
	_ = rows.Close()

	if len(pages) == 0 {
		return pages, nil
	}

	annotations, err := s.listAnnotationsWithQuerier(ctx, q, `
		SELECT `+annotationColumns+`
		FROM annotations a
		INNER JOIN pages p ON a.page_id = p.id
		INNER JOIN records r ON p.record_id = r.id
		WHERE r.dataset_id = ? AND r.local_id = ?
		ORDER BY a.page_id, a.ordinal
	`, id.DatasetID, id.LocalID)
	if err != nil {
		return nil, err
	}
	for i, pk := range keys {
		pages[i].Annotations = append(pages[i].Annotations, annotations[pk]...)
	}
	return pages, nil
}

func (s *SQLiteStorage) ListPages(ctx context.Context, id types.RecordID) ([]*types.Page, error) {
	return s.listPagesWithQuerier(ctx, s.querier(), id)
}

func (s *SQLiteStorage) getResourceWithQuerier(ctx context.Context, q querier, id types.RecordID, resourceID string) (*types.Resource, error) {
	query := `
		SELECT p.page_id, p.language, p.fulltext
		FROM pages p
		INNER JOIN records r ON p.record_id = r.id
		WHERE r.dataset_id = ? AND r.local_id = ? AND p.resource_id = ?
		ORDER BY p.page_order
		LIMIT 1
	`
	resource := types.Resource{ID: resourceID, Record: id}
	var language sql.NullString
	err := q.QueryRowContext(ctx, query, id.DatasetID, id.LocalID, resourceID).Scan(
		&resource.PageID, &language, &resource.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	resource.Language = language.String
	return &resource, nil
}

func (s *SQLiteStorage) GetResource(ctx context.Context, id types.RecordID, resourceID string) (*types.Resource, error) {
	return s.getResourceWithQuerier(ctx, s.querier(), id, resourceID)
}

// Annotation operations

const annotationColumns = `a.id, a.page_id, a.annotation_id, a.granularity, a.char_from, a.char_to,
		       a.language, a.targets, a.ordinal`

// listAnnotationsWithQuerier runs an annotation query and groups the result by page key
func (s *SQLiteStorage) listAnnotationsWithQuerier(ctx context.Context, q querier, query string, args ...interface{}) (map[int64][]types.Annotation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byPage := make(map[int64][]types.Annotation)
	for rows.Next() {
		var a Annotation
		var language, targets sql.NullString
		err := rows.Scan(&a.ID, &a.PageID, &a.AnnotationID, &a.Granularity, &a.CharFrom, &a.CharTo,
			&language, &targets, &a.Ordinal)
		if err != nil {
			return nil, err
		}
		a.Language = language.String
		a.Targets = targets.String

		anno, err := a.ToTypesAnnotation()
		if err != nil {
			return nil, err
		}
		byPage[a.PageID] = append(byPage[a.PageID], anno)
	}
	return byPage, rows.Err()
}

func (s *SQLiteStorage) replaceAnnotationsWithQuerier(ctx context.Context, q querier, pageID int64, annotations []types.Annotation) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM annotations WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("failed to clear annotations: %w", err)
	}

	query := `
		INSERT INTO annotations (page_id, annotation_id, granularity, char_from, char_to,
		                         language, targets, ordinal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, anno := range annotations {
		row, err := FromTypesAnnotation(anno, pageID, i)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, query,
			row.PageID, row.AnnotationID, row.Granularity, row.CharFrom, row.CharTo,
			row.Language, row.Targets, row.Ordinal)
		if err != nil {
			return fmt.Errorf("failed to insert annotation %s: %w", anno.ID, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) ReplaceAnnotations(ctx context.Context, pageID int64, annotations []types.Annotation) error {
	return s.replaceAnnotationsWithQuerier(ctx, s.querier(), pageID, annotations)
}

func (s *SQLiteStorage) findAnnotationWithQuerier(ctx context.Context, q querier, id types.RecordID, annotationID string) (*types.Page, *types.Annotation, error) {
	query := `
		SELECT p.page_id
		FROM annotations a
		INNER JOIN pages p ON a.page_id = p.id
		INNER JOIN records r ON p.record_id = r.id
		WHERE r.dataset_id = ? AND r.local_id = ? AND a.annotation_id = ?
		ORDER BY p.page_order
		LIMIT 1
	`
	var pageID string
	err := q.QueryRowContext(ctx, query, id.DatasetID, id.LocalID, annotationID).Scan(&pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	page, err := s.getPageWithQuerier(ctx, q, id, pageID)
	if err != nil {
		return nil, nil, err
	}
	anno, ok := page.FindAnnotation(annotationID)
	if !ok {
		return nil, nil, ErrNotFound
	}
	return page, anno, nil
}

func (s *SQLiteStorage) FindAnnotation(ctx context.Context, id types.RecordID, annotationID string) (*types.Page, *types.Annotation, error) {
	return s.findAnnotationWithQuerier(ctx, s.querier(), id, annotationID)
}

// Search operations

func (s *SQLiteStorage) Highlights(ctx context.Context, id types.RecordID, query string, maxSnippets int) ([]types.HighlightDocument, error) {
	return highlights(ctx, s.querier(), id, query, maxSnippets, s.snippetTokens)
}

// Import history

func (s *SQLiteStorage) recordImportRunWithQuerier(ctx context.Context, q querier, run *ImportRun) error {
	query := `
		INSERT INTO import_runs (root_path, records_imported, records_skipped, pages_imported,
		                         annotations_imported, error_count, duration_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		run.RootPath, run.RecordsImported, run.RecordsSkipped, run.PagesImported,
		run.AnnotationsImported, run.ErrorCount, run.Duration.Milliseconds(), now)
	if err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	run.FinishedAt = now
	return nil
}

func (s *SQLiteStorage) RecordImportRun(ctx context.Context, run *ImportRun) error {
	return s.recordImportRunWithQuerier(ctx, s.querier(), run)
}

func (s *SQLiteStorage) lastImportRunWithQuerier(ctx context.Context, q querier) (*ImportRun, error) {
	query := `
		SELECT id, root_path, records_imported, records_skipped, pages_imported,
		       annotations_imported, error_count, duration_ms, finished_at
		FROM import_runs
		ORDER BY id DESC
		LIMIT 1
	`
	var run ImportRun
	var durationMS int64
	err := q.QueryRowContext(ctx, query).Scan(
		&run.ID, &run.RootPath, &run.RecordsImported, &run.RecordsSkipped, &run.PagesImported,
		&run.AnnotationsImported, &run.ErrorCount, &durationMS, &run.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{
		ByGranularity: make(map[string]int),
		BuildMode:     BuildMode,
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM records", &status.Records},
		{"SELECT COUNT(*) FROM pages", &status.Pages},
		{"SELECT COUNT(*) FROM annotations", &status.Annotations},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	rows, err := q.QueryContext(ctx, "SELECT granularity, COUNT(*) FROM annotations GROUP BY granularity")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			_ = rows.Close()
			return nil, err
		}
		name := code
		if len(code) == 1 {
			if g, err := types.GranularityFromCode(code[0]); err == nil {
				name = g.String()
			}
		}
		status.ByGranularity[name] = n
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	var version string
	err = q.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	status.SchemaVersion = version

	var ftsTables int
	err = q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='pages_fts'").Scan(&ftsTables)
	if err != nil {
		return nil, err
	}

	status.LastImport, err = s.lastImportRunWithQuerier(ctx, q)
	if err != nil {
		return nil, err
	}

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexBuilt:      ftsTables == 1,
	}
	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	return s.getStatusWithQuerier(ctx, s.querier())
}

// Transaction implementations. Every method goes through the transaction
// querier: the pool holds a single connection, so reaching for s.db while
// the transaction is open would block.

func (t *sqliteTx) UpsertRecord(ctx context.Context, record *Record) error {
	return t.storage.upsertRecordWithQuerier(ctx, t.querier(), record)
}

func (t *sqliteTx) GetRecord(ctx context.Context, id types.RecordID) (*Record, error) {
	return t.storage.getRecordWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListRecords(ctx context.Context, datasetID string) ([]*Record, error) {
	return t.storage.listRecordsWithQuerier(ctx, t.querier(), datasetID)
}

func (t *sqliteTx) DeleteRecord(ctx context.Context, id types.RecordID) error {
	return t.storage.deleteRecordWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) UpsertPage(ctx context.Context, page *Page) error {
	return t.storage.upsertPageWithQuerier(ctx, t.querier(), page)
}

func (t *sqliteTx) DeletePagesByRecord(ctx context.Context, recordID int64) error {
	return t.storage.deletePagesByRecordWithQuerier(ctx, t.querier(), recordID)
}

func (t *sqliteTx) GetPage(ctx context.Context, id types.RecordID, pageID string) (*types.Page, error) {
	return t.storage.getPageWithQuerier(ctx, t.querier(), id, pageID)
}

func (t *sqliteTx) PageExists(ctx context.Context, id types.RecordID, pageID string) (bool, error) {
	return t.storage.pageExistsWithQuerier(ctx, t.querier(), id, pageID)
}

func (t *sqliteTx) ListPages(ctx context.Context, id types.RecordID) ([]*types.Page, error) {
	return t.storage.listPagesWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) GetResource(ctx context.Context, id types.RecordID, resourceID string) (*types.Resource, error) {
	return t.storage.getResourceWithQuerier(ctx, t.querier(), id, resourceID)
}

func (t *sqliteTx) ReplaceAnnotations(ctx context.Context, pageID int64, annotations []types.Annotation) error {
	return t.storage.replaceAnnotationsWithQuerier(ctx, t.querier(), pageID, annotations)
}

func (t *sqliteTx) FindAnnotation(ctx context.Context, id types.RecordID, annotationID string) (*types.Page, *types.Annotation, error) {
	return t.storage.findAnnotationWithQuerier(ctx, t.querier(), id, annotationID)
}

func (t *sqliteTx) Highlights(ctx context.Context, id types.RecordID, query string, maxSnippets int) ([]types.HighlightDocument, error) {
	return highlights(ctx, t.querier(), id, query, maxSnippets, t.storage.snippetTokens)
}

func (t *sqliteTx) RecordImportRun(ctx context.Context, run *ImportRun) error {
	return t.storage.recordImportRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
