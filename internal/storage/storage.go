package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying full-text records
type Storage interface {
	// Record operations
	UpsertRecord(ctx context.Context, record *Record) error
	GetRecord(ctx context.Context, id types.RecordID) (*Record, error)
	ListRecords(ctx context.Context, datasetID string) ([]*Record, error)
	DeleteRecord(ctx context.Context, id types.RecordID) error

	// Page operations
	UpsertPage(ctx context.Context, page *Page) error
	DeletePagesByRecord(ctx context.Context, recordID int64) error
	GetPage(ctx context.Context, id types.RecordID, pageID string) (*types.Page, error)
	PageExists(ctx context.Context, id types.RecordID, pageID string) (bool, error)
	ListPages(ctx context.Context, id types.RecordID) ([]*types.Page, error)
	GetResource(ctx context.Context, id types.RecordID, resourceID string) (*types.Resource, error)

	// Annotation operations
	ReplaceAnnotations(ctx context.Context, pageID int64, annotations []types.Annotation) error
	FindAnnotation(ctx context.Context, id types.RecordID, annotationID string) (*types.Page, *types.Annotation, error)

	// Search operations
	Highlights(ctx context.Context, id types.RecordID, query string, maxSnippets int) ([]types.HighlightDocument, error)

	// Import history
	RecordImportRun(ctx context.Context, run *ImportRun) error

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Record represents an imported record (one digitized object)
type Record struct {
	ID             int64
	DatasetID      string
	LocalID        string
	Language       string
	SourcePath     string
	ContentHash    [32]byte
	PageCount      int
	LastImportedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecordID returns the external identifier of the record
func (r *Record) RecordID() types.RecordID {
	return types.RecordID{DatasetID: r.DatasetID, LocalID: r.LocalID}
}

// Page represents one stored page of a record
type Page struct {
	ID          int64
	RecordID    int64
	PageID      string
	PageOrder   int
	ResourceID  string
	Language    string
	ImageURL    string
	FullText    string
	ContentHash [32]byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Annotation represents a stored annotation row
type Annotation struct {
	ID           int64
	PageID       int64
	AnnotationID string
	Granularity  string // single letter code
	CharFrom     int
	CharTo       int
	Language     string
	Targets      string // JSON encoded []types.Target
	Ordinal      int
}

// ImportRun records the outcome of one import of a directory
type ImportRun struct {
	ID                  int64
	RootPath            string
	RecordsImported     int
	RecordsSkipped      int
	PagesImported       int
	AnnotationsImported int
	ErrorCount          int
	Duration            time.Duration
	FinishedAt          time.Time
}

// Status contains statistics about the store
type Status struct {
	Records       int
	Pages         int
	Annotations   int
	ByGranularity map[string]int
	IndexSizeMB   float64
	SchemaVersion string
	BuildMode     string
	LastImport    *ImportRun // nil before the first import
	Health        HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexBuilt      bool
}

// FromTypesPage converts types.Page to a storage Page
func FromTypesPage(p types.Page, recordID int64, order int, hash [32]byte) *Page {
	return &Page{
		RecordID:    recordID,
		PageID:      p.PageID,
		PageOrder:   order,
		ResourceID:  p.ResourceID,
		Language:    p.Language,
		ImageURL:    p.ImageURL,
		FullText:    p.FullText,
		ContentHash: hash,
	}
}

// ToTypesPage converts a storage Page to types.Page, without annotations
func (p *Page) ToTypesPage(record types.RecordID) *types.Page {
	return &types.Page{
		Record:      record,
		PageID:      p.PageID,
		ResourceID:  p.ResourceID,
		Language:    p.Language,
		ImageURL:    p.ImageURL,
		FullText:    p.FullText,
		Annotations: make([]types.Annotation, 0),
	}
}

// FromTypesAnnotation converts types.Annotation to a storage Annotation
func FromTypesAnnotation(a types.Annotation, pageID int64, ordinal int) (*Annotation, error) {
	targets := "[]"
	if len(a.Targets) > 0 {
		b, err := json.Marshal(a.Targets)
		if err != nil {
			return nil, fmt.Errorf("failed to encode targets of %s: %w", a.ID, err)
		}
		targets = string(b)
	}
	return &Annotation{
		PageID:       pageID,
		AnnotationID: a.ID,
		Granularity:  string(a.Granularity.Code()),
		CharFrom:     a.From,
		CharTo:       a.To,
		Language:     a.Language,
		Targets:      targets,
		Ordinal:      ordinal,
	}, nil
}

// ToTypesAnnotation converts a storage Annotation to types.Annotation
func (a *Annotation) ToTypesAnnotation() (types.Annotation, error) {
	if len(a.Granularity) != 1 {
		return types.Annotation{}, fmt.Errorf("annotation %s: %w", a.AnnotationID, types.ErrInvalidGranularity)
	}
	g, err := types.GranularityFromCode(a.Granularity[0])
	if err != nil {
		return types.Annotation{}, fmt.Errorf("annotation %s: %w", a.AnnotationID, err)
	}
	anno := types.Annotation{
		ID:          a.AnnotationID,
		Granularity: g,
		From:        a.CharFrom,
		To:          a.CharTo,
		Language:    a.Language,
	}
	if a.Targets != "" && a.Targets != "[]" {
		if err := json.Unmarshal([]byte(a.Targets), &anno.Targets); err != nil {
			return types.Annotation{}, fmt.Errorf("failed to decode targets of %s: %w", a.AnnotationID, err)
		}
	}
	return anno, nil
}
