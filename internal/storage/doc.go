// Package storage provides SQLite-based persistence for full-text records.
//
// The storage layer manages:
//   - Record metadata and content hashes
//   - Pages with their full text, in reading order
//   - Annotations (word, line, block and page spans with image targets)
//   - The FTS5 index that serves highlighted snippets
//   - Import run history
//
// # Database Schema
//
// Tables:
//   - records: One row per (dataset id, local id)
//   - pages: Page text, resource id and SHA-256 hash, ordered by page_order
//   - annotations: Character spans into the page text
//   - pages_fts: FTS5 external content index over pages.fulltext
//   - import_runs: Outcome of each directory import
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.fulltext/fulltext.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	rec := types.RecordID{DatasetID: "9200300", LocalID: "BibliographicResource_3000095610170"}
//	pages, err := db.ListPages(ctx, rec)
//
// # Transactions
//
// Records are imported in one transaction each:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.UpsertRecord(ctx, record)
//	_ = tx.DeletePagesByRecord(ctx, record.ID)
//	_ = tx.UpsertPage(ctx, page)
//	_ = tx.ReplaceAnnotations(ctx, page.ID, annotations)
//
//	return tx.Commit()
//
// The pool holds a single connection. Inside a transaction only use the
// transaction's methods.
//
// # Highlights
//
// Highlights queries pages_fts for one record and returns one snippet per
// matching page, with keywords wrapped in <em> and </em>:
//
//	docs, err := db.Highlights(ctx, rec, "berlin wall", 12)
//
// Query terms are quoted before they reach FTS5, so operators in user input
// are matched literally. Double quoted phrases are kept together.
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Needs the sqlite_fts5 tag as well
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo,sqlite_fts5" ./...
package storage
