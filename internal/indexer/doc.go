// Package indexer imports record documents into the store.
//
// # Basic Usage
//
//	idx := indexer.New(store, logger)
//
//	stats, err := idx.ImportRecords(ctx, "/data/records", &indexer.Config{
//	    Workers:         4,
//	    BatchSize:       20,
//	    OnRecordChanged: searcher.InvalidateRecord,
//	})
//
//	fmt.Printf("Imported %d records in %v\n", stats.RecordsImported, stats.Duration)
//
// # Sources
//
// Two layouts are discovered below the root:
//
//	records/
//	├── issues-1923.json        JSON record documents, at any depth
//	└── 9200300/                dataset id
//	    └── issue_1/            local id
//	        ├── 1.txt           one plain text page per file
//	        └── 2.txt
//
// Hidden directories are skipped. See package parser for the JSON layout.
//
// # Incremental Import
//
// Each record is hashed (SHA-256 over its pages, text and annotations). A
// record whose stored hash is equal is skipped; a changed record has all its
// pages and annotations rewritten in one transaction, so readers never see a
// half-imported record.
//
// # Error Handling
//
// Unreadable files, malformed JSON and failing records are counted in
// Statistics.RecordsFailed and listed in Statistics.ErrorMessages; the import
// continues. Dropped pages and annotations count as ParseWarnings. Only
// discovery errors and cancellation fail the whole import.
//
// # Locking
//
// ImportLock lets a server refuse a second import while one is running:
//
//	if !lock.TryAcquire() {
//	    return errImportInProgress
//	}
//	defer lock.Release()
package indexer
