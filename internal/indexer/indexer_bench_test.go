package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/fulltext-mcp/internal/segmenter"
	"github.com/dshills/fulltext-mcp/pkg/types"
)

// createBenchRecords writes n plain text records with pagesPerRecord pages each
func createBenchRecords(b *testing.B, n, pagesPerRecord int) string {
	b.Helper()

	dir := b.TempDir()
	line := strings.Repeat("the quick brown fox jumps over the lazy dog ", 8)
	text := strings.Repeat(line+"\n", 30)
	for r := 0; r < n; r++ {
		for p := 1; p <= pagesPerRecord; p++ {
			createTestFile(b, dir, filepath.Join("bench", fmt.Sprintf("rec%04d", r), fmt.Sprintf("%d.txt", p)), text)
		}
	}
	return dir
}

// BenchmarkImportRecords measures a full import into a fresh store
func BenchmarkImportRecords(b *testing.B) {
	dir := createBenchRecords(b, 20, 5)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		store := setupTestStorage(b)
		idx := New(store, nil)
		b.StartTimer()

		stats, err := idx.ImportRecords(ctx, dir, nil)
		if err != nil {
			b.Fatalf("ImportRecords failed: %v", err)
		}
		if stats.RecordsImported != 20 {
			b.Fatalf("expected 20 records, got %d", stats.RecordsImported)
		}
	}
}

// BenchmarkIncrementalImport measures a re-import where nothing changed
func BenchmarkIncrementalImport(b *testing.B) {
	dir := createBenchRecords(b, 20, 5)
	ctx := context.Background()
	store := setupTestStorage(b)
	idx := New(store, nil)

	if _, err := idx.ImportRecords(ctx, dir, nil); err != nil {
		b.Fatalf("initial import failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stats, err := idx.ImportRecords(ctx, dir, nil)
		if err != nil {
			b.Fatalf("ImportRecords failed: %v", err)
		}
		if stats.RecordsSkipped != 20 {
			b.Fatalf("expected 20 skipped records, got %d", stats.RecordsSkipped)
		}
	}
}

// BenchmarkWorkerCounts compares import throughput across worker pool sizes
func BenchmarkWorkerCounts(b *testing.B) {
	dir := createBenchRecords(b, 20, 5)
	ctx := context.Background()

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				idx := New(setupTestStorage(b), nil)
				b.StartTimer()

				if _, err := idx.ImportRecords(ctx, dir, &Config{Workers: workers, BatchSize: 5}); err != nil {
					b.Fatalf("ImportRecords failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkRecordHashing measures hashing of a parsed record
func BenchmarkRecordHashing(b *testing.B) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200)
	doc := &types.RecordDocument{Record: types.RecordID{DatasetID: "bench", LocalID: "hash"}}
	seg := segmenter.New()
	for i := 1; i <= 10; i++ {
		id := fmt.Sprint(i)
		doc.Pages = append(doc.Pages, types.Page{PageID: id, FullText: text, Annotations: seg.Segment(id, text)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := computeRecordHash(doc); err != nil {
			b.Fatal(err)
		}
	}
}
