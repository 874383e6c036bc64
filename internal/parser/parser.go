package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/fulltext-mcp/internal/segmenter"
	"github.com/dshills/fulltext-mcp/pkg/types"
)

const (
	// JSONExt is the extension of record document files
	JSONExt = ".json"

	// TextExt is the extension of plain text page files
	TextExt = ".txt"
)

// Parser reads record documents from import files
type Parser struct {
	seg *segmenter.Segmenter
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{
		seg: segmenter.New(),
	}
}

// recordFile is the JSON layout of one record
type recordFile struct {
	DatasetID string     `json:"dataset_id"`
	LocalID   string     `json:"local_id"`
	Language  string     `json:"language"`
	Pages     []pageFile `json:"pages"`
}

type pageFile struct {
	PageID      string           `json:"page_id"`
	ResourceID  string           `json:"resource_id"`
	Language    string           `json:"language"`
	ImageURL    string           `json:"image_url"`
	Text        string           `json:"text"`
	Annotations []annotationFile `json:"annotations"`
}

type annotationFile struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	From     *int           `json:"from"`
	To       *int           `json:"to"`
	Language string         `json:"language"`
	Targets  []types.Target `json:"targets"`
}

// ParseFile parses a JSON record document file. The file holds either one
// record object or an array of them.
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(filePath, f)
}

// Parse parses record documents from r. name is only used in error messages.
// Malformed JSON fails the whole file; invalid records, pages and annotations
// are dropped and reported in the result's Errors.
func (p *Parser) Parse(name string, r io.Reader) (*types.ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var files []recordFile
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &files)
	} else {
		var single recordFile
		err = json.Unmarshal(trimmed, &single)
		files = []recordFile{single}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	result := &types.ParseResult{Documents: make([]types.RecordDocument, 0, len(files))}
	for i := range files {
		if doc, ok := p.convertRecord(name, &files[i], result); ok {
			result.Documents = append(result.Documents, doc)
		}
	}
	return result, nil
}

func (p *Parser) convertRecord(name string, rf *recordFile, result *types.ParseResult) (types.RecordDocument, bool) {
	rec := types.RecordID{DatasetID: strings.TrimSpace(rf.DatasetID), LocalID: strings.TrimSpace(rf.LocalID)}
	if err := rec.Validate(); err != nil {
		result.AddError(name, "", fmt.Sprintf("record skipped: %v", err))
		return types.RecordDocument{}, false
	}

	doc := types.RecordDocument{Record: rec, Pages: make([]types.Page, 0, len(rf.Pages))}
	seenPages := make(map[string]bool, len(rf.Pages))
	seenAnnos := make(map[string]bool)

	for i := range rf.Pages {
		pf := &rf.Pages[i]
		pageID := strings.TrimSpace(pf.PageID)
		if pageID == "" {
			pageID = strconv.Itoa(i + 1)
			result.AddError(name, pageID, "missing page_id, using page position")
		}
		if seenPages[pageID] {
			result.AddError(name, pageID, "duplicate page skipped")
			continue
		}
		seenPages[pageID] = true

		page := types.Page{
			Record:     rec,
			PageID:     pageID,
			ResourceID: firstNonEmpty(pf.ResourceID, pageID),
			Language:   firstNonEmpty(pf.Language, rf.Language),
			ImageURL:   pf.ImageURL,
			FullText:   pf.Text,
		}

		if pf.Annotations == nil {
			page.Annotations = p.seg.Segment(pageID, page.FullText)
		} else {
			page.Annotations = convertAnnotations(name, &page, pf.Annotations, seenAnnos, result)
		}
		doc.Pages = append(doc.Pages, page)
	}

	if len(doc.Pages) == 0 {
		result.AddError(name, "", fmt.Sprintf("record %s has no pages", rec))
	}
	return doc, true
}

// convertAnnotations keeps the valid annotations of a page in file order.
// Annotation ids must be unique within the record.
func convertAnnotations(name string, page *types.Page, in []annotationFile, seen map[string]bool,
	result *types.ParseResult) []types.Annotation {

	textLen := page.TextLen()
	out := make([]types.Annotation, 0, len(in))
	for _, af := range in {
		if af.ID == "" {
			result.AddError(name, page.PageID, "annotation without id dropped")
			continue
		}
		if seen[af.ID] {
			result.AddError(name, page.PageID, fmt.Sprintf("duplicate annotation %s dropped", af.ID))
			continue
		}
		g, err := types.ParseGranularity(af.Type)
		if err != nil {
			result.AddError(name, page.PageID, fmt.Sprintf("annotation %s dropped: %v", af.ID, err))
			continue
		}
		if af.From == nil || af.To == nil {
			result.AddError(name, page.PageID, fmt.Sprintf("annotation %s dropped: missing offsets", af.ID))
			continue
		}

		anno := types.Annotation{
			ID:          af.ID,
			Granularity: g,
			From:        *af.From,
			To:          *af.To,
			Language:    af.Language,
			Targets:     af.Targets,
		}
		if err := anno.ValidateRange(textLen); err != nil {
			result.AddError(name, page.PageID, fmt.Sprintf("annotation dropped: %v", err))
			continue
		}
		seen[af.ID] = true
		out = append(out, anno)
	}
	return out
}

// ParseTextRecord builds one record from a directory of plain text pages.
// Each <page>.txt file becomes a page whose annotations are derived by the
// segmenter. Pages are ordered by numeric page id, then by name.
func (p *Parser) ParseTextRecord(dir string, rec types.RecordID) (*types.ParseResult, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), TextExt) {
			names = append(names, e.Name())
		}
	}
	sortPageFiles(names)

	result := &types.ParseResult{}
	doc := types.RecordDocument{Record: rec, Pages: make([]types.Page, 0, len(names))}
	for _, fileName := range names {
		path := filepath.Join(dir, fileName)
		pageID := strings.TrimSuffix(fileName, filepath.Ext(fileName))

		content, err := os.ReadFile(path)
		if err != nil {
			result.AddError(path, pageID, fmt.Sprintf("unreadable page skipped: %v", err))
			continue
		}
		if !utf8.Valid(content) {
			result.AddError(path, pageID, "invalid UTF-8 replaced")
			content = bytes.ToValidUTF8(content, []byte(string(utf8.RuneError)))
		}
		text := strings.TrimPrefix(string(content), "\ufeff")

		doc.Pages = append(doc.Pages, types.Page{
			Record:      rec,
			PageID:      pageID,
			ResourceID:  pageID,
			FullText:    text,
			Annotations: p.seg.Segment(pageID, text),
		})
	}

	if len(doc.Pages) > 0 {
		result.Documents = []types.RecordDocument{doc}
	}
	return result, nil
}

// sortPageFiles orders page files numerically where possible
func sortPageFiles(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a := strings.TrimSuffix(names[i], filepath.Ext(names[i]))
		b := strings.TrimSuffix(names[j], filepath.Ext(names[j]))
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			return na < nb
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return a < b
		}
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
