package types

import (
	"fmt"
	"unicode/utf8"
)

// FirstPageID is the page every stored record is expected to have.
const FirstPageID = "1"

// RecordID identifies a record (a newspaper issue, a book) made of pages.
type RecordID struct {
	DatasetID string `json:"dataset_id"`
	LocalID   string `json:"local_id"`
}

// String renders the record id as /dataset/local.
func (r RecordID) String() string {
	return "/" + r.DatasetID + "/" + r.LocalID
}

// Validate checks both id parts are present.
func (r RecordID) Validate() error {
	if r.DatasetID == "" {
		return fmt.Errorf("%w: dataset id is required", ErrInvalidRequest)
	}
	if r.LocalID == "" {
		return fmt.Errorf("%w: local id is required", ErrInvalidRequest)
	}
	return nil
}

// Target is a rectangle on the page image an annotation points at.
type Target struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Annotation is a span of a page's full text at a given granularity.
// From and To are character offsets into the page text, To exclusive.
type Annotation struct {
	ID          string      `json:"id"`
	Granularity Granularity `json:"granularity"`
	From        int         `json:"from"`
	To          int         `json:"to"`
	Language    string      `json:"language,omitempty"`
	Targets     []Target    `json:"targets,omitempty"`
}

// Len returns the number of characters the annotation covers.
func (a *Annotation) Len() int {
	return a.To - a.From
}

// ValidateRange checks the annotation lies within a text of textLen characters.
func (a *Annotation) ValidateRange(textLen int) error {
	if a.From < 0 || a.To < 0 {
		return fmt.Errorf("%w: %s has negative offset [%d,%d)", ErrInvalidRange, a.ID, a.From, a.To)
	}
	if a.From > a.To {
		return fmt.Errorf("%w: %s starts after it ends [%d,%d)", ErrInvalidRange, a.ID, a.From, a.To)
	}
	if a.To > textLen {
		return fmt.Errorf("%w: %s ends at %d beyond text length %d", ErrInvalidRange, a.ID, a.To, textLen)
	}
	return nil
}

// Page is one transcribed page of a record with its annotations in page order.
type Page struct {
	Record      RecordID     `json:"record"`
	PageID      string       `json:"page_id"`
	ResourceID  string       `json:"resource_id,omitempty"`
	Language    string       `json:"language,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	FullText    string       `json:"-"`
	Annotations []Annotation `json:"annotations"`
}

// TextLen returns the page text length in characters.
func (p *Page) TextLen() int {
	return utf8.RuneCountInString(p.FullText)
}

// FilterAnnotations returns the annotations matching any of the given
// granularities. With no granularities every annotation is returned.
func (p *Page) FilterAnnotations(granularities ...Granularity) []Annotation {
	if len(granularities) == 0 {
		return p.Annotations
	}
	filtered := make([]Annotation, 0, len(p.Annotations))
	for _, anno := range p.Annotations {
		for _, g := range granularities {
			if anno.Granularity == g {
				filtered = append(filtered, anno)
				break
			}
		}
	}
	return filtered
}

// FindAnnotation returns the annotation with the given id, if present.
func (p *Page) FindAnnotation(id string) (*Annotation, bool) {
	for i := range p.Annotations {
		if p.Annotations[i].ID == id {
			return &p.Annotations[i], true
		}
	}
	return nil, false
}

// Resource is the full-text resource a page's annotations point into.
type Resource struct {
	ID       string   `json:"id"`
	Record   RecordID `json:"record"`
	PageID   string   `json:"page_id"`
	Language string   `json:"language,omitempty"`
	Value    string   `json:"value"`
}
