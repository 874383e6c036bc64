package types

// RecordDocument is one record as read from an import file.
type RecordDocument struct {
	Record RecordID
	Pages  []Page
}

// ParseResult represents the output of parsing an import file
type ParseResult struct {
	Documents []RecordDocument

	// Problems that did not stop parsing, such as dropped annotations
	Errors []ParseError
}

// ParseError represents an error that occurred during parsing
type ParseError struct {
	File    string
	PageID  string
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	if pe.PageID != "" {
		return pe.File + ": page " + pe.PageID + ": " + pe.Message
	}
	return pe.File + ": " + pe.Message
}

// HasErrors returns true if any parsing errors occurred
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError adds a parsing error to the result
func (pr *ParseResult) AddError(file, pageID, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		File:    file,
		PageID:  pageID,
		Message: msg,
	})
}
