// Package types provides shared type definitions for the fulltext MCP server.
//
// # Records, Pages and Annotations
//
// A record (one newspaper issue, one book) is identified by a RecordID and is
// made of pages. Each Page carries the authoritative transcription in FullText
// and an ordered list of Annotations. Annotation offsets are character (rune)
// offsets into FullText, end exclusive:
//
//	page := &types.Page{
//	    Record:   types.RecordID{DatasetID: "9200396", LocalID: "issue_1"},
//	    PageID:   "1",
//	    FullText: "Hi there. Good day.",
//	    Annotations: []types.Annotation{
//	        {ID: "w2", Granularity: types.GranularityWord, From: 3, To: 8},
//	        {ID: "l1", Granularity: types.GranularityLine, From: 0, To: 9},
//	    },
//	}
//
// Granularity is a closed enumeration mapped to the single letter wire codes
// W, L, B and P.
//
// # Hits
//
// CandidateHit is what the search index reports: a keyword plus one character
// of context on each side. LocatedHit is the same keyword after relocation in
// a page's text. Hit and Item are the response-side views collected in a
// SearchResult.
package types
