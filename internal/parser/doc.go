// Package parser reads record documents from import files.
//
// Two formats are supported. JSON record documents carry pages with their
// text and annotations:
//
//	{
//	  "dataset_id": "9200300",
//	  "local_id": "BibliographicResource_3000095610170",
//	  "language": "de",
//	  "pages": [
//	    {
//	      "page_id": "1",
//	      "resource_id": "a1b2c3",
//	      "text": "Hi there. Good day.",
//	      "annotations": [
//	        {"id": "w2", "type": "W", "from": 3, "to": 8, "targets": [{"x": 10, "y": 20, "w": 30, "h": 40}]},
//	        {"id": "l1", "type": "L", "from": 0, "to": 9}
//	      ]
//	    }
//	  ]
//	}
//
// A file may also hold an array of such objects. Annotation types are the
// codes W, L, B and P or the names word, line, block and page. Offsets are
// character offsets into the page text, end exclusive. A page without an
// "annotations" key gets annotations from the segmenter.
//
// Plain text records are directories of <page>.txt files:
//
//	p := parser.New()
//	result, err := p.ParseTextRecord("/data/9200300/issue_1", rec)
//
// # Error Handling
//
// Malformed JSON fails the whole file. Everything else is non-fatal: records
// without ids, duplicate pages and invalid annotations (unknown type, missing
// offsets, out of range, duplicate id) are dropped and reported:
//
//	if result.HasErrors() {
//	    for _, parseErr := range result.Errors {
//	        fmt.Printf("Parse error: %v\n", &parseErr)
//	    }
//	}
package parser
