// Package mcp implements the Model Context Protocol (MCP) server for fulltext.
//
// The MCP server exposes six tools:
//   - search_fulltext: Search one record and get hits with exact character offsets
//   - get_annotation_page: Get the annotations of a page, optionally by granularity
//   - get_annotation: Get a single annotation with its text
//   - get_resource: Get the full text of a page
//   - import_records: Import JSON record documents and plain text pages
//   - get_status: Store statistics and the last import
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol messages only; logs go to stderr.
//
// # Basic Usage
//
//	fulltext serve --db ~/.fulltext/fulltext.db
//
// # Tool: search_fulltext
//
//	Request:
//	{
//	  "name": "search_fulltext",
//	  "arguments": {
//	    "dataset_id": "9200300",
//	    "local_id": "issue_1",
//	    "query": "there",
//	    "page_size": 12,
//	    "granularity": "line"
//	  }
//	}
//
//	Response:
//	{
//	  "id": "0b6f9a0e-...",
//	  "items": [
//	    {"id": "l1", "page_id": "1", "granularity": "line", "from": 0, "to": 9, "text": "Hi there."}
//	  ],
//	  "hits": [
//	    {
//	      "page_id": "1", "start": 3, "end": 8,
//	      "annotations": ["l1"],
//	      "selectors": [{"prefix": "Hi ", "exact": "there", "suffix": "."}]
//	    }
//	  ]
//	}
//
// With "granularity": "word" the matching words are returned as items and
// "hits" stays empty.
//
// # Tool: import_records
//
//	Request:
//	{
//	  "name": "import_records",
//	  "arguments": {"path": "/data/records"}
//	}
//
//	Response:
//	{
//	  "imported": true,
//	  "records_imported": 12,
//	  "records_skipped": 40,
//	  "pages_imported": 310,
//	  "duration_ms": 850
//	}
//
// Only one import runs at a time. Records that changed are dropped from the
// search page cache.
//
// # Error Codes
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  record not found
//	-32002  import already in progress
//	-32003  page, annotation or resource not found
//	-32004  empty query
//	-32005  search index unavailable (retry)
package mcp
