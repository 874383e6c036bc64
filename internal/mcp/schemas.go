package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var granularityNames = []string{"word", "line", "block", "page"}

// recordProperties are the parameters every record-scoped tool takes
func recordProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"dataset_id": map[string]interface{}{
			"type":        "string",
			"description": "Dataset identifier of the record",
		},
		"local_id": map[string]interface{}{
			"type":        "string",
			"description": "Local identifier of the record within its dataset",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// searchFulltextTool returns the tool definition for search_fulltext
func searchFulltextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_fulltext",
		Description: "Search the full text of one record and return the matching annotations with exact character offsets",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: recordProperties(map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Words to search for; use double quotes for phrases",
				},
				"page_size": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of hits to return (1-100)",
					"default":     12,
					"minimum":     1,
					"maximum":     100,
				},
				"granularity": map[string]interface{}{
					"type":        "string",
					"description": "Annotation level hits are reported at",
					"enum":        granularityNames,
					"default":     "line",
				},
				"debug": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include snippets and extracted keywords in the result",
					"default":     false,
				},
			}),
			Required: []string{"dataset_id", "local_id", "query"},
		},
	}
}

// getAnnotationPageTool returns the tool definition for get_annotation_page
func getAnnotationPageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_annotation_page",
		Description: "Get the annotations of one page of a record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: recordProperties(map[string]interface{}{
				"page_id": map[string]interface{}{
					"type":        "string",
					"description": "Page identifier (\"1\" is the first page)",
				},
				"granularities": map[string]interface{}{
					"type":        "array",
					"description": "Only return annotations of these levels; all when omitted",
					"items": map[string]interface{}{
						"type": "string",
						"enum": granularityNames,
					},
				},
			}),
			Required: []string{"dataset_id", "local_id", "page_id"},
		},
	}
}

// getAnnotationTool returns the tool definition for get_annotation
func getAnnotationTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_annotation",
		Description: "Get a single annotation of a record with its text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: recordProperties(map[string]interface{}{
				"annotation_id": map[string]interface{}{
					"type":        "string",
					"description": "Annotation identifier",
				},
			}),
			Required: []string{"dataset_id", "local_id", "annotation_id"},
		},
	}
}

// getResourceTool returns the tool definition for get_resource
func getResourceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_resource",
		Description: "Get the full text resource of a page",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: recordProperties(map[string]interface{}{
				"resource_id": map[string]interface{}{
					"type":        "string",
					"description": "Full text resource identifier",
				},
			}),
			Required: []string{"dataset_id", "local_id", "resource_id"},
		},
	}
}

// importRecordsTool returns the tool definition for import_records
func importRecordsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_records",
		Description: "Import record documents (JSON files and plain text page directories) to make them searchable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a directory of records or a single JSON record file",
				},
			},
			Required: []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query store statistics and the outcome of the last import",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
