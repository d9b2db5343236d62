package mcp

import (
	"github.com/NewsNowIndy/Dashboard/internal/entities"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// SearchDocumentsInput defines the input schema for the search_documents tool.
type SearchDocumentsInput struct {
	Query string `json:"query" jsonschema:"Words to find in indexed records, e.g. 'use of force'"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

// SearchDocumentsOutput defines the output schema for the search_documents tool.
type SearchDocumentsOutput struct {
	Phase   search.Phase    `json:"phase"`
	Results []search.Result `json:"results"`
	Total   int             `json:"total"`
}

// ListEntitiesInput defines the input schema for the list_entities tool.
type ListEntitiesInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"Filter by 'person' or 'org'"`
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive name filter"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of entities (default 100)"`
}

// ListEntitiesOutput defines the output schema for the list_entities tool.
type ListEntitiesOutput struct {
	Entities []entities.Entity `json:"entities"`
	Total    int               `json:"total"`
}

// EntityDetailInput defines the input schema for the entity_detail tool.
type EntityDetailInput struct {
	ID int64 `json:"id" jsonschema:"Entity id from list_entities"`
}

// ReadDocumentInput defines the input schema for the read_document tool.
type ReadDocumentInput struct {
	Source string `json:"source" jsonschema:"One of 'project', 'attachment' or 'media'"`
	ID     int64  `json:"id" jsonschema:"Document id within its source"`
}

// ReadDocumentOutput defines the output schema for the read_document tool.
type ReadDocumentOutput struct {
	Source   string `json:"source"`
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Filename string `json:"filename,omitempty"`
	Project  string `json:"project,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Content  string `json:"content"`
	Indexed  bool   `json:"indexed"`
}
