package docs

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// InsertTextOp inserts text at an absolute character index. Index 1 is
// the beginning of the document body; index 0 is reserved by the
// document's coordinate space and invalid.
type InsertTextOp struct {
	Text  string `json:"text"`
	Index int64  `json:"index"`
}

// DeleteContentRangeOp deletes the content between two indices. The
// range is half-open in the document's coordinate space and must be
// non-empty.
type DeleteContentRangeOp struct {
	StartIndex int64 `json:"start_index"`
	EndIndex   int64 `json:"end_index"`
}

// ReplaceAllTextOp replaces every occurrence of FindText. It carries
// no index and matching zero occurrences is a successful no-op.
type ReplaceAllTextOp struct {
	FindText    string `json:"find_text"`
	ReplaceText string `json:"replace_text"`
	MatchCase   bool   `json:"match_case"`
}

// Operation is one edit operation in the stable wire contract. Exactly
// one variant must be set. The batch is applied remotely in the order
// given: insert and delete indices must be valid for sequential
// left-to-right application, which the remote service re-derives after
// each prior operation in the batch.
type Operation struct {
	InsertText         *InsertTextOp         `json:"insert_text,omitempty"`
	DeleteContentRange *DeleteContentRangeOp `json:"delete_content_range,omitempty"`
	ReplaceAllText     *ReplaceAllTextOp     `json:"replace_all_text,omitempty"`
}

// Describe returns a short human-readable summary of the operation,
// used in update result reports.
func (op Operation) Describe() string {
	switch {
	case op.InsertText != nil:
		return fmt.Sprintf("insert %q at index %d", truncate(op.InsertText.Text, 50), op.InsertText.Index)
	case op.DeleteContentRange != nil:
		return fmt.Sprintf("delete range [%d, %d)", op.DeleteContentRange.StartIndex, op.DeleteContentRange.EndIndex)
	case op.ReplaceAllText != nil:
		return fmt.Sprintf("replace %q with %q (match case: %t)",
			truncate(op.ReplaceAllText.FindText, 30),
			truncate(op.ReplaceAllText.ReplaceText, 30),
			op.ReplaceAllText.MatchCase)
	default:
		return "empty operation"
	}
}

// DecodeOperations decodes the raw "requests" tool argument into wire
// operations. The argument arrives as decoded JSON (a slice of maps),
// so it is round-tripped through encoding/json to get strict field
// mapping.
func DecodeOperations(raw interface{}) ([]Operation, error) {
	if raw == nil {
		return nil, &ValidationError{Pos: -1, Reason: "requests is required"}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, &ValidationError{Pos: -1, Reason: fmt.Sprintf("requests is not valid JSON: %v", err)}
	}

	var ops []Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, &ValidationError{Pos: -1, Reason: fmt.Sprintf("requests must be a list of operation objects: %v", err)}
	}

	return ops, nil
}

// truncate shortens s to at most max bytes, cutting on a rune boundary
// so the result stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// DocumentMetadata represents metadata about a Google Drive file.
type DocumentMetadata struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime"`
	Size         int64  `json:"size,omitempty"`
	Owners       []User `json:"owners,omitempty"`
}

// User represents a Google Drive user.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}
