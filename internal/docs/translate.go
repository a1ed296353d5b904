package docs

import (
	docs "google.golang.org/api/docs/v1"
)

// Translate converts wire operations into the ordered request batch
// the Docs API expects. Order is preserved exactly: the remote service
// applies the batch sequentially and re-derives character indices
// after each operation, so reordering would invalidate the caller's
// index assumptions. The translator validates shape and ordering
// invariants only; document-length bounds are validated remotely.
func Translate(ops []Operation) ([]*docs.Request, error) {
	if len(ops) == 0 {
		return nil, &ValidationError{Pos: -1, Reason: "at least one operation is required"}
	}

	requests := make([]*docs.Request, 0, len(ops))
	for i, op := range ops {
		req, err := translateOperation(i, op)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}

func translateOperation(pos int, op Operation) (*docs.Request, error) {
	if err := validateVariantCount(pos, op); err != nil {
		return nil, err
	}

	switch {
	case op.InsertText != nil:
		ins := op.InsertText
		if ins.Index < 1 {
			return nil, &ValidationError{Pos: pos, Reason: "insert index must be at least 1 (1 = beginning of document body)"}
		}
		if ins.Text == "" {
			return nil, &ValidationError{Pos: pos, Reason: "insert text cannot be empty"}
		}
		return &docs.Request{
			InsertText: &docs.InsertTextRequest{
				Text:     ins.Text,
				Location: &docs.Location{Index: ins.Index},
			},
		}, nil

	case op.DeleteContentRange != nil:
		del := op.DeleteContentRange
		if del.StartIndex < 1 {
			return nil, &ValidationError{Pos: pos, Reason: "start index must be at least 1"}
		}
		if del.EndIndex <= del.StartIndex {
			return nil, &ValidationError{Pos: pos, Reason: "end index must be greater than start index"}
		}
		return &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{
					StartIndex: del.StartIndex,
					EndIndex:   del.EndIndex,
				},
			},
		}, nil

	case op.ReplaceAllText != nil:
		rep := op.ReplaceAllText
		if rep.FindText == "" {
			return nil, &ValidationError{Pos: pos, Reason: "find text cannot be empty"}
		}
		return &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{
					Text:      rep.FindText,
					MatchCase: rep.MatchCase,
				},
				ReplaceText: rep.ReplaceText,
			},
		}, nil
	}

	// Unreachable: validateVariantCount guarantees one variant is set.
	return nil, &ValidationError{Pos: pos, Reason: "operation has no variant set"}
}

// validateVariantCount enforces that exactly one operation variant is
// present. Zero variants usually means a typo in the operation key;
// multiple variants would make the intended order ambiguous.
func validateVariantCount(pos int, op Operation) error {
	count := 0
	if op.InsertText != nil {
		count++
	}
	if op.DeleteContentRange != nil {
		count++
	}
	if op.ReplaceAllText != nil {
		count++
	}

	switch count {
	case 0:
		return &ValidationError{Pos: pos, Reason: "operation must set one of insert_text, delete_content_range, replace_all_text"}
	case 1:
		return nil
	default:
		return &ValidationError{Pos: pos, Reason: "operation must set exactly one of insert_text, delete_content_range, replace_all_text"}
	}
}
