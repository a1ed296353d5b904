package docs

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTranslatePreservesOrder(t *testing.T) {
	ops := []Operation{
		{InsertText: &InsertTextOp{Text: "a", Index: 1}},
		{InsertText: &InsertTextOp{Text: "b", Index: 2}},
		{InsertText: &InsertTextOp{Text: "c", Index: 3}},
		{DeleteContentRange: &DeleteContentRangeOp{StartIndex: 1, EndIndex: 2}},
		{ReplaceAllText: &ReplaceAllTextOp{FindText: "b", ReplaceText: "z"}},
	}

	requests, err := Translate(ops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != len(ops) {
		t.Fatalf("got %d requests, want %d", len(requests), len(ops))
	}

	for i, text := range []string{"a", "b", "c"} {
		if requests[i].InsertText == nil || requests[i].InsertText.Text != text {
			t.Errorf("request %d: want insert %q, got %+v", i, text, requests[i])
		}
	}
	if requests[3].DeleteContentRange == nil {
		t.Errorf("request 3: want delete, got %+v", requests[3])
	}
	if requests[4].ReplaceAllText == nil {
		t.Errorf("request 4: want replace, got %+v", requests[4])
	}
}

func TestTranslateInsertText(t *testing.T) {
	requests, err := Translate([]Operation{
		{InsertText: &InsertTextOp{Text: "Hello", Index: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ins := requests[0].InsertText
	if ins.Text != "Hello" {
		t.Errorf("text = %q, want Hello", ins.Text)
	}
	if ins.Location == nil || ins.Location.Index != 1 {
		t.Errorf("location = %+v, want index 1", ins.Location)
	}
}

func TestTranslateReplaceAllText(t *testing.T) {
	requests, err := Translate([]Operation{
		{ReplaceAllText: &ReplaceAllTextOp{FindText: "Hi", ReplaceText: "Hello", MatchCase: true}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rep := requests[0].ReplaceAllText
	if rep.ContainsText == nil || rep.ContainsText.Text != "Hi" || !rep.ContainsText.MatchCase {
		t.Errorf("contains text = %+v, want Hi with match case", rep.ContainsText)
	}
	if rep.ReplaceText != "Hello" {
		t.Errorf("replace text = %q, want Hello", rep.ReplaceText)
	}
}

func TestTranslateValidation(t *testing.T) {
	tests := []struct {
		name    string
		ops     []Operation
		wantPos int
		reason  string
	}{
		{
			name:    "empty batch",
			ops:     nil,
			wantPos: -1,
			reason:  "at least one operation",
		},
		{
			name:    "zero length delete",
			ops:     []Operation{{DeleteContentRange: &DeleteContentRangeOp{StartIndex: 5, EndIndex: 5}}},
			wantPos: 0,
			reason:  "greater than start",
		},
		{
			name:    "inverted delete range",
			ops:     []Operation{{DeleteContentRange: &DeleteContentRangeOp{StartIndex: 5, EndIndex: 3}}},
			wantPos: 0,
			reason:  "greater than start",
		},
		{
			name:    "delete start below 1",
			ops:     []Operation{{DeleteContentRange: &DeleteContentRangeOp{StartIndex: 0, EndIndex: 3}}},
			wantPos: 0,
			reason:  "at least 1",
		},
		{
			name:    "insert at index zero",
			ops:     []Operation{{InsertText: &InsertTextOp{Text: "x", Index: 0}}},
			wantPos: 0,
			reason:  "at least 1",
		},
		{
			name:    "empty insert text",
			ops:     []Operation{{InsertText: &InsertTextOp{Text: "", Index: 1}}},
			wantPos: 0,
			reason:  "cannot be empty",
		},
		{
			name:    "empty find text",
			ops:     []Operation{{ReplaceAllText: &ReplaceAllTextOp{FindText: "", ReplaceText: "x"}}},
			wantPos: 0,
			reason:  "cannot be empty",
		},
		{
			name:    "no variant set",
			ops:     []Operation{{}},
			wantPos: 0,
			reason:  "must set one of",
		},
		{
			name: "two variants set",
			ops: []Operation{{
				InsertText:     &InsertTextOp{Text: "x", Index: 1},
				ReplaceAllText: &ReplaceAllTextOp{FindText: "a"},
			}},
			wantPos: 0,
			reason:  "exactly one",
		},
		{
			name: "position reported for later operation",
			ops: []Operation{
				{InsertText: &InsertTextOp{Text: "ok", Index: 1}},
				{InsertText: &InsertTextOp{Text: "", Index: 1}},
			},
			wantPos: 1,
			reason:  "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(tt.ops)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if verr.Pos != tt.wantPos {
				t.Errorf("pos = %d, want %d", verr.Pos, tt.wantPos)
			}
			if !strings.Contains(verr.Reason, tt.reason) {
				t.Errorf("reason %q does not contain %q", verr.Reason, tt.reason)
			}
		})
	}
}

func TestDecodeOperations(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{
			"insert_text": map[string]interface{}{"text": "Hi", "index": float64(1)},
		},
		map[string]interface{}{
			"replace_all_text": map[string]interface{}{"find_text": "Hi", "replace_text": "Hello"},
		},
	}

	ops, err := DecodeOperations(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("got %d operations, want 2", len(ops))
	}
	if ops[0].InsertText == nil || ops[0].InsertText.Text != "Hi" || ops[0].InsertText.Index != 1 {
		t.Errorf("insert not decoded: %+v", ops[0])
	}
	if ops[1].ReplaceAllText == nil || ops[1].ReplaceAllText.ReplaceText != "Hello" {
		t.Errorf("replace not decoded: %+v", ops[1])
	}

	if _, err := DecodeOperations(nil); err == nil {
		t.Error("expected error for nil requests")
	}
	if _, err := DecodeOperations("not a list"); err == nil {
		t.Error("expected error for non-list requests")
	}
}

func TestOperationDescribe(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{Operation{InsertText: &InsertTextOp{Text: "Hi", Index: 4}}, `insert "Hi" at index 4`},
		{Operation{DeleteContentRange: &DeleteContentRangeOp{StartIndex: 2, EndIndex: 9}}, "delete range [2, 9)"},
		{Operation{}, "empty operation"},
	}
	for _, tt := range tests {
		if got := tt.op.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"short", 50, "short"},
		{strings.Repeat("a", 51), 50, strings.Repeat("a", 50) + "..."},
		// "é" is two bytes; a byte-based cut at 5 would split it.
		{"abcdé rest of the text", 5, "abcd..."},
		{"日本語テキスト", 7, "日本..."},
	}
	for _, tt := range tests {
		got := truncate(tt.s, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8: %q", tt.s, tt.max, got)
		}
	}
}
