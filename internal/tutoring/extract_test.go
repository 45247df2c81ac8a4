package tutoring

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONArray_PureArray(t *testing.T) {
	raw := `[{"problem":"1+1","solution":"2"},{"problem":"2+2","solution":"4"}]`

	items := ExtractJSONArray(raw)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	var first problemItem
	if err := json.Unmarshal(items[0], &first); err != nil {
		t.Fatalf("unmarshal first item: %v", err)
	}
	if first.Problem != "1+1" || first.Solution != "2" {
		t.Fatalf("unexpected first item: %+v", first)
	}
}

func TestExtractJSONArray_ProseWrapped(t *testing.T) {
	raw := "Sure! Here are your problems:\n\n" +
		`[{"problem":"3*3","solution":"9"}]` +
		"\n\nLet me know if you want more."

	items := ExtractJSONArray(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestExtractJSONArray_CodeFence(t *testing.T) {
	raw := "```json\n[{\"problem\":\"5-2\",\"solution\":\"3\"}]\n```"

	items := ExtractJSONArray(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestExtractJSONArray_BracketsInsideStrings(t *testing.T) {
	// the ']' inside the string value must not close the array early
	raw := `noise [{"problem":"solve f[x] = x[1]","solution":"see notes ]"}] trailing`

	items := ExtractJSONArray(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	var item problemItem
	if err := json.Unmarshal(items[0], &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.Problem != "solve f[x] = x[1]" {
		t.Fatalf("unexpected problem text: %q", item.Problem)
	}
}

func TestExtractJSONArray_EscapedQuotes(t *testing.T) {
	raw := `[{"problem":"say \"hi\" [twice]","solution":"ok"}]`

	items := ExtractJSONArray(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestExtractJSONArray_NestedArrays(t *testing.T) {
	raw := `answer: [{"question":"pick","options":["a","b","c","d"]}]`

	items := ExtractJSONArray(raw)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestExtractJSONArray_Garbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here at all",
		"{\"problem\":\"an object, not an array\"}",
		"[{\"problem\":\"truncated\"",  // never closed
		"] [ mismatched",
	} {
		if items := ExtractJSONArray(raw); items != nil {
			t.Fatalf("ExtractJSONArray(%q) = %v, want nil", raw, items)
		}
	}
}

func TestExtractJSONArray_EmptyArray(t *testing.T) {
	items := ExtractJSONArray("here you go: []")
	if len(items) != 0 {
		t.Fatalf("expected 0 items, got %d", len(items))
	}
}
