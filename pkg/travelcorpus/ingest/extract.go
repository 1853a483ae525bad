package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extractor pulls the prompt text and an optional upstream category out of
// one dataset row. An empty text means the row is skipped.
type Extractor func(row map[string]any) (text, category string)

var humanRoles = map[string]bool{
	"human":       true,
	"user":        true,
	"prompter":    true,
	"instruction": true,
}

// InstructionExtractor reads the first non-empty field of fields and takes
// the category from categoryField when set.
func InstructionExtractor(categoryField string, fields ...string) Extractor {
	return func(row map[string]any) (string, string) {
		cat := ""
		if categoryField != "" {
			cat = stringField(row, categoryField)
		}
		for _, f := range fields {
			if s := strings.TrimSpace(stringField(row, f)); s != "" {
				return s, cat
			}
		}
		return "", cat
	}
}

// ConversationExtractor joins the human turns of a "conversations" field.
// Rows without human turns fall back to "text" and then "instruction".
func ConversationExtractor(row map[string]any) (string, string) {
	turns := humanTurns(row["conversations"])
	if len(turns) > 0 {
		return strings.Join(turns, "\n"), ""
	}
	for _, f := range []string{"text", "instruction"} {
		if s := strings.TrimSpace(stringField(row, f)); s != "" {
			return s, ""
		}
	}
	return "", ""
}

// AlternatingExtractor reads a list of utterances in which the human speaks
// first and turns alternate, as in UltraChat's "data" field.
func AlternatingExtractor(field string) Extractor {
	return func(row map[string]any) (string, string) {
		list, ok := row[field].([]any)
		if !ok {
			return ConversationExtractor(row)
		}
		var turns []string
		for i := 0; i < len(list); i += 2 {
			if s, ok := list[i].(string); ok && strings.TrimSpace(s) != "" {
				turns = append(turns, s)
			}
		}
		return strings.Join(turns, "\n"), ""
	}
}

// AutoExtractor handles rows of unknown shape, such as local JSONL exports.
func AutoExtractor(row map[string]any) (string, string) {
	if _, ok := row["conversations"]; ok {
		if text, _ := ConversationExtractor(row); text != "" {
			return text, stringField(row, "category")
		}
	}
	return InstructionExtractor("category", "text", "instruction", "prompt", "question")(row)
}

// humanTurns accepts the three shapes seen in the wild: a list of turn
// objects, a columnar object of parallel arrays, or either one encoded as a
// JSON string.
func humanTurns(v any) []string {
	if s, ok := v.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil
		}
		v = decoded
	}

	var out []string
	switch convs := v.(type) {
	case []any:
		for _, item := range convs {
			turn, ok := item.(map[string]any)
			if !ok {
				continue
			}
			role := firstString(turn, "from", "role", "speaker")
			val := firstString(turn, "value", "content", "text")
			if humanRoles[strings.ToLower(role)] && val != "" {
				out = append(out, val)
			}
		}
	case map[string]any:
		roles, ok1 := convs["from"].([]any)
		values, ok2 := convs["value"].([]any)
		if !ok1 || !ok2 {
			return nil
		}
		for i := 0; i < len(roles) && i < len(values); i++ {
			role := fmt.Sprint(roles[i])
			val, _ := values[i].(string)
			if humanRoles[strings.ToLower(role)] && val != "" {
				out = append(out, val)
			}
		}
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
