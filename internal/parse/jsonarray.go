package parse

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
	"github.com/joseph-ayodele/statement-extractor/internal/validate"
)

var (
	reHTMLComment = regexp.MustCompile(`(?s)<!--.*?-->`)

	arrayOfObjects = validate.MustCompile("array-of-objects.json", map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "object"},
	})
)

// jsonArrays scans content for balanced [...] candidates and keeps the ones
// that decode to arrays of objects. A rejected candidate is rescanned from
// just after its opening bracket, so a valid array nested in or following
// malformed text is still found.
func jsonArrays(content string) ([]entity.Record, int) {
	text := reHTMLComment.ReplaceAllString(content, "")

	var (
		recs    []entity.Record
		skipped int
		closes  = map[int]int{}
	)
	for i := 0; i < len(text); {
		k := strings.IndexByte(text[i:], '[')
		if k < 0 {
			break
		}
		start := i + k
		end, ok := closes[start]
		if !ok {
			matchBrackets(text, start, closes)
			end = closes[start]
		}
		if end < 0 {
			i = start + 1
			continue
		}
		objs, err := decodeObjects(text[start : end+1])
		if err != nil {
			skipped++
			i = start + 1
			continue
		}
		for _, o := range objs {
			recs = append(recs, toRecord(o))
		}
		i = end + 1
	}
	return recs, skipped
}

// matchBrackets walks s from the '[' at start and records in closes, for every
// '[' outside double-quoted strings, the index of its closing ']' or -1 when
// it is never closed. Later candidates reached in the same walk are then
// answered without walking again.
func matchBrackets(s string, start int, closes map[int]int) {
	var open []int
	inString := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			open = append(open, i)
		case ']':
			if n := len(open); n > 0 {
				closes[open[n-1]] = i
				open = open[:n-1]
			}
		}
	}
	for _, o := range open {
		closes[o] = -1
	}
}

func decodeObjects(candidate string) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := validate.Value(arrayOfObjects, v); err != nil {
		return nil, err
	}
	items := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]any))
	}
	return out, nil
}
