package parse

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

// Normalize renames record keys onto canonical field names. Keys that are
// already canonical keep their value; a variant is moved only when its
// canonical key is absent. Unknown keys pass through trimmed. Applying it
// twice gives the same result as applying it once.
func Normalize(recs []entity.Record, fields entity.FieldSet) []entity.Record {
	if len(recs) == 0 {
		return recs
	}
	out := make([]entity.Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, normalizeRecord(r, fields))
	}
	return out
}

func normalizeRecord(r entity.Record, fields entity.FieldSet) entity.Record {
	out := make(entity.Record, len(r))
	var variants []string

	for k, v := range r {
		key := strings.TrimSpace(k)
		canonical, ok := fields.Canonical(key)
		switch {
		case !ok:
			if _, taken := out[key]; !taken || key == k {
				out[key] = v
			}
		case canonical == key:
			out[key] = v
		default:
			variants = append(variants, k)
		}
	}

	// sorted so the winner among competing variants is stable
	sort.Strings(variants)
	for _, k := range variants {
		canonical, _ := fields.Canonical(k)
		if _, exists := out[canonical]; exists {
			continue
		}
		out[canonical] = r[k]
	}
	return out
}
