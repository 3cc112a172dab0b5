// Package merge combines per-chunk records into one ordered dataset.
package merge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

// Merge concatenates perChunk in chunk-index order, drops records whose
// values are all empty, and removes duplicates keeping the first occurrence.
// Two records are duplicates when they render identically: an empty value and
// an absent key are the same cell. Columns are the schema fields followed by any
// other keys in the order they first appear.
func Merge(perChunk [][]entity.Record, fields entity.FieldSet) *entity.Dataset {
	ds := &entity.Dataset{Columns: fields.Names()}

	known := make(map[string]struct{}, len(ds.Columns))
	for _, c := range ds.Columns {
		known[c] = struct{}{}
	}
	seen := map[string]struct{}{}

	for _, recs := range perChunk {
		for _, r := range recs {
			if len(r) == 0 || r.Blank() {
				continue
			}
			k := fingerprint(r)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			ds.Records = append(ds.Records, r.Clone())

			var extra []string
			for key := range r {
				if _, ok := known[key]; !ok {
					extra = append(extra, key)
				}
			}
			sort.Strings(extra)
			for _, key := range extra {
				known[key] = struct{}{}
				ds.Columns = append(ds.Columns, key)
			}
		}
	}
	return ds
}

// fingerprint is a canonical encoding of r's non-empty cells, sorted by key.
func fingerprint(r entity.Record) string {
	keys := make([]string, 0, len(r))
	for k, v := range r {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		writeField(&b, k)
		writeField(&b, r[k])
	}
	return b.String()
}

// writeField length-prefixes s so no value can spoof a boundary.
func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
