package entity

import "strings"

// Record is one extracted row: canonical field name -> raw string value.
// Typed conversion is left to consumers.
type Record map[string]string

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Blank reports whether every value is empty after trimming.
func (r Record) Blank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Dataset is the merged, deduplicated output of one run.
type Dataset struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Row returns record i laid out in column order; missing values are empty.
func (d *Dataset) Row(i int) []string {
	rec := d.Records[i]
	row := make([]string, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = rec[c]
	}
	return row
}
