package entity

import "strings"

// Field is a canonical schema column plus the normalized spellings the remote
// model is known to use for it.
type Field struct {
	Name     string   `json:"name"`
	Variants []string `json:"variants,omitempty"`
}

// NewField derives the lower-cased, underscore-joined and space-stripped variants of name.
func NewField(name string) Field {
	n := strings.TrimSpace(name)
	lower := strings.ToLower(n)
	seen := map[string]struct{}{}
	var variants []string
	for _, v := range []string{lower, strings.ReplaceAll(lower, " ", "_"), strings.ReplaceAll(lower, " ", "")} {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}
	return Field{Name: n, Variants: variants}
}

// FieldSet is the ordered canonical schema for one run. It is built once and
// only read afterwards, so it is safe to share across goroutines.
type FieldSet struct {
	fields    []Field
	byVariant map[string]string
	bySquash  map[string]string
}

// NewFieldSet builds a FieldSet from column names, skipping blanks and
// repeated names. The first spelling of a colliding variant wins.
func NewFieldSet(names []string) FieldSet {
	s := FieldSet{
		byVariant: make(map[string]string, len(names)*3),
		bySquash:  make(map[string]string, len(names)),
	}
	seen := map[string]struct{}{}
	for _, name := range names {
		f := NewField(name)
		if f.Name == "" {
			continue
		}
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		s.fields = append(s.fields, f)
		for _, v := range f.Variants {
			if _, taken := s.byVariant[v]; !taken {
				s.byVariant[v] = f.Name
			}
		}
		if sq := squash(f.Name); sq != "" {
			if _, taken := s.bySquash[sq]; !taken {
				s.bySquash[sq] = f.Name
			}
		}
	}
	return s
}

func (s FieldSet) Fields() []Field { return append([]Field(nil), s.fields...) }

func (s FieldSet) Len() int { return len(s.fields) }

// Names returns the canonical names in schema order.
func (s FieldSet) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Joined is the comma-separated field list sent as specified_fields.
func (s FieldSet) Joined() string {
	return strings.Join(s.Names(), ", ")
}

// Canonical maps a key as written by the remote model to its canonical field
// name. Canonical names map to themselves.
func (s FieldSet) Canonical(key string) (string, bool) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", false
	}
	for _, f := range s.fields {
		if f.Name == k {
			return f.Name, true
		}
	}
	if name, ok := s.byVariant[strings.ToLower(k)]; ok {
		return name, true
	}
	if name, ok := s.bySquash[squash(k)]; ok {
		return name, true
	}
	return "", false
}

func squash(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '\t', '\n':
			return -1
		}
		return r
	}, s)
}
