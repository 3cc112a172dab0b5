package entity

// Page is one single-page PDF buffer cut from the uploaded document.
type Page struct {
	Number int    `json:"number"` // 1-based position in the source document
	Data   []byte `json:"-"`
}

// Chunk is one unit of remote extraction work. Pages[0] is always the anchor
// (first) page of the document; Data holds all pages combined into one PDF.
type Chunk struct {
	Index int    `json:"index"`
	Pages []Page `json:"pages"`
	Data  []byte `json:"-"`
}

// PageNumbers lists the source page numbers carried by the chunk, anchor included.
func (c Chunk) PageNumbers() []int {
	out := make([]int, len(c.Pages))
	for i, p := range c.Pages {
		out[i] = p.Number
	}
	return out
}
