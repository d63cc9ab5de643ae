package domain

// Align is the horizontal alignment of a table column.
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Column describes one column of a rendered table.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Align Align  `json:"align"`
}

// Row is one line of display strings, in column order.
type Row []string

// TableDescription is the engine-agnostic description of one report section.
// The dashboard draws it on screen and the document builder embeds it in exports.
type TableDescription struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Empty reports whether the table has no rows.
func (t TableDescription) Empty() bool {
	return len(t.Rows) == 0
}
