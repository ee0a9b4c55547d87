package export

// Table is an ordered tabular report ready for rendering.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Formats supported by the exporters.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Renderer turns a table into downloadable bytes.
type Renderer interface {
	Render(table Table) ([]byte, error)
	ContentType() string
	Extension() string
}
