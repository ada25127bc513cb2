package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"ctrlreport/internal/onetrust"
)

// Page geometry in points, US Letter. Mirrors the layout contract of the
// report: fixed margins, fixed line height, 100-character wrap width.
const (
	pageMarginX = 40.0
	pageMarginY = 40.0
	lineHeight  = 14.0
	wrapWidth   = 100

	fontFamily      = "Helvetica"
	titleFontSize   = 14.0
	summaryFontSize = 12.0
	bodyFontSize    = 10.0

	titleGap   = 20.0
	summaryGap = 30.0
)

// separatorRule closes each record block
var separatorRule = strings.Repeat("-", 90)

// Renderer turns a flat control record list into a paginated PDF
// document. The creation date is fixed at construction so that the same
// record set always renders to identical bytes.
type Renderer struct {
	logger  *slog.Logger
	created time.Time
}

// NewRenderer creates a report renderer
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		logger:  logger.With(slog.String("component", "report_renderer")),
		created: time.Now(),
	}
}

// Render sorts the records, computes the summary and lays everything out
// into a multi-page document, returned as raw PDF bytes.
func (r *Renderer) Render(records []onetrust.ControlRecord) ([]byte, error) {
	doc := newDocument(r.created)
	c := newCanvas(doc)

	r.paint(c, records)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to assemble pdf: %w", err)
	}

	r.logger.Debug("report rendered",
		slog.Int("records", len(records)),
		slog.Int("pages", doc.PageCount()),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

// newDocument creates an empty one-page Letter document
func newDocument(created time.Time) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCreationDate(created)
	doc.SetModificationDate(created)
	doc.SetCatalogSort(true)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	return doc
}

// paint draws the title, the summary line and one body block per record
func (r *Renderer) paint(c *canvas, records []onetrust.ControlRecord) {
	sortByIdentifier(records)

	company := companyName(records)

	summary := "Average Score of Applicable Controls: " + notApplicable
	if avg, ok := averageScore(records, r.logger); ok {
		summary = fmt.Sprintf("Average Score of Applicable Controls: %.2f", avg)
	}

	c.setFont("B", titleFontSize)
	c.text(fmt.Sprintf("Controls Summary — %s", company))
	c.advance(titleGap)

	c.setFont("B", summaryFontSize)
	c.text(summary)
	c.advance(summaryGap)

	c.setFont("", bodyFontSize)

	for _, rec := range records {
		c.writeWrapped("Identifier    : " + orPlaceholder(rec.Control.Identifier))
		c.writeWrapped("Name          : " + orPlaceholder(rec.Control.Name))
		c.writeWrapped("Description   : " + orPlaceholder(rec.Control.Description))
		c.writeWrapped("Value         : " + displayValue(rec))
		c.writeWrapped("Effectiveness : " + orPlaceholder(rec.EffectivenessInfo.Name))
		c.writeWrapped(separatorRule)
	}
}

// orPlaceholder substitutes the placeholder for absent field values
func orPlaceholder(s string) string {
	if s == "" {
		return notApplicable
	}
	return s
}

// canvas is the layout engine: it owns the vertical cursor and the
// current page, breaking to a fresh page whenever the cursor reaches the
// bottom margin. The break check runs per physical line, so a wrapped
// block may span a page boundary.
type canvas struct {
	doc    *fpdf.Fpdf
	tr     func(string) string
	y      float64
	bottom float64
}

// newCanvas wraps a document whose first page is already allocated
func newCanvas(doc *fpdf.Fpdf) *canvas {
	_, pageHeight := doc.GetPageSize()
	return &canvas{
		doc:    doc,
		tr:     doc.UnicodeTranslatorFromDescriptor(""),
		y:      pageMarginY,
		bottom: pageHeight - pageMarginY,
	}
}

// setFont selects a font style and size for subsequent text
func (c *canvas) setFont(style string, size float64) {
	c.doc.SetFont(fontFamily, style, size)
}

// text draws a single line at the cursor without a page-break check
func (c *canvas) text(s string) {
	c.doc.Text(pageMarginX, c.y, c.tr(s))
}

// advance moves the cursor down without drawing
func (c *canvas) advance(dy float64) {
	c.y += dy
}

// writeLine draws one physical line, breaking to a new page first when
// the cursor has reached the bottom margin. A page break resets the font
// to the body font and the cursor to the top margin.
func (c *canvas) writeLine(s string) {
	if c.y >= c.bottom {
		c.doc.AddPage()
		c.setFont("", bodyFontSize)
		c.y = pageMarginY
	}
	c.text(s)
	c.advance(lineHeight)
}

// writeWrapped wraps a logical line at the wrap width and draws every
// resulting physical line
func (c *canvas) writeWrapped(s string) {
	for _, line := range wrapText(s, wrapWidth) {
		c.writeLine(line)
	}
}
