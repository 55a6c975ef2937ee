package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alexanderramin/studylog/internal/period"
	"github.com/go-pdf/fpdf"
)

// Renderer turns an aggregated report into a document.
type Renderer interface {
	Render(w io.Writer, r *Report) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(w io.Writer, r *Report) error

func (f RendererFunc) Render(w io.Writer, r *Report) error { return f(w, r) }

// Extensioner is implemented by renderers whose output is not a PDF.
type Extensioner interface {
	Extension() string
}

// extensionOf returns the file extension a renderer produces, ".pdf" unless
// it says otherwise.
func extensionOf(r Renderer) string {
	if e, ok := r.(Extensioner); ok {
		return e.Extension()
	}
	return ".pdf"
}

// Slate-700 table header fill.
var headerFill = [3]int{74, 85, 104}

var (
	sessionHead   = []string{"Session Start", "Session End", "Study Time", "Break Time", "# Breaks"}
	sessionWidths = []float64{50, 50, 30, 30, 22}
	breakHead     = []string{"Session Date", "Break Start", "Break End", "Duration", "Reason"}
	breakWidths   = []float64{28, 38, 38, 24, 54}
)

// PDFRenderer renders reports as A4 PDF documents.
type PDFRenderer struct{}

// NewPDFRenderer returns a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (PDFRenderer) Render(w io.Writer, r *Report) error {
	if r == nil || len(r.SessionRows) == 0 {
		return ErrNoData
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr("Period: "+r.Period), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Total Study Time: "+period.FormatDuration(r.TotalStudySeconds), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Total Break Time: "+period.FormatDuration(r.TotalBreakSeconds), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	rows := make([][]string, 0, len(r.SessionRows))
	for _, s := range r.SessionRows {
		rows = append(rows, []string{s.Start, s.End, s.StudyTime, s.BreakTime, strconv.Itoa(s.BreakCount)})
	}
	writeTable(pdf, tr, "Session Details", sessionHead, sessionWidths, rows)

	if r.BreakRows != nil {
		pdf.Ln(8)
		rows = rows[:0]
		for _, b := range r.BreakRows {
			rows = append(rows, []string{b.SessionDate, b.Start, b.End, b.Duration, b.Reason})
		}
		writeTable(pdf, tr, "Break Details", breakHead, breakWidths, rows)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, title string, head []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(255, 255, 255)
	for i, h := range head {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, fitCell(pdf, tr(cell), widths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fitCell shortens text with an ellipsis until it fits in width millimetres.
// text is already translated to the single-byte core font encoding.
func fitCell(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}
