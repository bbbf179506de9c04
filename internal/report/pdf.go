package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres.
const (
	marginLeft   = 14.0
	marginTop    = 14.0
	scoresIndent = 20.0
	textWidth    = 180.0
)

// PDFExporter renders reports as A4 PDF documents with the core Helvetica
// font, translated to cp1252 so French accents print.
type PDFExporter struct {
	// Compress toggles stream compression. Disabled in tests to inspect
	// the output.
	Compress bool
}

// NewPDFExporter returns an exporter with compression enabled.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{Compress: true}
}

func (e *PDFExporter) Export(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.Compress)
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(true, marginTop)
	pdf.SetTitle(Heading(r.Title), true)
	pdf.SetAuthor(r.Profile.FullName(), true)
	pdf.SetCreator("lectura", false)
	if !r.Date.IsZero() {
		pdf.SetCreationDate(r.Date)
		pdf.SetModificationDate(r.Date)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(pageWidth-2*marginLeft, 8, tr(Heading(r.Title)), "", "C", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, tr("Élève : "+r.Profile.FullName()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Date : "+FormatDate(r.Date)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("Résultats par catégorie :"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for _, s := range r.Scores {
		pdf.SetX(scoresIndent)
		pdf.CellFormat(0, 7, tr(ScoreLine(s)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("Synthèse des acquis et des difficultés :"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(textWidth, 5, tr(StripMarkdown(r.Narrative)), "", "L", false)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
