package review

import (
	"bytes"
	"fmt"
	"strings"

	"menu-photo-services/internal/photoassign"

	"github.com/phpdave11/gofpdf"
)

type Options struct {
	Title    string
	RunID    string
	PhotoSet string
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "R"},
	{"Item", 32, "L"},
	{"Name", 62, "L"},
	{"Bucket", 28, "L"},
	{"Photo", 26, "L"},
	{"Source", 22, "L"},
}

// RenderPDF lays out an assignment for sign-off before the statement is
// applied. Reused photos are highlighted.
func RenderPDF(result photoassign.Result, opts Options) ([]byte, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Menu photo assignment"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if opts.RunID != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Run: %s", opts.RunID), "", 1, "L", false, 0, "")
	}
	if opts.PhotoSet != "" {
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Photo set: %s", opts.PhotoSet)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Items: %d   Distinct photos: %d   Reuse warnings: %d",
		len(result.Assignments), result.Distinct(), len(result.Warnings)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range columns {
			pdf.CellFormat(c.width, 6, c.title, "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	for _, a := range result.Assignments {
		fill := a.Source == photoassign.SourceReuse
		pdf.SetFillColor(255, 228, 196)
		values := []string{
			fmt.Sprintf("%d", a.Position+1),
			a.Item.ID,
			a.Item.Name,
			a.Bucket,
			a.Identifier,
			string(a.Source),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 5, tr(truncate(pdf, values[i], c.width-2)), "1", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(result.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Warnings", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		for _, w := range result.Warnings {
			pdf.MultiCell(0, 4, tr(w.Message), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render review pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(pdf *gofpdf.Fpdf, value string, width float64) string {
	if pdf.GetStringWidth(value) <= width {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
