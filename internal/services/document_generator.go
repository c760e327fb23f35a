package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/commerce"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var pdfTitles = map[models.DocumentKind]string{
	models.DocumentKindQuote:    "DEVIS",
	models.DocumentKindInvoice:  "FACTURE",
	models.DocumentKindDelivery: "BON DE LIVRAISON",
}

var secondaryDateLabels = map[models.DocumentKind]string{
	models.DocumentKindQuote:    "Valable jusqu'au",
	models.DocumentKindInvoice:  "Échéance",
	models.DocumentKindDelivery: "Livraison",
}

// DocumentGenerator maneja la generación de los PDF de documentos
type DocumentGenerator struct {
	logger *logrus.Logger
}

// NewDocumentGenerator crea una nueva instancia del generador
func NewDocumentGenerator(logger *logrus.Logger) *DocumentGenerator {
	return &DocumentGenerator{
		logger: logger,
	}
}

// GeneratePDF genera el PDF de un documento con sus líneas y totales
func (d *DocumentGenerator) GeneratePDF(doc *models.Document, customer *models.Customer) ([]byte, error) {
	totals, err := commerce.ComputeTotals(doc.Items)
	if err != nil {
		return nil, fmt.Errorf("error computing totals: %w", err)
	}
	totals = totals.Round(commerce.DisplayPlaces)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header con color de fondo
	pdf.SetFillColor(41, 128, 185)
	pdf.Rect(0, 0, 210, 40, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 24)
	pdf.Cell(190, 15, tr(pdfTitles[doc.Kind]))
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, fmt.Sprintf("N° %s", doc.DocumentNumber))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	dates := fmt.Sprintf("Date : %s", doc.IssueDate.Format("02/01/2006"))
	if doc.SecondaryDate != nil {
		dates += fmt.Sprintf("    %s : %s", secondaryDateLabels[doc.Kind], doc.SecondaryDate.Format("02/01/2006"))
	}
	pdf.Cell(190, 8, tr(dates))
	pdf.Ln(8)

	pdf.SetTextColor(44, 62, 80)
	pdf.SetFillColor(255, 255, 255)

	// Cliente
	pdf.SetY(50)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(95, 8, "CLIENT")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, line := range customerLines(customer) {
		pdf.Cell(95, 6, tr(line))
		pdf.Ln(6)
	}

	// Tabla de líneas
	pdf.SetY(100)
	pdf.SetFillColor(236, 240, 241)
	pdf.SetFont("Arial", "B", 10)

	colWidths := []float64{12, 68, 22, 28, 20, 40}
	colHeaders := []string{"#", "Désignation", "Qté", "P.U. HT", "TVA %", "Total TTC"}
	for i, header := range colHeaders {
		pdf.CellFormat(colWidths[i], 10, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	rowHeight := 8.0
	for i, item := range doc.Items {
		v, err := commerce.ValueItem(item)
		if err != nil {
			return nil, fmt.Errorf("error valuing line %d: %w", item.LineNo, err)
		}
		v = v.Rounded()

		// Alternar colores de fila
		if i%2 == 0 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		pdf.CellFormat(colWidths[0], rowHeight, fmt.Sprintf("%d", item.LineNo), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[1], rowHeight, tr(item.Description), "1", 0, "L", true, 0, "")
		pdf.CellFormat(colWidths[2], rowHeight, item.Quantity.String(), "1", 0, "R", true, 0, "")
		pdf.CellFormat(colWidths[3], rowHeight, money(item.UnitPrice), "1", 0, "R", true, 0, "")
		pdf.CellFormat(colWidths[4], rowHeight, item.TaxRatePercent.String(), "1", 0, "R", true, 0, "")
		pdf.CellFormat(colWidths[5], rowHeight, money(v.LineTotal), "1", 0, "R", true, 0, "")
		pdf.Ln(rowHeight)
	}

	// Totales
	totalY := pdf.GetY() + 10
	pdf.SetY(totalY)
	pdf.SetDrawColor(189, 195, 199)
	pdf.Line(120, totalY, 200, totalY)
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	totalRows := [][2]string{
		{"Total HT :", money(totals.Subtotal)},
		{"TVA :", money(totals.TaxTotal)},
	}
	if doc.Kind == models.DocumentKindInvoice && doc.PaidAmount != nil && doc.PaidAmount.IsPositive() {
		totalRows = append(totalRows, [2]string{"Déjà réglé :", money(*doc.PaidAmount)})
	}
	for _, row := range totalRows {
		pdf.SetX(120)
		pdf.Cell(50, 8, tr(row[0]))
		pdf.Cell(30, 8, row[1])
		pdf.Ln(8)
	}

	pdf.SetX(120)
	pdf.Cell(50, 12, "TOTAL TTC :")
	pdf.Cell(30, 12, money(totals.Total))
	pdf.Ln(12)

	if doc.Notes != nil && *doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(190, 5, tr(*doc.Notes), "", "L", false)
	}

	// Footer
	pdf.SetY(270)
	pdf.SetTextColor(149, 165, 166)
	pdf.SetFont("Arial", "", 8)
	pdf.Cell(190, 6, tr(fmt.Sprintf("Document généré le %s", time.Now().Format("02/01/2006 15:04:05"))))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"kind":        doc.Kind,
		"pdf_size":    buf.Len(),
	}).Debug("Document PDF rendered")

	return buf.Bytes(), nil
}

func customerLines(customer *models.Customer) []string {
	lines := []string{customer.CompanyName}
	optional := []struct {
		label string
		value *string
	}{
		{"", customer.Address},
		{"", customer.City},
		{"Email : ", customer.Email},
		{"Tél : ", customer.Phone},
		{"RC : ", customer.TaxIDs.RC},
		{"NIF : ", customer.TaxIDs.NIF},
		{"NIS : ", customer.TaxIDs.NIS},
		{"AI : ", customer.TaxIDs.AI},
	}
	for _, o := range optional {
		if o.value != nil && *o.value != "" {
			lines = append(lines, o.label+*o.value)
		}
	}
	return lines
}

func money(amount decimal.Decimal) string {
	return amount.StringFixed(commerce.DisplayPlaces)
}
