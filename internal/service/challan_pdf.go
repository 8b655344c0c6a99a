package service

import (
	"fmt"
	"io"
	"strings"

	"salesdesk/internal/model"
	"salesdesk/pkg/billing"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// codeLabel turns an enum code such as JOB_WORK into "Job Work".
func codeLabel(code string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(code), "_", " "))
}

// writeChallanPDF lays out an A4 delivery challan.
func writeChallanPDF(c *model.DeliveryChallan, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Delivery Challan "+c.ChallanNo, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "DELIVERY CHALLAN", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	customer := ""
	address := ""
	if c.Customer != nil {
		customer = c.Customer.Name
		if c.Customer.CompanyName != "" {
			customer += " (" + c.Customer.CompanyName + ")"
		}
		address = c.Customer.ShippingAddress
		if address == "" {
			address = c.Customer.BillingAddress
		}
	}
	header := [][2]string{
		{"Challan No", c.ChallanNo},
		{"Challan Date", c.ChallanDate.Format("02/01/2006")},
		{"Reference", c.ReferenceNo},
		{"Challan Type", codeLabel(c.ChallanType)},
		{"Deliver To", customer},
	}
	for _, h := range header {
		pdf.CellFormat(35, 6, h[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, h[1], "", 1, "L", false, 0, "")
	}
	if address != "" {
		pdf.CellFormat(35, 6, "", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 5, address, "", "L", false)
	}
	pdf.Ln(4)

	widths := []float64{10, 80, 25, 25, 20, 30}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, title := range []string{"#", "Item & Description", "Qty", "Rate", "Disc %", "Amount"} {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range c.Items {
		cells := []string{
			fmt.Sprintf("%d", it.Position),
			truncate(it.Description, 45),
			it.Quantity.String(),
			billing.FormatAmount(it.Rate),
			it.DiscountPercent.String(),
			billing.FormatAmount(it.Amount),
		}
		for i, v := range cells {
			align := "R"
			if i == 1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)

	totals := [][2]string{{"Sub Total", billing.FormatAmount(c.Subtotal)}}
	if c.TaxKind != "" {
		label := fmt.Sprintf("%s (%s%%)", c.TaxKind, c.TaxRate.String())
		amount := billing.FormatAmount(c.TaxAmount)
		if c.TaxKind == model.TaxKindTDS {
			amount = "-" + amount
		}
		totals = append(totals, [2]string{label, amount})
	}
	if !c.Adjustment.IsZero() {
		totals = append(totals, [2]string{"Adjustment", billing.FormatAmount(c.Adjustment)})
	}
	totals = append(totals, [2]string{"Total", billing.FormatAmount(c.GrandTotal)})
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(140, 6, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, t[1], "", 1, "R", false, 0, "")
	}

	if notes := strings.TrimSpace(c.CustomerNotes); notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Customer Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, notes, "", "L", false)
	}
	if terms := strings.TrimSpace(c.TermsAndConditions); terms != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Terms & Conditions", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, terms, "", "L", false)
	}

	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
