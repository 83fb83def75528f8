package reports

import (
	"bytes"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/phpdave11/gofpdf"

	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/money"
)

// StatementPDF renders the caller's transactions in the range as a
// downloadable account statement.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	start, end, err := dateRange(c)
	if err != nil {
		return err
	}

	entries, err := h.Q.StatementEntries(c.Context(), caller.Scope(), start, end)
	if err != nil {
		return err
	}

	var totalIncome, totalExpense int64
	for _, e := range entries {
		if ledger.TxType(e.Type) == ledger.Income {
			totalIncome += e.Amount
		} else {
			totalExpense += e.Amount
		}
	}

	from := start.Format(dateLayout)
	to := end.Format(dateLayout)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+from+" to "+to)
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 62}
	pdf.CellFormat(sumW[0], 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Expenses", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Net", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, money.FormatCents(totalIncome), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, money.FormatCents(totalExpense), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, money.FormatCents(totalIncome-totalExpense), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	colW := []float64{20, 24, 80, 40, 26}
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colW[0], 8, "TYPE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[2], 8, "DESCRIPTION", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "ACCOUNT", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[4], 8, "AMOUNT", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	header()
	pdf.SetTextColor(30, 30, 30)

	for _, e := range entries {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}

		amount := e.Amount
		if ledger.TxType(e.Type) == ledger.Expense {
			amount = -amount
		}

		pdf.CellFormat(colW[0], 8, strings.ToUpper(e.Type), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, e.OccurredOn.Format(dateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 8, trimTo(e.Description, 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 8, trimTo(e.Account, 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[4], 8, money.FormatCents(amount), "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+time.Now().UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return err
	}

	filename := "statement-" + from + "-to-" + to + ".pdf"
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// trimTo truncates to max runes, not bytes, so multibyte descriptions
// never get split mid-rune.
func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
