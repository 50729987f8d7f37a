package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"procure/internal/models"
)

// Places is the number of fractional digits amounts are rounded to.
const Places = 2

// Round rounds v half away from zero to the given number of places.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// LineTotal is qty * price rounded to Places.
func LineTotal(qty, price float64) float64 {
	return toFloat(decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(price)))
}

// CalculateTax applies a fractional tax rate (0.11 for 11%) to base.
func CalculateTax(base, rate float64) float64 {
	return toFloat(decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(rate)))
}

// CalculateWithholding applies a fractional withholding rate to base.
func CalculateWithholding(base, rate float64) float64 {
	return toFloat(decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(rate)))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(Places).Float64()
	return f
}

type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxAmount  float64 `json:"tax_amount"`
	GrandTotal float64 `json:"grand_total"`
}

// POTotals sums line totals and taxes each line at the rate of its TaxID.
// Lines with an unknown or empty TaxID are untaxed.
func POTotals(lines []models.POLine, taxRates map[string]float64) Totals {
	sub := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		amount := decimal.NewFromFloat(l.Quantity).Mul(decimal.NewFromFloat(l.Price))
		sub = sub.Add(amount)
		if rate, ok := taxRates[l.TaxID]; ok {
			tax = tax.Add(amount.Mul(decimal.NewFromFloat(rate)))
		}
	}
	return Totals{
		Subtotal:   toFloat(sub),
		TaxAmount:  toFloat(tax),
		GrandTotal: toFloat(sub.Add(tax)),
	}
}

type InvoiceTotals struct {
	Subtotal          float64 `json:"subtotal"`
	TaxAmount         float64 `json:"tax_amount"`
	WithholdingAmount float64 `json:"withholding_amount"`
	GrandTotal        float64 `json:"grand_total"`
}

// CalculateInvoiceTotals computes subtotal + tax - withholding over the
// invoice lines. Rates are fractions of the subtotal.
func CalculateInvoiceTotals(lines []models.InvoiceLine, taxRate, withholdingRate float64) InvoiceTotals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(decimal.NewFromFloat(l.Quantity).Mul(decimal.NewFromFloat(l.Price)))
	}
	tax := sub.Mul(decimal.NewFromFloat(taxRate))
	wht := sub.Mul(decimal.NewFromFloat(withholdingRate))
	return InvoiceTotals{
		Subtotal:          toFloat(sub),
		TaxAmount:         toFloat(tax),
		WithholdingAmount: toFloat(wht),
		GrandTotal:        toFloat(sub.Add(tax).Sub(wht)),
	}
}

// FormatIDR renders an amount as rupiah with Indonesian digit grouping and
// no fractional digits, e.g. "Rp 1.500.000".
func FormatIDR(amount float64) string {
	whole := decimal.NewFromFloat(amount).Round(0).IntPart()
	return message.NewPrinter(language.Indonesian).Sprintf("Rp %d", whole)
}

type BudgetSummary struct {
	CostCenterID   string  `json:"cost_center_id" db:"cost_center_id"`
	TotalBudget    float64 `json:"total_budget" db:"total_budget"`
	TotalCommitted float64 `json:"total_committed" db:"total_committed"`
	TotalActual    float64 `json:"total_actual" db:"total_actual"`
}

// Remaining is budget minus commitments and actuals.
func (b BudgetSummary) Remaining() float64 {
	return toFloat(decimal.NewFromFloat(b.TotalBudget).
		Sub(decimal.NewFromFloat(b.TotalCommitted)).
		Sub(decimal.NewFromFloat(b.TotalActual)))
}

type BudgetCheck struct {
	BudgetSummary
	RequestedAmount float64 `json:"requested_amount"`
	RemainingBudget float64 `json:"remaining_budget"`
	IsSufficient    bool    `json:"is_sufficient"`
}

// CheckBudget reports whether amount fits in the remaining budget.
func CheckBudget(amount float64, b BudgetSummary) BudgetCheck {
	remaining := b.Remaining()
	return BudgetCheck{
		BudgetSummary:   b,
		RequestedAmount: amount,
		RemainingBudget: remaining,
		IsSufficient:    amount <= remaining,
	}
}
