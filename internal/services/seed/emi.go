package seed

import (
	"math"

	"github.com/shopspring/decimal"

	"vehicle_finance/internal/models"
)

// CalculateEMI returns the equated monthly installment for a reducing
// balance loan, rounded to 2 decimals half away from zero.
func CalculateEMI(principal, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	r := annualRate / 12 / 100
	if r == 0 {
		return round2(principal / float64(months))
	}
	f := math.Pow(1+r, float64(months))
	return round2(principal * r * f / (f - 1))
}

// BuildLoan computes loan totals from the rounded EMI. Totals use decimal
// arithmetic so outstanding + paid == total holds on the stored values.
func BuildLoan(principal, annualRate float64, months, monthsElapsed int) models.LoanDetails {
	emi := CalculateEMI(principal, annualRate, months)

	e := decimal.NewFromFloat(emi)
	total := e.Mul(decimal.NewFromInt(int64(months))).Round(2)
	paid := e.Mul(decimal.NewFromInt(int64(monthsElapsed))).Round(2)
	outstanding := total.Sub(paid)

	return models.LoanDetails{
		LoanAmount:        principal,
		InterestRate:      round2(annualRate),
		TenureMonths:      months,
		EMIAmount:         emi,
		TotalAmount:       total.InexactFloat64(),
		AmountPaid:        paid.InexactFloat64(),
		OutstandingAmount: outstanding.InexactFloat64(),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
