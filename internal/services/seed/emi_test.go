package seed

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEMI(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		months    int
		want      float64
	}{
		{"golden", 100000, 12, 12, 8884.88},
		{"zero rate", 120000, 0, 12, 10000},
		{"zero rate rounds", 100000, 0, 3, 33333.33},
		{"no tenure", 100000, 12, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateEMI(tt.principal, tt.rate, tt.months))
		})
	}
}

func TestCalculateEMIMatchesFormula(t *testing.T) {
	r := 10.5 / 12 / 100
	f := math.Pow(1+r, 36)
	want := math.Round(500000*r*f/(f-1)*100) / 100

	assert.InDelta(t, want, CalculateEMI(500000, 10.5, 36), 0.005)
}

func TestBuildLoanInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		tenure := tenures[rnd.Intn(len(tenures))]
		amount := float64(200000 + rnd.Intn(800001))
		rate := 8.5 + rnd.Float64()*4
		elapsed := rnd.Intn(min(tenure, 24) + 1)

		loan := BuildLoan(amount, rate, tenure, elapsed)

		assert.InDelta(t, loan.TotalAmount, loan.OutstandingAmount+loan.AmountPaid, 1e-6)
		assert.InDelta(t, loan.EMIAmount*float64(tenure), loan.TotalAmount, 0.005)
		assert.GreaterOrEqual(t, loan.OutstandingAmount, 0.0)
	}
}
