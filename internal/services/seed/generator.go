package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"vehicle_finance/internal/models"
	"vehicle_finance/internal/utils"
)

var (
	customerNames = []string{"Rajesh Kumar", "Priya Sharma", "Amit Patel", "Sneha Reddy", "Vikram Singh",
		"Anita Desai", "Rahul Verma", "Deepika Rao", "Suresh Nair", "Kavita Joshi"}
	guarantorNames = []string{"Ramesh Kumar", "Sunita Sharma", "Prakash Patel", "Lakshmi Reddy", "Harpreet Singh",
		"Manjula Desai", "Ravi Verma", "Padma Rao", "Krishna Nair", "Meena Joshi"}
	vehicleMakes  = []string{"Maruti Suzuki", "Hyundai", "Tata", "Mahindra", "Honda"}
	vehicleModels = []string{"Swift", "i20", "Nexon", "XUV300", "City", "Venue", "Altroz", "Scorpio"}
	colors        = []string{"White", "Silver", "Black", "Red", "Blue"}
	relations     = []string{"Father", "Brother", "Uncle", "Friend", "Colleague"}
	tenures       = []int{12, 24, 36, 48, 60}
)

const (
	DefaultCount        = 10
	scheduleStepDays    = 30
	overdueProbability  = 0.2
	maxElapsedMonths    = 24
	customerPhotoColor  = "#4A90E2"
	guarantorPhotoColor = "#E94B3C"
)

// Generator produces synthetic contracts. Names are deterministic by index;
// everything else comes from Rand.
type Generator struct {
	Rand     *rand.Rand
	BaseDate time.Time
	Count    int
	Now      func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		Rand:     rand.New(rand.NewSource(seed)),
		BaseDate: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		Count:    DefaultCount,
		Now:      time.Now,
	}
}

func (g *Generator) Generate() []models.Contract {
	n := g.Count
	if n <= 0 {
		n = DefaultCount
	}
	out := make([]models.Contract, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.contract(i))
	}
	return out
}

func (g *Generator) contract(i int) models.Contract {
	r := g.Rand
	contractDate := g.BaseDate.AddDate(0, 0, i*scheduleStepDays)
	tenure := tenures[r.Intn(len(tenures))]
	amount := float64(200000 + r.Intn(1000000-200000+1))
	rate := 8.5 + r.Float64()*4

	elapsed := r.Intn(min(tenure, maxElapsedMonths) + 1)

	status := models.ContractStatusActive
	switch {
	case elapsed >= tenure:
		status = models.ContractStatusCompleted
	case elapsed > 0 && r.Float64() < overdueProbability:
		status = models.ContractStatusOverdue
	}

	loan := BuildLoan(amount, rate, tenure, elapsed)

	customer, guarantor := pick(customerNames, i), pick(guarantorNames, i)
	return models.Contract{
		ID:             uuid.NewString(),
		ContractNumber: fmt.Sprintf("VF%d%04d", 2023, i+1),
		ContractDate:   contractDate.Format(models.DateLayout),
		Status:         status,
		Customer: models.Customer{
			Name:    customer,
			Phone:   g.phone(),
			Address: fmt.Sprintf("%d Main Street, City-%d", 1+r.Intn(999), 100000+r.Intn(900000)),
			Photo:   utils.PlaceholderPhoto(customerPhotoColor, utils.Initials(customer)),
		},
		Guarantor: models.Guarantor{
			Name:     guarantor,
			Phone:    g.phone(),
			Address:  fmt.Sprintf("%d Park Avenue, City-%d", 1+r.Intn(999), 100000+r.Intn(900000)),
			Photo:    utils.PlaceholderPhoto(guarantorPhotoColor, utils.Initials(guarantor)),
			Relation: relations[i%len(relations)],
		},
		Vehicle: models.Vehicle{
			Make:  vehicleMakes[r.Intn(len(vehicleMakes))],
			Model: vehicleModels[r.Intn(len(vehicleModels))],
			Year:  2020 + r.Intn(5),
			RegistrationNumber: fmt.Sprintf("DL%d%c%c%d",
				10+r.Intn(90), 'A'+rune(r.Intn(26)), 'A'+rune(r.Intn(26)), 1000+r.Intn(9000)),
			VIN:   fmt.Sprintf("MA3%d%d", 10000000+r.Intn(90000000), 100000+r.Intn(900000)),
			Color: colors[r.Intn(len(colors))],
		},
		Loan:            loan,
		PaymentSchedule: Schedule(contractDate, tenure, elapsed, loan.EMIAmount, status == models.ContractStatusOverdue),
		CreatedAt:       g.now(),
	}
}

// Schedule lays out tenure installments every 30 days from start. The first
// elapsed installments are paid on their due date; when overdue is set the
// next one is overdue.
func Schedule(start time.Time, tenure, elapsed int, emi float64, overdue bool) []models.PaymentScheduleEntry {
	out := make([]models.PaymentScheduleEntry, 0, tenure)
	for month := 1; month <= tenure; month++ {
		due := start.AddDate(0, 0, month*scheduleStepDays).Format(models.DateLayout)
		e := models.PaymentScheduleEntry{
			InstallmentNumber: month,
			DueDate:           due,
			Amount:            emi,
			Status:            models.PaymentStatusPending,
		}
		switch {
		case month <= elapsed:
			paid := due
			e.Status = models.PaymentStatusPaid
			e.PaidDate = &paid
		case month == elapsed+1 && overdue:
			e.Status = models.PaymentStatusOverdue
		}
		out = append(out, e)
	}
	return out
}

func (g *Generator) phone() string {
	return fmt.Sprintf("+91 %d", 7000000000+g.Rand.Int63n(3000000000))
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now().UTC()
	}
	return g.Now().UTC()
}

func pick(names []string, i int) string {
	return names[i%len(names)]
}
