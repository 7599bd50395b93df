package models

import "time"

const (
	ContractStatusActive    = "active"
	ContractStatusCompleted = "completed"
	ContractStatusOverdue   = "overdue"

	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusOverdue = "overdue"

	DefaultCompanyName = "Vehicle Finance Ltd"

	DateLayout = "2006-01-02"
)

type Customer struct {
	Name    string `json:"name" bson:"name" validate:"required"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
	Photo   string `json:"photo" bson:"photo"`
}

type Guarantor struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Phone    string `json:"phone" bson:"phone"`
	Address  string `json:"address" bson:"address"`
	Photo    string `json:"photo" bson:"photo"`
	Relation string `json:"relation" bson:"relation"`
}

type Vehicle struct {
	Make               string `json:"make" bson:"make"`
	Model              string `json:"model" bson:"model"`
	Year               int    `json:"year" bson:"year" validate:"gte=0"`
	RegistrationNumber string `json:"registration_number" bson:"registration_number"`
	VIN                string `json:"vin" bson:"vin"`
	Color              string `json:"color" bson:"color"`
}

type LoanDetails struct {
	LoanAmount        float64 `json:"loan_amount" bson:"loan_amount" validate:"gte=0"`
	InterestRate      float64 `json:"interest_rate" bson:"interest_rate" validate:"gte=0"`
	TenureMonths      int     `json:"tenure_months" bson:"tenure_months" validate:"gte=0"`
	EMIAmount         float64 `json:"emi_amount" bson:"emi_amount" validate:"gte=0"`
	TotalAmount       float64 `json:"total_amount" bson:"total_amount"`
	AmountPaid        float64 `json:"amount_paid" bson:"amount_paid"`
	OutstandingAmount float64 `json:"outstanding_amount" bson:"outstanding_amount"`
}

type PaymentScheduleEntry struct {
	InstallmentNumber int     `json:"installment_number" bson:"installment_number" validate:"gte=1"`
	DueDate           string  `json:"due_date" bson:"due_date" validate:"required"`
	Amount            float64 `json:"amount" bson:"amount"`
	Status            string  `json:"status" bson:"status" validate:"oneof=paid pending overdue"`
	PaidDate          *string `json:"paid_date" bson:"paid_date"`
}

// Contract is immutable once stored.
type Contract struct {
	ID              string                 `json:"id" bson:"id" validate:"required"`
	ContractNumber  string                 `json:"contract_number" bson:"contract_number" validate:"required"`
	ContractDate    string                 `json:"contract_date" bson:"contract_date" validate:"required"`
	Status          string                 `json:"status" bson:"status" validate:"oneof=active completed overdue"`
	CompanyName     string                 `json:"company_name,omitempty" bson:"company_name,omitempty"`
	Customer        Customer               `json:"customer" bson:"customer"`
	Guarantor       Guarantor              `json:"guarantor" bson:"guarantor"`
	Vehicle         Vehicle                `json:"vehicle" bson:"vehicle"`
	Loan            LoanDetails            `json:"loan" bson:"loan"`
	PaymentSchedule []PaymentScheduleEntry `json:"payment_schedule" bson:"payment_schedule" validate:"dive"`
	CreatedAt       time.Time              `json:"created_at" bson:"created_at"`
}

type ContractSummary struct {
	ID                  string  `json:"id"`
	ContractNumber      string  `json:"contract_number"`
	CustomerName        string  `json:"customer_name"`
	VehicleRegistration string  `json:"vehicle_registration"`
	CompanyName         string  `json:"company_name"`
	Status              string  `json:"status"`
	OutstandingAmount   float64 `json:"outstanding_amount"`
	EMIAmount           float64 `json:"emi_amount"`
	ContractDate        string  `json:"contract_date"`
}

// MobileContract is the mapper's output record: a Contract plus the flat
// fields the mobile list screen reads directly.
type MobileContract struct {
	Contract      `bson:",inline"`
	CustomerName  string `json:"customer_name" bson:"-"`
	VehicleNumber string `json:"vehicle_number" bson:"-"`
	FileNumber    string `json:"file_number" bson:"-"`
}

func NewMobileContract(c Contract, fileNumber string) MobileContract {
	if fileNumber == "" {
		fileNumber = c.ContractNumber
	}
	return MobileContract{
		Contract:      c,
		CustomerName:  c.Customer.Name,
		VehicleNumber: c.Vehicle.RegistrationNumber,
		FileNumber:    fileNumber,
	}
}

type Credential struct {
	Username       string    `json:"username" bson:"username"`
	HashedPassword string    `json:"-" bson:"hashed_password"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

const (
	RunStatusDone   = "done"
	RunStatusFailed = "failed"
)

// MapperRun is the audit record of one mapper export.
type MapperRun struct {
	ID         string    `json:"id" bson:"_id"`
	Profile    string    `json:"profile" bson:"profile"`
	Status     string    `json:"status" bson:"status"`
	Processed  int       `json:"processed" bson:"processed"`
	Skipped    int       `json:"skipped" bson:"skipped"`
	Warnings   []string  `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Files      []string  `json:"files,omitempty" bson:"files,omitempty"`
	Uploaded   []string  `json:"uploaded,omitempty" bson:"uploaded,omitempty"`
	Loaded     int       `json:"loaded" bson:"loaded"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt  time.Time `json:"started_at" bson:"started_at"`
	FinishedAt time.Time `json:"finished_at" bson:"finished_at"`
}
