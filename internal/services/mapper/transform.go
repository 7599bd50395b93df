package mapper

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/utils"
)

// record is one contract row with the rows resolved around it, keyed by
// entity name.
type record struct {
	rows         map[string]Row
	installments []Row
}

func (r record) key(p *Profile) string {
	return r.rows[EntityContract].String(p.Contracts.Key)
}

// resolve applies rule to row. Without a separator the first non-blank
// column wins; with one, all non-blank columns are joined.
func resolve(rule FieldRule, row Row) string {
	if rule.Sep == "" {
		for _, c := range rule.Columns {
			if v := row.String(c); v != "" {
				return v
			}
		}
		return rule.Default
	}
	parts := make([]string, 0, len(rule.Columns))
	for _, c := range rule.Columns {
		if v := row.String(c); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return rule.Default
	}
	return strings.Join(parts, rule.Sep)
}

func (p *Profile) value(entity, field string, rows map[string]Row) string {
	rule, ok := p.Fields[entity][field]
	if !ok {
		return ""
	}
	return resolve(rule, rows[p.sourceFor(entity, rule)])
}

func (p *Profile) has(entity, field string) bool {
	_, ok := p.Fields[entity][field]
	return ok
}

// mapStatus looks raw up case-insensitively in m, falling back to the "*"
// entry. An empty map accepts values already in allowed.
func mapStatus(m map[string]string, raw string, allowed ...string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if len(m) == 0 {
		if contains(allowed, key) {
			return key, nil
		}
		return "", apperr.Validation(fmt.Sprintf("unknown status %q", raw))
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return strings.ToLower(v), nil
		}
	}
	if v, ok := m["*"]; ok {
		return strings.ToLower(v), nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown status %q", raw))
}

type builder struct {
	p      *Profile
	photos *PhotoLoader
	now    time.Time
	warn   func(format string, args ...any)
}

// build converts one record into a MobileContract. Errors are per-record;
// non-fatal problems are reported through warn.
func (b *builder) build(ctx context.Context, r record) (models.MobileContract, error) {
	p, rows := b.p, r.rows
	key := r.key(p)

	c := models.Contract{
		ID:             p.value(EntityContract, "id", rows),
		ContractNumber: p.value(EntityContract, "contract_number", rows),
		CompanyName:    p.value(EntityContract, "company_name", rows),
		CreatedAt:      b.now.UTC(),
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CompanyName == "" {
		c.CompanyName = p.CompanyName
	}
	if c.CompanyName == "" {
		c.CompanyName = models.DefaultCompanyName
	}

	date, err := parseDate(p.value(EntityContract, "contract_date", rows))
	if err != nil {
		return models.MobileContract{}, apperr.Validation("contract_date: " + err.Error())
	}
	if date == "" {
		date = b.now.Format(models.DateLayout)
	}
	c.ContractDate = date

	status, err := mapStatus(p.StatusMap, p.value(EntityContract, "status", rows),
		models.ContractStatusActive, models.ContractStatusCompleted, models.ContractStatusOverdue)
	if err != nil {
		return models.MobileContract{}, err
	}
	c.Status = status

	c.Customer = models.Customer{
		Name:    p.value(EntityCustomer, "name", rows),
		Phone:   p.value(EntityCustomer, "phone", rows),
		Address: p.value(EntityCustomer, "address", rows),
		Photo:   b.photo(ctx, key, "customer", p.value(EntityCustomer, "photo", rows)),
	}
	c.Guarantor = models.Guarantor{
		Name:     p.value(EntityGuarantor, "name", rows),
		Phone:    p.value(EntityGuarantor, "phone", rows),
		Address:  p.value(EntityGuarantor, "address", rows),
		Relation: p.value(EntityGuarantor, "relation", rows),
		Photo:    b.photo(ctx, key, "guarantor", p.value(EntityGuarantor, "photo", rows)),
	}

	year, err := parseInt(p.value(EntityVehicle, "year", rows))
	if err != nil {
		b.warn("%s: vehicle year: %v", key, err)
		year = 0
	}
	c.Vehicle = models.Vehicle{
		Make:               p.value(EntityVehicle, "make", rows),
		Model:              p.value(EntityVehicle, "model", rows),
		Year:               year,
		RegistrationNumber: p.value(EntityVehicle, "registration_number", rows),
		VIN:                p.value(EntityVehicle, "vin", rows),
		Color:              p.value(EntityVehicle, "color", rows),
	}

	loan, err := b.loan(rows)
	if err != nil {
		return models.MobileContract{}, err
	}

	schedule, err := b.schedule(rows, r.installments)
	if err != nil {
		return models.MobileContract{}, err
	}
	c.PaymentSchedule = schedule

	if loan.TenureMonths == 0 {
		loan.TenureMonths = len(schedule)
	}
	if loan.EMIAmount == 0 && len(schedule) > 0 {
		loan.EMIAmount = schedule[0].Amount
	}
	c.Loan = loan

	return models.NewMobileContract(c, p.value(EntityContract, "file_number", rows)), nil
}

func (b *builder) photo(ctx context.Context, key, who, ref string) string {
	uri, err := b.photos.Load(ctx, ref)
	if err != nil {
		b.warn("%s: %s %v", key, who, err)
		return utils.NoPhoto()
	}
	return uri
}

func (b *builder) loan(rows map[string]Row) (models.LoanDetails, error) {
	var l models.LoanDetails
	floats := []struct {
		field string
		dst   *float64
	}{
		{"loan_amount", &l.LoanAmount},
		{"interest_rate", &l.InterestRate},
		{"emi_amount", &l.EMIAmount},
		{"total_amount", &l.TotalAmount},
		{"amount_paid", &l.AmountPaid},
		{"outstanding_amount", &l.OutstandingAmount},
	}
	for _, f := range floats {
		v, err := parseFloat(b.p.value(EntityLoan, f.field, rows))
		if err != nil {
			return l, apperr.Validation(f.field + ": " + err.Error())
		}
		*f.dst = v
	}
	n, err := parseInt(b.p.value(EntityLoan, "tenure_months", rows))
	if err != nil {
		return l, apperr.Validation("tenure_months: " + err.Error())
	}
	l.TenureMonths = n
	return l, nil
}

func (b *builder) schedule(rows map[string]Row, inst []Row) ([]models.PaymentScheduleEntry, error) {
	p := b.p
	today := b.now.Format(models.DateLayout)
	out := make([]models.PaymentScheduleEntry, 0, len(inst))

	for i, ir := range inst {
		scope := make(map[string]Row, len(rows)+1)
		for k, v := range rows {
			scope[k] = v
		}
		scope[EntityInstallment] = ir

		e := models.PaymentScheduleEntry{}
		num, err := parseInt(p.value(EntityInstallment, "installment_number", scope))
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("installment %d: number: %v", i+1, err))
		}
		e.InstallmentNumber = num

		if e.DueDate, err = parseDate(p.value(EntityInstallment, "due_date", scope)); err != nil {
			return nil, apperr.Validation(fmt.Sprintf("installment %d: due_date: %v", num, err))
		}
		if e.Amount, err = parseFloat(p.value(EntityInstallment, "amount", scope)); err != nil {
			return nil, apperr.Validation(fmt.Sprintf("installment %d: amount: %v", num, err))
		}
		paid, err := parseDate(p.value(EntityInstallment, "paid_date", scope))
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("installment %d: paid_date: %v", num, err))
		}
		if paid != "" {
			e.PaidDate = &paid
		}

		raw := p.value(EntityInstallment, "status", scope)
		switch {
		case p.has(EntityInstallment, "status") && raw != "":
			s, err := mapStatus(p.InstallmentStatusMap, raw,
				models.PaymentStatusPaid, models.PaymentStatusPending, models.PaymentStatusOverdue)
			if err != nil {
				return nil, apperr.Validation(fmt.Sprintf("installment %d: %v", num, err))
			}
			e.Status = s
		case e.PaidDate != nil:
			e.Status = models.PaymentStatusPaid
		case e.DueDate != "" && e.DueDate < today:
			e.Status = models.PaymentStatusOverdue
		default:
			e.Status = models.PaymentStatusPending
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}
