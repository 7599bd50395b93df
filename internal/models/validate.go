package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"vehicle_finance/internal/apperr"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(contractRules, Contract{})
	})
	return validate
}

func contractRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(Contract)
	for i, p := range c.PaymentSchedule {
		if p.InstallmentNumber != i+1 {
			sl.ReportError(c.PaymentSchedule, "PaymentSchedule", "payment_schedule", "contiguous", fmt.Sprint(i+1))
			return
		}
		paid := p.Status == PaymentStatusPaid
		if paid != (p.PaidDate != nil) {
			sl.ReportError(p.PaidDate, "PaidDate", "paid_date", "paid_iff_status", fmt.Sprint(p.InstallmentNumber))
			return
		}
	}
}

// Validate checks c before it crosses into a store.
func (c Contract) Validate() error {
	err := Validator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ErrValidation.WithError(err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperr.Validation(strings.Join(msgs, "; ")).WithError(err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Namespace() + " is required"
	case "oneof":
		return fmt.Sprintf("%s %q is not one of [%s]", fe.Namespace(), fe.Value(), fe.Param())
	case "contiguous":
		return fmt.Sprintf("payment_schedule is not contiguous at installment %s", fe.Param())
	case "paid_iff_status":
		return fmt.Sprintf("installment %s: paid_date must be set exactly when status is paid", fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}
