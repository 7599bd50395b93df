package mapper

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

//go:embed profiles/*.yaml
var builtinProfiles embed.FS

const (
	EntityContract    = "contract"
	EntityCustomer    = "customer"
	EntityGuarantor   = "guarantor"
	EntityVehicle     = "vehicle"
	EntityLoan        = "loan"
	EntityInstallment = "installment"
)

// knownFields lists the canonical fields a profile may map, per entity.
var knownFields = map[string][]string{
	EntityContract:    {"id", "contract_number", "contract_date", "status", "company_name", "file_number"},
	EntityCustomer:    {"name", "phone", "address", "photo"},
	EntityGuarantor:   {"name", "phone", "address", "photo", "relation"},
	EntityVehicle:     {"make", "model", "year", "registration_number", "vin", "color"},
	EntityLoan:        {"loan_amount", "interest_rate", "tenure_months", "emi_amount", "total_amount", "amount_paid", "outstanding_amount"},
	EntityInstallment: {"installment_number", "due_date", "amount", "status", "paid_date"},
}

// Table describes where one kind of row comes from. SQL sources run Query;
// workbook sources read Sheet. Key names the column on these rows that
// identifies them; Ref names the contract column pointing at them.
type Table struct {
	Query     string `mapstructure:"query"`
	Sheet     string `mapstructure:"sheet"`
	Key       string `mapstructure:"key"`
	Ref       string `mapstructure:"ref"`
	PerRecord bool   `mapstructure:"per_record"`
	Required  bool   `mapstructure:"required"`
	OrderBy   string `mapstructure:"order_by"`
}

func (t Table) defined() bool { return t.Query != "" || t.Sheet != "" }

// FieldRule maps one canonical field to source columns. Multiple columns
// are joined with Sep, skipping blanks. Source picks the row the columns
// are read from.
type FieldRule struct {
	Columns []string `mapstructure:"columns"`
	Sep     string   `mapstructure:"sep"`
	Default string   `mapstructure:"default"`
	Source  string   `mapstructure:"source"`
}

type Profile struct {
	Name                 string                          `mapstructure:"name"`
	Description          string                          `mapstructure:"description"`
	CompanyName          string                          `mapstructure:"company_name"`
	Contracts            Table                           `mapstructure:"contracts"`
	Related              map[string]Table                `mapstructure:"related"`
	Installments         Table                           `mapstructure:"installments"`
	Fields               map[string]map[string]FieldRule `mapstructure:"fields"`
	StatusMap            map[string]string               `mapstructure:"status_map"`
	InstallmentStatusMap map[string]string               `mapstructure:"installment_status_map"`
}

// BuiltinProfiles returns the names of the embedded profiles.
func BuiltinProfiles() []string {
	entries, _ := builtinProfiles.ReadDir("profiles")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// LoadProfile resolves nameOrPath to a built-in profile or a YAML/JSON file.
// Values can be overridden from MAPPER_* environment variables.
func LoadProfile(nameOrPath string) (*Profile, error) {
	v := viper.New()
	v.SetEnvPrefix("MAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if data, err := builtinProfiles.ReadFile("profiles/" + nameOrPath + ".yaml"); err == nil {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("builtin profile %q: %w", nameOrPath, err)
		}
	} else {
		v.SetConfigFile(nameOrPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read profile %q: %w", nameOrPath, err)
		}
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w", nameOrPath, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(nameOrPath), filepath.Ext(nameOrPath))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate rejects profiles that reference unknown entities or fields, or
// lack the contract table.
func (p *Profile) Validate() error {
	var errs []error
	if !p.Contracts.defined() {
		errs = append(errs, errors.New("contracts: query or sheet is required"))
	}
	if p.Contracts.Key == "" {
		errs = append(errs, errors.New("contracts: key is required"))
	}
	for entity, t := range p.Related {
		switch entity {
		case EntityCustomer, EntityGuarantor, EntityVehicle:
		default:
			errs = append(errs, fmt.Errorf("related: unknown entity %q", entity))
			continue
		}
		if !t.defined() || t.Key == "" || t.Ref == "" {
			errs = append(errs, fmt.Errorf("related.%s: query/sheet, key and ref are required", entity))
		}
	}
	if p.Installments.defined() && p.Installments.Key == "" {
		errs = append(errs, errors.New("installments: key is required"))
	}
	for entity, rules := range p.Fields {
		allowed, ok := knownFields[entity]
		if !ok {
			errs = append(errs, fmt.Errorf("fields: unknown entity %q", entity))
			continue
		}
		for field, rule := range rules {
			if !contains(allowed, field) {
				errs = append(errs, fmt.Errorf("fields.%s: unknown field %q", entity, field))
			}
			if rule.Source != "" && rule.Source != EntityContract && rule.Source != EntityInstallment {
				if _, ok := p.Related[rule.Source]; !ok {
					errs = append(errs, fmt.Errorf("fields.%s.%s: source %q has no related table", entity, field, rule.Source))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// sourceFor picks the row a rule reads: the rule's own source, else the
// entity's related table when one exists, else the contract row.
func (p *Profile) sourceFor(entity string, rule FieldRule) string {
	if rule.Source != "" {
		return rule.Source
	}
	if entity == EntityInstallment {
		return EntityInstallment
	}
	if _, ok := p.Related[entity]; ok {
		return entity
	}
	return EntityContract
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
