// Package forms defines the normalized return form model shared by
// validation, intelligence, payload generation, and submission. A Draft's
// JSON form data unmarshals into FormData; everything downstream of the
// draft store operates on this representation.
package forms

import (
	"fmt"
	"strings"
	"time"
)

// FormType identifies the return form a filing targets.
type FormType string

// Supported return forms.
const (
	ITR1 FormType = "ITR1"
	ITR2 FormType = "ITR2"
	ITR3 FormType = "ITR3"
	ITR4 FormType = "ITR4"
)

// Normalize maps loosely formatted form type strings ("itr-1", "ITR 1")
// onto the canonical FormType values.
func Normalize(raw string) (FormType, error) {
	cleaned := strings.ToUpper(raw)
	cleaned = strings.NewReplacer("-", "", "_", "", " ", "").Replace(cleaned)

	switch FormType(cleaned) {
	case ITR1, ITR2, ITR3, ITR4:
		return FormType(cleaned), nil
	}
	return "", fmt.Errorf("unsupported form type: %q", raw)
}

// Complex reports whether the form type belongs to the advisor-eligible
// set. ITR1 is the simplest form and is never eligible.
func (t FormType) Complex() bool {
	return t == ITR2 || t == ITR3 || t == ITR4
}

// HasBusinessIncome reports whether the form type carries business income
// schedules.
func (t FormType) HasBusinessIncome() bool {
	return t == ITR3 || t == ITR4
}

// HasCapitalGains reports whether the form type carries capital gains
// schedules.
func (t FormType) HasCapitalGains() bool {
	return t == ITR2 || t == ITR3
}

// HasAuditSection reports whether the form type includes the audit and
// balance sheet section.
func (t FormType) HasAuditSection() bool {
	return t == ITR3
}

// Presumptive reports whether the form type uses presumptive income
// computation.
func (t FormType) Presumptive() bool {
	return t == ITR4
}

// IncomeSourceType categorizes where a declared income figure came from.
type IncomeSourceType string

// Income source types. Form16 is the employer-issued salary certificate;
// AIS26AS is the third-party income statement pulled from the department.
const (
	SourceForm16 IncomeSourceType = "form16"
	SourceAIS    IncomeSourceType = "ais_26as"
	SourceManual IncomeSourceType = "manual"
)

// IncomeSource records the provenance of a declared income figure.
type IncomeSource struct {
	Type        IncomeSourceType `json:"type"`
	EmployerTAN string           `json:"employer_tan,omitempty"`
	DocumentRef string           `json:"document_ref,omitempty"`
}

// TDSEntry is a single tax-deducted-at-source record.
type TDSEntry struct {
	EmployerTAN  string  `json:"employer_tan"`
	EmployerName string  `json:"employer_name,omitempty"`
	TaxDeducted  float64 `json:"tax_deducted"`
}

// Address is the taxpayer's registered address. All fields except Line2
// are required before submission.
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pin_code"`
}

// Complete reports whether the address satisfies the submission gate.
func (a Address) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" && a.PinCode != ""
}

// BankDetails identifies the refund account. All fields are required
// before submission.
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bank_name"`
}

// Complete reports whether bank details satisfy the submission gate.
func (b BankDetails) Complete() bool {
	return b.AccountNumber != "" && b.IFSC != "" && b.BankName != ""
}

// PersonalInfo carries taxpayer identity fields echoed into the payload.
type PersonalInfo struct {
	PAN         string  `json:"pan"`
	Name        string  `json:"name"`
	DateOfBirth string  `json:"date_of_birth"` // YYYY-MM-DD
	Address     Address `json:"address"`
}

// AgeOn returns the taxpayer's age in completed years on the given date,
// or -1 when the date of birth is absent or malformed. The birthday must
// have passed for the year to count.
func (p PersonalInfo) AgeOn(date time.Time) int {
	dob, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return -1
	}

	years := date.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(date) {
		years--
	}
	return years
}

// Income aggregates declared income heads and their provenance.
type Income struct {
	Salary             float64        `json:"salary"`
	InterestIncome     float64        `json:"interest_income"`
	BusinessIncome     float64        `json:"business_income"`
	ProfessionalIncome float64        `json:"professional_income"`
	CapitalGains       float64        `json:"capital_gains"`
	Sources            []IncomeSource `json:"sources,omitempty"`
	TDS                []TDSEntry     `json:"tds,omitempty"`
}

// HasSalaryCertificate reports whether any income source is an
// employer-issued salary certificate (Form 16).
func (i Income) HasSalaryCertificate() bool {
	for _, src := range i.Sources {
		if src.Type == SourceForm16 {
			return true
		}
	}
	return false
}

// DistinctEmployerTANs returns the number of distinct employer TANs across
// TDS entries. Blank TANs are ignored.
func (i Income) DistinctEmployerTANs() int {
	seen := make(map[string]struct{})
	for _, entry := range i.TDS {
		if entry.EmployerTAN != "" {
			seen[entry.EmployerTAN] = struct{}{}
		}
	}
	return len(seen)
}

// AuditInfo carries the audit report section for forms that require one.
type AuditInfo struct {
	ReportDate           string `json:"report_date,omitempty"`
	AuditorName          string `json:"auditor_name,omitempty"`
	AuditorMembershipNum string `json:"auditor_membership_num,omitempty"`
}

// Complete reports whether the audit report section is fully populated.
func (a AuditInfo) Complete() bool {
	return a.ReportDate != "" && a.AuditorName != "" && a.AuditorMembershipNum != ""
}

// BalanceSheet is the declared asset/liability statement for business forms.
type BalanceSheet struct {
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
}

// FormData is the normalized draft content for a single return.
type FormData struct {
	FormType     FormType           `json:"form_type"`
	PersonalInfo PersonalInfo       `json:"personal_info"`
	BankDetails  BankDetails        `json:"bank_details"`
	Income       Income             `json:"income"`
	Deductions   map[string]float64 `json:"deductions,omitempty"`
	Audit        *AuditInfo         `json:"audit,omitempty"`
	BalanceSheet *BalanceSheet      `json:"balance_sheet,omitempty"`
	Regime       string             `json:"regime,omitempty"`
}

// Deduction returns the declared amount for a deduction section, or zero.
func (f FormData) Deduction(section string) float64 {
	return f.Deductions[section]
}
