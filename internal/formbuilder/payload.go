// Package formbuilder assembles the government-compliant return payload
// for each supported form type and validates it before signing. The
// payload format follows the e-filing gateway's JSON schema versions.
package formbuilder

import (
	"sort"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
)

// Payload is the government-facing return document. Field names follow
// the gateway's schema, not this service's internal model.
type Payload struct {
	SchemaVersion  string          `json:"schemaVer"`
	FormName       string          `json:"formName"`
	AssessmentYear string          `json:"assessmentYear"`
	Personal       PersonalSection `json:"personalInfo"`
	Income         IncomeSection   `json:"incomeDetails"`
	Deductions     []DeductionItem `json:"deductions"`
	TaxesPaid      TaxesSection    `json:"taxesPaid"`
	Computation    ComputedSection `json:"taxComputation"`
	Refund         RefundSection   `json:"refund"`
	Audit          *AuditSection   `json:"auditInfo,omitempty"`
	BalanceSheet   *BalanceSection `json:"balanceSheet,omitempty"`
}

// PersonalSection mirrors the gateway's taxpayer identity block.
type PersonalSection struct {
	PAN         string `json:"pan"`
	Name        string `json:"assesseeName"`
	DateOfBirth string `json:"dob"`
	AddressLine string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	PinCode     string `json:"pinCode"`
}

// IncomeSection mirrors the gateway's income heads block.
type IncomeSection struct {
	Salary             float64 `json:"salary"`
	InterestIncome     float64 `json:"incomeOthSrc"`
	BusinessIncome     float64 `json:"businessIncome,omitempty"`
	ProfessionalIncome float64 `json:"professionalIncome,omitempty"`
	CapitalGains       float64 `json:"capitalGains,omitempty"`
	GrossTotal         float64 `json:"grossTotalIncome"`
}

// DeductionItem is one chapter VI-A deduction entry.
type DeductionItem struct {
	Section string  `json:"section"`
	Amount  float64 `json:"amount"`
}

// TaxesSection lists prepaid taxes.
type TaxesSection struct {
	TDS   []TDSItem `json:"tds"`
	Total float64   `json:"totalTaxesPaid"`
}

// TDSItem is one tax-deducted-at-source record.
type TDSItem struct {
	DeductorTAN  string  `json:"tan"`
	DeductorName string  `json:"deductorName,omitempty"`
	Amount       float64 `json:"taxDeducted"`
}

// ComputedSection carries the computed liability figures.
type ComputedSection struct {
	TaxableIncome float64 `json:"totalIncome"`
	TaxLiability  float64 `json:"taxLiability"`
	Regime        string  `json:"taxRegime"`
	Version       string  `json:"computationVersion"`
}

// RefundSection carries the refund amount and destination account.
type RefundSection struct {
	RefundDue     float64 `json:"refundDue"`
	AmountPayable float64 `json:"amountPayable"`
	AccountNumber string  `json:"bankAccountNumber"`
	IFSC          string  `json:"ifsc"`
}

// AuditSection mirrors the gateway's audit report block.
type AuditSection struct {
	ReportDate    string `json:"auditReportDate"`
	AuditorName   string `json:"auditorName"`
	MembershipNum string `json:"auditorMembershipNum"`
}

// BalanceSection mirrors the gateway's balance sheet block.
type BalanceSection struct {
	Assets      float64 `json:"totalAssets"`
	Liabilities float64 `json:"totalLiabilities"`
}

func buildCommon(schemaVersion, formName, year string, form *forms.FormData, snapshot *compute.TaxSnapshot) *Payload {
	payload := &Payload{
		SchemaVersion:  schemaVersion,
		FormName:       formName,
		AssessmentYear: year,
		Personal: PersonalSection{
			PAN:         form.PersonalInfo.PAN,
			Name:        form.PersonalInfo.Name,
			DateOfBirth: form.PersonalInfo.DateOfBirth,
			AddressLine: form.PersonalInfo.Address.Line1,
			City:        form.PersonalInfo.Address.City,
			State:       form.PersonalInfo.Address.State,
			PinCode:     form.PersonalInfo.Address.PinCode,
		},
		Income: IncomeSection{
			Salary:         form.Income.Salary,
			InterestIncome: form.Income.InterestIncome,
			GrossTotal:     snapshot.GrossTotalIncome,
		},
		Computation: ComputedSection{
			TaxableIncome: snapshot.TaxableIncome,
			TaxLiability:  snapshot.TaxLiability,
			Regime:        string(snapshot.Regime),
			Version:       snapshot.ComputationVersion,
		},
		Refund: RefundSection{
			RefundDue:     snapshot.RefundDue,
			AmountPayable: snapshot.AmountPayable,
			AccountNumber: form.BankDetails.AccountNumber,
			IFSC:          form.BankDetails.IFSC,
		},
	}

	for section, amount := range form.Deductions {
		if amount > 0 {
			payload.Deductions = append(payload.Deductions, DeductionItem{
				Section: section,
				Amount:  amount,
			})
		}
	}
	// Deterministic payload bytes: the signature is computed over the
	// serialized form, so entry order cannot depend on map iteration.
	sort.Slice(payload.Deductions, func(i, j int) bool {
		return payload.Deductions[i].Section < payload.Deductions[j].Section
	})

	var tdsTotal float64
	for _, entry := range form.Income.TDS {
		payload.TaxesPaid.TDS = append(payload.TaxesPaid.TDS, TDSItem{
			DeductorTAN:  entry.EmployerTAN,
			DeductorName: entry.EmployerName,
			Amount:       entry.TaxDeducted,
		})
		tdsTotal += entry.TaxDeducted
	}
	payload.TaxesPaid.Total = tdsTotal

	return payload
}
