package formbuilder

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/forms"
)

func testPipeline() *Pipeline {
	return NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func freshSnapshot(attemptStart time.Time) *compute.TaxSnapshot {
	return &compute.TaxSnapshot{
		GrossTotalIncome:   900_000,
		TaxableIncome:      750_000,
		TaxLiability:       54_600,
		Regime:             compute.RegimeNew,
		ComputedAt:         attemptStart.Add(2 * time.Second),
		ComputationVersion: "2026.1",
	}
}

func salariedForm() *forms.FormData {
	return &forms.FormData{
		FormType: forms.ITR1,
		PersonalInfo: forms.PersonalInfo{
			PAN:         "ABCDE1234F",
			Name:        "A Kumar",
			DateOfBirth: "1980-04-12",
			Address: forms.Address{
				Line1:   "12 MG Road",
				City:    "Bengaluru",
				State:   "Karnataka",
				PinCode: "560001",
			},
		},
		BankDetails: forms.BankDetails{
			AccountNumber: "123456789012",
			IFSC:          "HDFC0001234",
			BankName:      "HDFC Bank",
		},
		Income: forms.Income{
			Salary:  900_000,
			Sources: []forms.IncomeSource{{Type: forms.SourceForm16}},
			TDS:     []forms.TDSEntry{{EmployerTAN: "BLRA12345C", TaxDeducted: 54_600}},
		},
		Deductions: map[string]float64{"80C": 150_000, "80D": 25_000},
	}
}

func TestBuildProducesGatewayPayload(t *testing.T) {
	attemptStart := time.Now()

	data, err := testPipeline().Build("itr-1", salariedForm(), freshSnapshot(attemptStart), "2025-26", attemptStart)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if payload.SchemaVersion != "ITR1-2.0" {
		t.Fatalf("schemaVer = %q, want ITR1-2.0", payload.SchemaVersion)
	}
	if payload.AssessmentYear != "2025-26" {
		t.Fatalf("assessmentYear = %q", payload.AssessmentYear)
	}
	if payload.Computation.Version != "2026.1" {
		t.Fatalf("computationVersion = %q", payload.Computation.Version)
	}

	// Deduction entries sort by section so payload bytes are stable for
	// signing.
	if len(payload.Deductions) != 2 || payload.Deductions[0].Section != "80C" {
		t.Fatalf("deductions = %v, want sorted [80C 80D]", payload.Deductions)
	}
}

func TestBuildDeterministicBytes(t *testing.T) {
	attemptStart := time.Now()
	snapshot := freshSnapshot(attemptStart)

	first, err := testPipeline().Build("ITR1", salariedForm(), snapshot, "2025-26", attemptStart)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := testPipeline().Build("ITR1", salariedForm(), snapshot, "2025-26", attemptStart)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("identical inputs must serialize to identical bytes")
	}
}

func TestBuildRejectsStaleSnapshot(t *testing.T) {
	attemptStart := time.Now()

	tests := []struct {
		name     string
		snapshot *compute.TaxSnapshot
	}{
		{"computed before attempt", &compute.TaxSnapshot{
			ComputedAt:         attemptStart.Add(-time.Minute),
			ComputationVersion: "2026.1",
		}},
		{"missing version stamp", &compute.TaxSnapshot{
			ComputedAt: attemptStart.Add(time.Second),
		}},
		{"zero timestamp", &compute.TaxSnapshot{
			ComputationVersion: "2026.1",
		}},
		{"nil snapshot", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testPipeline().Build("ITR1", salariedForm(), tc.snapshot, "2025-26", attemptStart)
			if !errors.Is(err, ErrStaleSnapshot) {
				t.Fatalf("want ErrStaleSnapshot, got %v", err)
			}
		})
	}
}

func TestBuildRejectsUnsupportedForm(t *testing.T) {
	attemptStart := time.Now()

	for _, raw := range []string{"ITR5", "itr-7", ""} {
		_, err := testPipeline().Build(raw, salariedForm(), freshSnapshot(attemptStart), "2025-26", attemptStart)
		if !errors.Is(err, ErrUnsupportedForm) {
			t.Fatalf("%q: want ErrUnsupportedForm, got %v", raw, err)
		}
	}
}

func TestBuildRejectsIncompletePayload(t *testing.T) {
	attemptStart := time.Now()

	form := salariedForm()
	form.PersonalInfo.PAN = ""

	_, err := testPipeline().Build("ITR1", form, freshSnapshot(attemptStart), "2025-26", attemptStart)
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("want ErrGeneration, got %v", err)
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error does not carry the validation outcome: %v", err)
	}
	if len(genErr.Outcome.Errors) == 0 {
		t.Fatal("generation error must carry the failed checks")
	}
}

func TestITR2BuilderRejectsBusinessIncome(t *testing.T) {
	attemptStart := time.Now()

	form := salariedForm()
	form.FormType = forms.ITR2
	form.Income.BusinessIncome = 300_000

	// ITR-2 carries business income through to the payload, where the
	// builder's validator refuses it.
	payload := itr2Builder{}.Build(form, freshSnapshot(attemptStart), "2025-26")
	payload.Income.BusinessIncome = form.Income.BusinessIncome

	outcome := itr2Builder{}.Validate(payload)
	if outcome.Valid {
		t.Fatal("ITR-2 payload with business income must fail validation")
	}
}

func TestITR4BuilderEnforcesPresumptiveCaps(t *testing.T) {
	attemptStart := time.Now()

	form := salariedForm()
	form.FormType = forms.ITR4
	form.Income.BusinessIncome = 2_000_001

	_, err := testPipeline().Build("ITR4", form, freshSnapshot(attemptStart), "2025-26", attemptStart)
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("want ErrGeneration for over-cap business income, got %v", err)
	}
}
