package submission

import (
	"testing"

	"github.com/veritax/veritax/internal/filings"
	"github.com/veritax/veritax/internal/forms"
)

func TestCheckGates(t *testing.T) {
	complete := func() *forms.FormData {
		return &forms.FormData{
			PersonalInfo: forms.PersonalInfo{
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
		}
	}
	verified := filings.Verification{Method: "aadhaar_otp"}

	tests := []struct {
		name         string
		mutate       func(*forms.FormData)
		verification filings.Verification
		wantCode     string
	}{
		{"all gates pass", func(*forms.FormData) {}, verified, ""},
		{
			"missing bank details",
			func(f *forms.FormData) { f.BankDetails.AccountNumber = "" },
			verified,
			"BANK_DETAILS_INCOMPLETE",
		},
		{
			"missing address",
			func(f *forms.FormData) { f.PersonalInfo.Address.City = "" },
			verified,
			"ADDRESS_INCOMPLETE",
		},
		{
			"missing verification method",
			func(*forms.FormData) {},
			filings.Verification{},
			"VERIFICATION_METHOD_REQUIRED",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := complete()
			tc.mutate(form)

			outcome := checkGates(form, tc.verification)

			if tc.wantCode == "" {
				if !outcome.Valid {
					t.Fatalf("expected pass, got %v", outcome.Errors)
				}
				return
			}

			found := false
			for _, issue := range outcome.Errors {
				if issue.Code == tc.wantCode {
					found = true
				}
			}
			if !found {
				t.Fatalf("missing %s in %v", tc.wantCode, outcome.Errors)
			}
		})
	}
}
