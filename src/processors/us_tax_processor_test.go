package processors

import "testing"

func TestCalculateUSTaxScenarios(t *testing.T) {
	tests := []struct {
		name        string
		incomeUSD   string
		feie        string
		rate        string
		foreignPaid string
		wantTaxable string
		wantTax     string
		wantCredit  string
		wantAfter   string
	}{
		{"under the exclusion", "50000", "120000", "24", "0", "0", "0", "0", "0"},
		{"over the exclusion", "150000", "120000", "24", "0", "30000", "7200", "0", "7200"},
		{"exactly at the exclusion", "120000", "120000", "24", "0", "0", "0", "0", "0"},
		{"no exclusion", "42500", "0", "24", "0", "42500", "10200", "0", "10200"},
		{"partial credit", "150000", "120000", "24", "2000", "30000", "7200", "2000", "5200"},
		{"credit capped at tax", "150000", "120000", "24", "50000", "30000", "7200", "7200", "0"},
		{"credit with nothing to offset", "50000", "120000", "24", "900", "0", "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateUSTax(d(tt.incomeUSD), d(tt.feie), d(tt.rate), d(tt.foreignPaid))
			if !got.TaxableIncome.Equal(d(tt.wantTaxable)) {
				t.Errorf("taxable = %s, want %s", got.TaxableIncome, tt.wantTaxable)
			}
			if !got.USTax.Equal(d(tt.wantTax)) {
				t.Errorf("us tax = %s, want %s", got.USTax, tt.wantTax)
			}
			if !got.CreditApplied.Equal(d(tt.wantCredit)) {
				t.Errorf("credit = %s, want %s", got.CreditApplied, tt.wantCredit)
			}
			if !got.USTaxAfterCredit.Equal(d(tt.wantAfter)) {
				t.Errorf("after credit = %s, want %s", got.USTaxAfterCredit, tt.wantAfter)
			}
		})
	}
}

func TestCalculateUSTaxBoundary(t *testing.T) {
	feie := d("120000")
	for _, income := range []string{"0", "1", "119999.99", "120000"} {
		if got := CalculateUSTax(d(income), feie, d("24"), d("0")); !got.USTax.IsZero() {
			t.Errorf("income %s <= feie: us tax = %s, want 0", income, got.USTax)
		}
	}
	for _, income := range []string{"120000.01", "120001", "500000"} {
		if got := CalculateUSTax(d(income), feie, d("24"), d("0")); !got.USTax.IsPositive() {
			t.Errorf("income %s > feie: us tax = %s, want > 0", income, got.USTax)
		}
	}
}

func TestCalculateUSTaxCreditNeverNegative(t *testing.T) {
	for _, paid := range []string{"0", "0.01", "7199.99", "7200", "7200.01", "1000000"} {
		got := CalculateUSTax(d("150000"), d("120000"), d("24"), d(paid))
		if got.USTaxAfterCredit.IsNegative() {
			t.Errorf("foreign tax paid %s: after credit = %s, want >= 0", paid, got.USTaxAfterCredit)
		}
	}
}

func TestIsPhysicalPresenceMet(t *testing.T) {
	tests := map[int]bool{0: false, 329: false, 330: true, 365: true}
	for days, want := range tests {
		if got := IsPhysicalPresenceMet(days); got != want {
			t.Errorf("IsPhysicalPresenceMet(%d) = %v, want %v", days, got, want)
		}
	}
}
