package processors

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/jamtax/src/models"
)

func resultWithNet(name, usdNet string) models.StructureResult {
	return models.StructureResult{StructureName: name, USDNetAfterUSTax: models.NewUSD(d(usdNet))}
}

func TestCompareEmpty(t *testing.T) {
	if _, err := Compare(nil); !errors.Is(err, ErrEmptyComparisonSet) {
		t.Fatalf("err = %v, want ErrEmptyComparisonSet", err)
	}
}

func TestComparePicksMaximum(t *testing.T) {
	report, err := Compare([]models.StructureResult{
		resultWithNet("A", "100"),
		resultWithNet("B", "300"),
		resultWithNet("C", "250"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RecommendedStructure != "B" || report.RecommendedIndex != 1 {
		t.Errorf("recommended = %s (%d), want B (1)", report.RecommendedStructure, report.RecommendedIndex)
	}
	if !report.AdvantageUSD.Value.Equal(d("50")) {
		t.Errorf("advantage = %s, want 50", report.AdvantageUSD)
	}
}

func TestCompareTieGoesToFirstListed(t *testing.T) {
	report, err := Compare([]models.StructureResult{
		resultWithNet("A", "100"),
		resultWithNet("B", "300"),
		resultWithNet("C", "300"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RecommendedStructure != "B" {
		t.Errorf("recommended = %s, want B", report.RecommendedStructure)
	}
	if !report.AdvantageUSD.IsZero() {
		t.Errorf("advantage = %s, want 0", report.AdvantageUSD)
	}

	report, _ = Compare([]models.StructureResult{resultWithNet("X", "5"), resultWithNet("Y", "5.00")})
	if report.RecommendedStructure != "X" {
		t.Errorf("recommended = %s, want X", report.RecommendedStructure)
	}
}

func TestCompareSingle(t *testing.T) {
	report, err := Compare([]models.StructureResult{resultWithNet("Only", "-10")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RecommendedStructure != "Only" || !report.AdvantageUSD.IsZero() {
		t.Errorf("got %+v", report)
	}
}

func defaultInput() models.EvaluationInput {
	in := models.DefaultEvaluationInput()
	in.SalaryAmount = d("1500096")
	return in
}

func TestEvaluateDefaultScenario(t *testing.T) {
	report, err := Evaluate(defaultInput(), EvaluateOptions{StrictRates: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(report.Results))
	}

	names := []string{StructureSoleProprietor, StructureCompany, StructureSalaryDividend}
	for i, n := range names {
		if report.Results[i].StructureName != n {
			t.Errorf("result[%d] = %s, want %s", i, report.Results[i].StructureName, n)
		}
	}

	sole := report.Results[0]
	if !sole.LocalTaxPaid.Value.Equal(d("2500000")) || !sole.USDNetBeforeUSTax.Value.Equal(d("50000")) {
		t.Errorf("sole proprietor = %s / %s, want JMD 2500000 / USD 50000", sole.LocalTaxPaid, sole.USDNetBeforeUSTax)
	}
	if !sole.USTaxPaid.IsZero() || !sole.USDNetAfterUSTax.Value.Equal(d("50000")) {
		t.Errorf("sole proprietor us = %s / %s", sole.USTaxPaid, sole.USDNetAfterUSTax)
	}

	company := report.Results[1]
	if !company.LocalTaxPaid.Value.Equal(d("3625000")) {
		t.Errorf("company local tax = %s, want 3625000", company.LocalTaxPaid)
	}
	if !company.USDNetBeforeUSTax.Value.Equal(d("42500")) {
		t.Errorf("company usd net = %s, want 42500", company.USDNetBeforeUSTax)
	}

	hybrid := report.Results[2]
	if !hybrid.LocalNetIncome.Value.Equal(d("8725014.4")) {
		t.Errorf("hybrid local net = %s, want 8725014.4", hybrid.LocalNetIncome)
	}

	if report.RecommendedStructure != StructureSalaryDividend {
		t.Errorf("recommended = %s, want %s", report.RecommendedStructure, StructureSalaryDividend)
	}
	if !report.FEIEApplied {
		t.Error("FEIE should apply when physical presence is not given")
	}
}

func TestEvaluateInvariants(t *testing.T) {
	in := defaultInput()
	in.GrossIncome = d("30000000")
	in.SalaryAmount = d("5000000")
	in.Rates.ForeignTaxPaidUSD = d("1000")

	report, err := Evaluate(in, EvaluateOptions{StrictRates: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range report.Results {
		if !r.LocalNetIncome.Value.Equal(in.GrossIncome.Sub(r.LocalTaxPaid.Value)) {
			t.Errorf("%s: local net %s != gross - local tax", r.StructureName, r.LocalNetIncome)
		}
		if r.USTaxPaid.Value.IsNegative() {
			t.Errorf("%s: us tax paid %s < 0", r.StructureName, r.USTaxPaid)
		}
		due := decimal.Max(decimal.Zero, r.USTaxPaid.Value.Sub(r.ForeignTaxCredit.Value))
		if !r.USDNetAfterUSTax.Value.Equal(r.USDNetBeforeUSTax.Value.Sub(due)) {
			t.Errorf("%s: usd after %s != before %s - due %s", r.StructureName, r.USDNetAfterUSTax, r.USDNetBeforeUSTax, due)
		}
		if r.LocalTaxPaid.Currency != models.JMD || r.USDNetAfterUSTax.Currency != models.USD {
			t.Errorf("%s: wrong currency tags", r.StructureName)
		}
	}
}

func TestEvaluatePhysicalPresenceGate(t *testing.T) {
	in := defaultInput()
	days := 200
	in.PhysicalPresenceDays = &days

	report, err := Evaluate(in, EvaluateOptions{StrictRates: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.FEIEApplied {
		t.Error("FEIE applied despite failing physical presence")
	}
	sole := report.Results[0]
	// 50,000 USD fully taxable at 24%.
	if !sole.USTaxPaid.Value.Equal(d("12000")) {
		t.Errorf("sole proprietor us tax = %s, want 12000", sole.USTaxPaid)
	}

	days = 330
	report, err = Evaluate(in, EvaluateOptions{StrictRates: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.FEIEApplied || !report.Results[0].USTaxPaid.IsZero() {
		t.Errorf("FEIE should apply at 330 days, got applied=%v tax=%s", report.FEIEApplied, report.Results[0].USTaxPaid)
	}
}

func TestEvaluateForeignTaxCreditModes(t *testing.T) {
	in := defaultInput()
	in.Rates.FEIELimitUSD = decimal.Zero
	in.Rates.ForeignTaxPaidUSD = d("1000")

	in.ForeignTaxCredit = models.CreditNone
	none, err := Evaluate(in, EvaluateOptions{StrictRates: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !none.Results[0].ForeignTaxCredit.IsZero() {
		t.Errorf("none: credit = %s, want 0", none.Results[0].ForeignTaxCredit)
	}

	in.ForeignTaxCredit = models.CreditFixed
	fixed, _ := Evaluate(in, EvaluateOptions{StrictRates: true})
	if !fixed.Results[0].ForeignTaxCredit.Value.Equal(d("1000")) {
		t.Errorf("fixed: credit = %s, want 1000", fixed.Results[0].ForeignTaxCredit)
	}

	// Sole proprietor pays JMD 2,500,000 = USD 16,666.67 locally; US tax on 50,000 is 12,000.
	in.ForeignTaxCredit = models.CreditLocal
	local, _ := Evaluate(in, EvaluateOptions{StrictRates: true})
	sole := local.Results[0]
	if !sole.ForeignTaxCredit.Value.Equal(d("12000")) || !sole.USTaxDue.IsZero() {
		t.Errorf("local: credit = %s due = %s, want 12000 / 0", sole.ForeignTaxCredit, sole.USTaxDue)
	}

	in.ForeignTaxCredit = "bogus"
	if _, err := Evaluate(in, EvaluateOptions{StrictRates: true}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bogus mode: err = %v, want ErrInvalidInput", err)
	}
}

func TestEvaluateErrors(t *testing.T) {
	in := defaultInput()
	in.SalaryAmount = d("10000001")
	if _, err := Evaluate(in, EvaluateOptions{}); !errors.Is(err, ErrInvalidAllocation) {
		t.Errorf("salary > gross: err = %v, want ErrInvalidAllocation", err)
	}

	in = defaultInput()
	in.Rates.USDToJMDRate = decimal.Zero
	if _, err := Evaluate(in, EvaluateOptions{}); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("zero fx: err = %v, want ErrInvalidRate", err)
	}

	in = defaultInput()
	in.Rates.CorporateTaxRate = d("120")
	if _, err := Evaluate(in, EvaluateOptions{StrictRates: true}); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("strict corp 120: err = %v, want ErrInvalidRate", err)
	}
	if _, err := Evaluate(in, EvaluateOptions{StrictRates: false}); err != nil {
		t.Errorf("lenient corp 120: unexpected err %v", err)
	}

	in = defaultInput()
	in.GrossIncome = d("-1")
	if _, err := Evaluate(in, EvaluateOptions{}); !errors.Is(err, ErrInvalidAllocation) {
		t.Errorf("negative gross: err = %v, want ErrInvalidAllocation", err)
	}
}

func TestComparisonProcessorDelegates(t *testing.T) {
	p := NewComparisonProcessor(EvaluateOptions{StrictRates: true})
	a, err := p.Evaluate(defaultInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := Evaluate(defaultInput(), EvaluateOptions{StrictRates: true})
	if a.RecommendedStructure != b.RecommendedStructure || !a.AdvantageUSD.Value.Equal(b.AdvantageUSD.Value) {
		t.Errorf("processor and function disagree: %s vs %s", a.RecommendedStructure, b.RecommendedStructure)
	}
	if _, err := p.Compare(nil); !errors.Is(err, ErrEmptyComparisonSet) {
		t.Errorf("err = %v, want ErrEmptyComparisonSet", err)
	}
}

func TestEvaluatePresenceDaysRange(t *testing.T) {
	tests := []struct {
		days    int
		wantErr bool
		feie    bool
	}{
		{-400, true, false},
		{-1, true, false},
		{0, false, false},
		{329, false, false},
		{330, false, true},
		{366, false, true},
		{367, true, false},
	}
	for _, tt := range tests {
		in := defaultInput()
		days := tt.days
		in.PhysicalPresenceDays = &days
		report, err := Evaluate(in, EvaluateOptions{StrictRates: true})
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("days=%d: err = %v, want ErrInvalidInput", tt.days, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("days=%d: unexpected error %v", tt.days, err)
			continue
		}
		if report.FEIEApplied != tt.feie {
			t.Errorf("days=%d: FEIEApplied = %t, want %t", tt.days, report.FEIEApplied, tt.feie)
		}
	}
}

func TestBuildStructureResultRejectsMixedCurrencies(t *testing.T) {
	lo := localOutcome{
		name:  StructureCompany,
		parts: []models.TaxComponent{{Name: "Corporate Tax", Amount: models.NewUSD(d("100"))}},
	}
	_, err := buildStructureResult(d("1000"), lo, models.DefaultRateInputs(), models.CreditFixed)
	if !errors.Is(err, models.ErrCurrencyMismatch) {
		t.Errorf("err = %v, want ErrCurrencyMismatch", err)
	}
}

func TestBuildStructureResultSumsComponents(t *testing.T) {
	lo := localOutcome{
		name: StructureCompany,
		parts: []models.TaxComponent{
			{Name: "Corporate Tax", Amount: models.NewJMD(d("250"))},
			{Name: "Dividend Withholding Tax", Amount: models.NewJMD(d("112.5"))},
		},
	}
	res, err := buildStructureResult(d("1000"), lo, models.DefaultRateInputs(), models.CreditFixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LocalTaxPaid.String() != "JMD 362.50" || res.LocalNetIncome.String() != "JMD 637.50" {
		t.Errorf("local tax = %s, net = %s", res.LocalTaxPaid, res.LocalNetIncome)
	}
	if res.LocalNetIncome.Currency != models.JMD || res.USDNetBeforeUSTax.Currency != models.USD {
		t.Errorf("currencies = %s / %s", res.LocalNetIncome.Currency, res.USDNetBeforeUSTax.Currency)
	}
}
