package domain

import (
	"errors"
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func TestReferenceRangeClassify(t *testing.T) {
	tests := []struct {
		name  string
		rr    ReferenceRange
		value float64
		want  Status
	}{
		{"Inside closed range", ReferenceRange{Low: f(0.6), High: f(1.3)}, 1.0, StatusNormal},
		{"At lower bound is normal", ReferenceRange{Low: f(0.6), High: f(1.3)}, 0.6, StatusNormal},
		{"At upper bound is normal", ReferenceRange{Low: f(0.6), High: f(1.3)}, 1.3, StatusNormal},
		{"Above upper bound", ReferenceRange{Low: f(0.6), High: f(1.3)}, 1.6, StatusHigh},
		{"Below lower bound", ReferenceRange{Low: f(0.6), High: f(1.3)}, 0.5, StatusLow},
		{"Open upper bound never high", ReferenceRange{Low: f(60)}, 200, StatusNormal},
		{"Open upper bound low side", ReferenceRange{Low: f(60)}, 54, StatusLow},
		{"Open lower bound never low", ReferenceRange{High: f(200)}, 1, StatusNormal},
		{"Open lower bound high side", ReferenceRange{High: f(200)}, 240, StatusHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rr.Classify(tt.value); got != tt.want {
				t.Errorf("Classify(%g) = %s, want %s", tt.value, got, tt.want)
			}
			wantContains := tt.want == StatusNormal
			if got := tt.rr.Contains(tt.value); got != wantContains {
				t.Errorf("Contains(%g) = %v, want %v", tt.value, got, wantContains)
			}
		})
	}
}

func TestReferenceRangeString(t *testing.T) {
	tests := []struct {
		name string
		rr   ReferenceRange
		want string
	}{
		{"Closed", ReferenceRange{Low: f(0.6), High: f(1.3)}, "0.6-1.3"},
		{"Open high", ReferenceRange{Low: f(60)}, ">60"},
		{"Open low", ReferenceRange{High: f(200)}, "<200"},
		{"Empty", ReferenceRange{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStagingRuleMatches(t *testing.T) {
	rule := StagingRule{Op: OpLessThan, Threshold: 30, Label: "Stage 4 CKD"}
	if !rule.Matches(29.9) {
		t.Error("Expected 29.9 < 30 to match")
	}
	if rule.Matches(30) {
		t.Error("Expected 30 < 30 not to match")
	}

	gte := StagingRule{Op: OpGreaterOrEqual, Threshold: 6.5, Label: "Borderline diabetes control"}
	if !gte.Matches(6.5) {
		t.Error("Expected 6.5 >= 6.5 to match")
	}
	if gte.Matches(6.4) {
		t.Error("Expected 6.4 >= 6.5 not to match")
	}
}

func TestCanonicalAnalyteValidate(t *testing.T) {
	valid := CanonicalAnalyte{
		Code:          "2160-0",
		DisplayName:   "Creatinine",
		Domain:        Renal,
		CanonicalUnit: "mg/dL",
		NormalRange:   ReferenceRange{Low: f(0.6), High: f(1.3)},
		Polarity:      LowerIsBetter,
		Synonyms:      []string{"Creatinine", "Serum Creatinine"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid analyte, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(a *CanonicalAnalyte)
	}{
		{"Missing code", func(a *CanonicalAnalyte) { a.Code = "" }},
		{"Missing display name", func(a *CanonicalAnalyte) { a.DisplayName = "" }},
		{"Inverted range", func(a *CanonicalAnalyte) {
			a.NormalRange = ReferenceRange{Low: f(10), High: f(5)}
		}},
		{"Unknown domain", func(a *CanonicalAnalyte) { a.Domain = "Orthopedic" }},
		{"Unknown polarity", func(a *CanonicalAnalyte) { a.Polarity = "NEUTRAL" }},
		{"No synonyms", func(a *CanonicalAnalyte) { a.Synonyms = nil }},
		{"Bad staging op", func(a *CanonicalAnalyte) {
			a.StagingRules = []StagingRule{{Op: "between", Threshold: 1, Label: "x"}}
		}},
		{"Unlabeled staging rule", func(a *CanonicalAnalyte) {
			a.StagingRules = []StagingRule{{Op: OpLessThan, Threshold: 1}}
		}},
		{"Non-positive conversion factor", func(a *CanonicalAnalyte) {
			a.Conversions = []UnitConversion{{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: 0}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := a.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrInvalidCatalogEntry) && !errors.Is(err, ErrInvalidStagingRule) {
				t.Errorf("Expected catalog or staging rule error, got %v", err)
			}
		})
	}
}

func TestEffectiveDomainFallsBackToOther(t *testing.T) {
	a := CanonicalAnalyte{Code: "x", DisplayName: "X", Synonyms: []string{"X"}}
	if got := a.EffectiveDomain(); got != Other {
		t.Errorf("Expected Other, got %s", got)
	}
	a.Domain = Renal
	if got := a.EffectiveDomain(); got != Renal {
		t.Errorf("Expected Renal, got %s", got)
	}
}

func TestPatientDataValidate(t *testing.T) {
	good := PatientData{
		PatientID: "PT123456",
		Labs: []LabResult{
			{TestName: "Creatinine", Value: 1.6, Unit: "mg/dL", Date: NewDate(2023, time.November, 1)},
		},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("Expected valid patient data, got %v", err)
	}

	noID := good
	noID.PatientID = ""
	if err := noID.Validate(); err == nil {
		t.Error("Expected error for missing patient ID")
	}

	badLab := good
	badLab.Labs = []LabResult{{TestName: "", Value: 1, Unit: "mg/dL", Date: NewDate(2023, time.November, 1)}}
	if err := badLab.Validate(); err == nil {
		t.Error("Expected error for unnamed lab entry")
	}
}

func TestDomainBucketWorstStatus(t *testing.T) {
	bucket := &DomainBucket{
		Domain: Renal,
		Findings: []NormalizedResult{
			{AnalyteCode: "2160-0", Status: StatusNormal},
			{AnalyteCode: "33914-3", Status: StatusLow},
			{AnalyteCode: "6299-2", Status: StatusHigh},
		},
	}
	if got := bucket.WorstStatus(); got != StatusLow {
		t.Errorf("Expected first abnormal status Low, got %s", got)
	}
	if got := len(bucket.AbnormalFindings()); got != 2 {
		t.Errorf("Expected 2 abnormal findings, got %d", got)
	}

	clean := &DomainBucket{Findings: []NormalizedResult{{Status: StatusNormal}}}
	if got := clean.WorstStatus(); got != StatusNormal {
		t.Errorf("Expected Normal, got %s", got)
	}
}
