package catalog

import (
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

func ptr(v float64) *float64 { return &v }

// Fixed conversion factors between reported and canonical units. Each is
// analyte-specific; the engine performs no general unit algebra.
const (
	glucoseMmolToMgdL      = 18.0182      // mmol/L -> mg/dL
	creatinineUmolToMgdL   = 1.0 / 88.42  // µmol/L -> mg/dL
	cholesterolMmolToMgdL  = 38.67        // mmol/L -> mg/dL
	triglycerideMmolToMgdL = 88.57        // mmol/L -> mg/dL
	ureaMmolToMgdL         = 2.801        // mmol/L urea -> mg/dL BUN
	hemoglobinGLToGdL      = 0.1          // g/L -> g/dL
)

// BuiltinEntries returns the built-in analyte table: the canonical identity,
// synonyms, reference range, health domain, polarity, staging rules (ordered
// most-severe-first), and explicit unit conversions for each supported test.
// Codes are LOINC.
func BuiltinEntries() []domain.CanonicalAnalyte {
	return []domain.CanonicalAnalyte{
		{
			Code:          "2160-0",
			DisplayName:   "Creatinine",
			Domain:        domain.Renal,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(0.6), High: ptr(1.3)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"Creatinine", "Serum Creatinine", "Cr"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpGreaterThan, Threshold: 2.0, Label: "Significantly elevated creatinine", Recommendation: "urgent nephrology referral"},
				{Op: domain.OpGreaterThan, Threshold: 1.3, Label: "Mildly elevated creatinine", Recommendation: "monitor renal function"},
			},
			Conversions: []domain.UnitConversion{
				{FromUnit: "umol/L", ToUnit: "mg/dL", Factor: creatinineUmolToMgdL},
			},
		},
		{
			Code:          "33914-3",
			DisplayName:   "eGFR",
			Domain:        domain.Renal,
			CanonicalUnit: "mL/min/1.73m2",
			NormalRange:   domain.ReferenceRange{Low: ptr(60)},
			Polarity:      domain.HigherIsBetter,
			Synonyms:      []string{"eGFR", "Estimated GFR", "GFR"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpLessThan, Threshold: 30, Label: "Severe kidney dysfunction (Stage 4 CKD)", Recommendation: "nephrology referral and CKD management"},
				{Op: domain.OpLessThan, Threshold: 45, Label: "Moderate-severe kidney dysfunction (Stage 3b CKD)", Recommendation: "nephrology referral"},
				{Op: domain.OpLessThan, Threshold: 60, Label: "Moderate kidney dysfunction (Stage 3a CKD)", Recommendation: "monitor renal function"},
				{Op: domain.OpLessThan, Threshold: 90, Label: "Mild decrease in kidney function"},
			},
		},
		{
			Code:          "6299-2",
			DisplayName:   "BUN",
			Domain:        domain.Renal,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(7), High: ptr(20)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"BUN", "Blood Urea Nitrogen", "Urea Nitrogen"},
			Conversions: []domain.UnitConversion{
				{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: ureaMmolToMgdL},
			},
		},
		{
			Code:          "1751-7",
			DisplayName:   "Albumin",
			Domain:        domain.Renal,
			CanonicalUnit: "g/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(3.5), High: ptr(5.0)},
			Polarity:      domain.HigherIsBetter,
			Synonyms:      []string{"Albumin", "Serum Albumin"},
			Conversions: []domain.UnitConversion{
				{FromUnit: "g/L", ToUnit: "g/dL", Factor: hemoglobinGLToGdL},
			},
		},
		{
			Code:          "4548-4",
			DisplayName:   "HbA1c",
			Domain:        domain.Endocrine,
			CanonicalUnit: "%",
			NormalRange:   domain.ReferenceRange{Low: ptr(4.0), High: ptr(5.6)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"HbA1c", "Hemoglobin A1c", "A1C", "Glycated Hemoglobin"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpGreaterOrEqual, Threshold: 9.0, Label: "Poor diabetes control", Recommendation: "intensify diabetes management"},
				{Op: domain.OpGreaterOrEqual, Threshold: 7.0, Label: "Suboptimal diabetes control", Recommendation: "optimize diabetes therapy"},
				{Op: domain.OpGreaterOrEqual, Threshold: 6.5, Label: "Borderline diabetes control"},
				{Op: domain.OpGreaterOrEqual, Threshold: 5.7, Label: "Pre-diabetic range", Recommendation: "lifestyle modifications and monitoring"},
			},
		},
		{
			Code:          "1558-6",
			DisplayName:   "Fasting Glucose",
			Domain:        domain.Endocrine,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(70), High: ptr(99)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"Fasting Glucose", "Glucose Fasting", "FPG", "Fasting Blood Glucose"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpGreaterOrEqual, Threshold: 126, Label: "Diabetic fasting glucose", Recommendation: "confirm with repeat testing"},
				{Op: domain.OpGreaterOrEqual, Threshold: 100, Label: "Impaired fasting glucose", Recommendation: "lifestyle modifications and monitoring"},
			},
			Conversions: []domain.UnitConversion{
				{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: glucoseMmolToMgdL},
			},
		},
		{
			Code:          "2345-7",
			DisplayName:   "Glucose",
			Domain:        domain.Endocrine,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(70), High: ptr(140)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"Glucose", "Random Glucose", "Blood Glucose"},
			Conversions: []domain.UnitConversion{
				{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: glucoseMmolToMgdL},
			},
		},
		{
			Code:          "2093-3",
			DisplayName:   "Total Cholesterol",
			Domain:        domain.Lipid,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{High: ptr(200)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"Total Cholesterol", "Cholesterol"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpGreaterThan, Threshold: 200, Label: "Elevated total cholesterol", Recommendation: "lipid management"},
			},
			Conversions: []domain.UnitConversion{
				{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: cholesterolMmolToMgdL},
			},
		},
		{
			Code:          "2089-1",
			DisplayName:   "LDL Cholesterol",
			Domain:        domain.Lipid,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{High: ptr(100)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"LDL Cholesterol", "LDL"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpGreaterThan, Threshold: 100, Label: "Elevated LDL cholesterol", Recommendation: "statin therapy consideration"},
			},
			Conversions: []domain.UnitConversion{
				{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: cholesterolMmolToMgdL},
			},
		},
		{
			Code:          "2085-9",
			DisplayName:   "HDL Cholesterol",
			Domain:        domain.Lipid,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(40)},
			Polarity:      domain.HigherIsBetter,
			Synonyms:      []string{"HDL Cholesterol", "HDL"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpLessThan, Threshold: 40, Label: "Low HDL cholesterol", Recommendation: "lifestyle modifications"},
			},
			Conversions: []domain.UnitConversion{
				{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: cholesterolMmolToMgdL},
			},
		},
		{
			Code:          "2571-8",
			DisplayName:   "Triglycerides",
			Domain:        domain.Lipid,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{High: ptr(150)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"Triglycerides", "TG"},
			StagingRules: []domain.StagingRule{
				{Op: domain.OpGreaterThan, Threshold: 150, Label: "Elevated triglycerides", Recommendation: "dietary modifications"},
			},
			Conversions: []domain.UnitConversion{
				{FromUnit: "mmol/L", ToUnit: "mg/dL", Factor: triglycerideMmolToMgdL},
			},
		},
		{
			Code:          "3016-3",
			DisplayName:   "TSH",
			Domain:        domain.Thyroid,
			CanonicalUnit: "mIU/L",
			NormalRange:   domain.ReferenceRange{Low: ptr(0.4), High: ptr(4.0)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"TSH", "Thyroid Stimulating Hormone", "Thyrotropin"},
			Conversions: []domain.UnitConversion{
				{FromUnit: "uIU/mL", ToUnit: "mIU/L", Factor: 1},
			},
		},
		{
			Code:          "718-7",
			DisplayName:   "Hemoglobin",
			Domain:        domain.Hematology,
			CanonicalUnit: "g/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(12.0), High: ptr(16.0)},
			Polarity:      domain.HigherIsBetter,
			Synonyms:      []string{"Hemoglobin", "Hgb", "Hb"},
			Conversions: []domain.UnitConversion{
				{FromUnit: "g/L", ToUnit: "g/dL", Factor: hemoglobinGLToGdL},
			},
		},
		{
			Code:          "4544-3",
			DisplayName:   "Hematocrit",
			Domain:        domain.Hematology,
			CanonicalUnit: "%",
			NormalRange:   domain.ReferenceRange{Low: ptr(36.0), High: ptr(46.0)},
			Polarity:      domain.HigherIsBetter,
			Synonyms:      []string{"Hematocrit", "Hct"},
		},
		{
			Code:          "6690-2",
			DisplayName:   "White Blood Cell Count",
			Domain:        domain.Hematology,
			CanonicalUnit: "K/uL",
			NormalRange:   domain.ReferenceRange{Low: ptr(4.5), High: ptr(11.0)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"White Blood Cell Count", "WBC", "Leukocytes"},
			Conversions: []domain.UnitConversion{
				{FromUnit: "10^9/L", ToUnit: "K/uL", Factor: 1},
			},
		},
		{
			Code:          "777-3",
			DisplayName:   "Platelet Count",
			Domain:        domain.Hematology,
			CanonicalUnit: "K/uL",
			NormalRange:   domain.ReferenceRange{Low: ptr(150), High: ptr(450)},
			Polarity:      domain.HigherIsBetter,
			Synonyms:      []string{"Platelet Count", "Platelets", "PLT"},
			Conversions: []domain.UnitConversion{
				{FromUnit: "10^9/L", ToUnit: "K/uL", Factor: 1},
			},
		},
		{
			Code:          "1742-6",
			DisplayName:   "ALT",
			Domain:        domain.Liver,
			CanonicalUnit: "U/L",
			NormalRange:   domain.ReferenceRange{Low: ptr(7), High: ptr(56)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"ALT", "Alanine Aminotransferase", "SGPT"},
		},
		{
			Code:          "1920-8",
			DisplayName:   "AST",
			Domain:        domain.Liver,
			CanonicalUnit: "U/L",
			NormalRange:   domain.ReferenceRange{Low: ptr(10), High: ptr(40)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"AST", "Aspartate Aminotransferase", "SGOT"},
		},
		{
			Code:          "1975-2",
			DisplayName:   "Total Bilirubin",
			Domain:        domain.Liver,
			CanonicalUnit: "mg/dL",
			NormalRange:   domain.ReferenceRange{Low: ptr(0.1), High: ptr(1.2)},
			Polarity:      domain.LowerIsBetter,
			Synonyms:      []string{"Total Bilirubin", "Bilirubin"},
		},
	}
}
