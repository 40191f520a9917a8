package domain

import "math"

// ExtractedDocument is a typed record produced by an extraction agent.
type ExtractedDocument interface {
	Type() DocumentType
	// ComparableFields returns the fields that can be cross-checked against other documents.
	ComparableFields() map[string]string
}

// Billable is implemented by documents that carry a claimed amount.
type Billable interface {
	ClaimedAmount() (float64, bool)
}

// LineItem is a single charge on a bill.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// BillDocument is a medical bill or invoice.
type BillDocument struct {
	HospitalName   string     `json:"hospital_name,omitempty"`
	TotalAmount    *float64   `json:"total_amount,omitempty"`
	DateOfService  string     `json:"date_of_service,omitempty"`
	PatientName    string     `json:"patient_name,omitempty"`
	PatientID      string     `json:"patient_id,omitempty"`
	Items          []LineItem `json:"items,omitempty"`
	DiagnosisCodes []string   `json:"diagnosis_codes,omitempty"`
	ProcedureCodes []string   `json:"procedure_codes,omitempty"`
}

func (BillDocument) Type() DocumentType { return DocumentTypeBill }

func (d BillDocument) ComparableFields() map[string]string {
	return map[string]string{"patient_name": d.PatientName, "patient_id": d.PatientID}
}

// ClaimedAmount returns the bill total. Missing, non-finite and non-positive totals are not claimable.
func (d BillDocument) ClaimedAmount() (float64, bool) {
	if d.TotalAmount == nil {
		return 0, false
	}
	v := *d.TotalAmount
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// DischargeSummaryDocument is a hospital discharge summary.
type DischargeSummaryDocument struct {
	PatientName           string   `json:"patient_name,omitempty"`
	PatientID             string   `json:"patient_id,omitempty"`
	AdmissionDate         string   `json:"admission_date,omitempty"`
	DischargeDate         string   `json:"discharge_date,omitempty"`
	Diagnosis             string   `json:"diagnosis,omitempty"`
	SecondaryDiagnoses    []string `json:"secondary_diagnoses,omitempty"`
	Procedures            []string `json:"procedures,omitempty"`
	Medications           []string `json:"medications,omitempty"`
	AttendingPhysician    string   `json:"attending_physician,omitempty"`
	FacilityName          string   `json:"facility_name,omitempty"`
	DischargeInstructions string   `json:"discharge_instructions,omitempty"`
}

func (DischargeSummaryDocument) Type() DocumentType { return DocumentTypeDischargeSummary }

func (d DischargeSummaryDocument) ComparableFields() map[string]string {
	return map[string]string{"patient_name": d.PatientName, "patient_id": d.PatientID}
}

// IDCardDocument is an insurance member card.
type IDCardDocument struct {
	InsuranceProvider string `json:"insurance_provider,omitempty"`
	PolicyNumber      string `json:"policy_number,omitempty"`
	GroupNumber       string `json:"group_number,omitempty"`
	MemberID          string `json:"member_id,omitempty"`
	MemberName        string `json:"member_name,omitempty"`
	Relationship      string `json:"relationship,omitempty"`
	EffectiveDate     string `json:"effective_date,omitempty"`
	ExpirationDate    string `json:"expiration_date,omitempty"`
}

func (IDCardDocument) Type() DocumentType { return DocumentTypeIDCard }

// ComparableFields is empty: the card names the member, who need not be the patient.
func (d IDCardDocument) ComparableFields() map[string]string {
	return map[string]string{}
}

// Medication is one prescribed drug.
type Medication struct {
	Name         string `json:"name"`
	Strength     string `json:"strength,omitempty"`
	Form         string `json:"form,omitempty"`
	Quantity     string `json:"quantity,omitempty"`
	Refills      string `json:"refills,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	NDC          string `json:"ndc,omitempty"`
}

// PrescriptionDocument is a medical prescription.
type PrescriptionDocument struct {
	PatientName       string       `json:"patient_name,omitempty"`
	DatePrescribed    string       `json:"date_prescribed,omitempty"`
	Medications       []Medication `json:"medications,omitempty"`
	PrescriberName    string       `json:"prescriber_name,omitempty"`
	PrescriberLicense string       `json:"prescriber_license,omitempty"`
	Instructions      string       `json:"instructions,omitempty"`
}

func (PrescriptionDocument) Type() DocumentType { return DocumentTypePrescription }

func (d PrescriptionDocument) ComparableFields() map[string]string {
	return map[string]string{"patient_name": d.PatientName}
}

// TestResult is a single laboratory measurement.
type TestResult struct {
	TestName       string `json:"test_name"`
	Result         string `json:"result"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	Flag           string `json:"flag,omitempty"`
	Status         string `json:"status,omitempty"`
}

// LabReportDocument is a laboratory report.
type LabReportDocument struct {
	PatientName       string       `json:"patient_name,omitempty"`
	PatientID         string       `json:"patient_id,omitempty"`
	DateCollected     string       `json:"date_collected,omitempty"`
	DateReported      string       `json:"date_reported,omitempty"`
	LabName           string       `json:"lab_name,omitempty"`
	OrderingPhysician string       `json:"ordering_physician,omitempty"`
	TestResults       []TestResult `json:"test_results,omitempty"`
}

func (LabReportDocument) Type() DocumentType { return DocumentTypeLabReport }

func (d LabReportDocument) ComparableFields() map[string]string {
	return map[string]string{"patient_name": d.PatientName, "patient_id": d.PatientID}
}
