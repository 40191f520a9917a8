package extraction_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimflow/internal/domain"
	"claimflow/internal/extraction"
	"claimflow/internal/port"
	"claimflow/mocks"
)

const billText = `HOSPITAL BILL
Hospital: City General Hospital
Patient Name: John Doe
Date of Service: 04/10/2024

Items:
- Consultation: $500.00
- Lab Tests: $1,250.50

Total Amount: $1,750.50
`

func newAgent(t *testing.T, gen port.TextGenerator, docType domain.DocumentType) extraction.Agent {
	t.Helper()
	reg, err := extraction.NewDefaultRegistry(gen, extraction.Options{})
	require.NoError(t, err)
	a, ok := reg.Get(docType)
	require.True(t, ok)
	return a
}

func maxTokens(n int) any {
	return mock.MatchedBy(func(in port.GenerateInput) bool { return in.MaxTokens == n })
}

func TestRegistry_RegistersEveryExtractableType(t *testing.T) {
	reg, err := extraction.NewDefaultRegistry(new(mocks.MockTextGenerator), extraction.Options{})
	require.NoError(t, err)

	for _, dt := range domain.ExtractableDocumentTypes {
		a, ok := reg.Get(dt)
		require.True(t, ok, dt)
		assert.Equal(t, dt, a.DocumentType())
	}
	_, ok := reg.Get(domain.DocumentTypeUnknown)
	assert.False(t, ok)
}

func TestBillAgent_DeterministicOnly(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	a := newAgent(t, gen, domain.DocumentTypeBill)

	doc, err := a.Extract(context.Background(), billText)

	require.NoError(t, err)
	bill, ok := doc.(domain.BillDocument)
	require.True(t, ok)
	assert.Equal(t, "City General Hospital", bill.HospitalName)
	assert.Equal(t, "John Doe", bill.PatientName)
	assert.Equal(t, "2024-04-10", bill.DateOfService)
	require.NotNil(t, bill.TotalAmount)
	assert.Equal(t, 1750.5, *bill.TotalAmount)
	assert.Equal(t, []domain.LineItem{
		{Description: "Consultation", Amount: 500},
		{Description: "Lab Tests", Amount: 1250.5},
	}, bill.Items)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestBillAgent_BackendValuesWin(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, maxTokens(1000)).
		Return(`Here is the data: {"total_amount": 150, "hospital_name": "X", "date_of_service": "2024-04-10", "patient_name": ""}`, nil).Once()
	a := newAgent(t, gen, domain.DocumentTypeBill)

	doc, err := a.Extract(context.Background(), "Patient: Mary Major\nTotal Amount: $100.00\n")

	require.NoError(t, err)
	bill := doc.(domain.BillDocument)
	require.NotNil(t, bill.TotalAmount)
	assert.Equal(t, 150.0, *bill.TotalAmount)
	assert.Equal(t, "X", bill.HospitalName)
	assert.Equal(t, "Mary Major", bill.PatientName)
	gen.AssertExpectations(t)
}

func TestBillAgent_CodesSkipAmountsAndDates(t *testing.T) {
	a := newAgent(t, new(mocks.MockTextGenerator), domain.DocumentTypeBill)

	doc, err := a.Extract(context.Background(), "Date of Service: 2024-01-15\nDiagnosis: J18.9, E11.65\nCPT 99213\nHCPCS J3423\nTotal: $12345.00\n")

	require.NoError(t, err)
	bill := doc.(domain.BillDocument)
	assert.Equal(t, []string{"J18.9", "E11.65"}, bill.DiagnosisCodes)
	assert.Equal(t, []string{"99213", "J3423"}, bill.ProcedureCodes)
	assert.Equal(t, 12345.0, *bill.TotalAmount)
}

func TestBillAgent_AddressNumbersAreNotProcedureCodes(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	a := newAgent(t, gen, domain.DocumentTypeBill)

	doc, err := a.Extract(context.Background(), `HOSPITAL BILL
Springfield General Hospital
400 Main Street, Springfield, IL 62704
Springfield 62704
Zip Code: 62704
Date of Service: 2024-01-15
Visit 45380 follow-up
CPT 99213
99214 Office visit, established
- 36415 Venipuncture: $25.00
Total: $150.00
`)

	require.NoError(t, err)
	assert.Equal(t, []string{"99213", "99214", "36415"}, doc.(domain.BillDocument).ProcedureCodes)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestAgent_BackendErrorWithMissingFields(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	a := newAgent(t, gen, domain.DocumentTypeBill)

	_, err := a.Extract(context.Background(), "Total Amount: $100.00")

	var ee *domain.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, domain.ErrorKindBackend, ee.Kind)
	assert.Equal(t, []string{"date_of_service"}, ee.Missing)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAgent_MalformedResponseIsParseError(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("Sorry, I cannot help with that.", nil)
	a := newAgent(t, gen, domain.DocumentTypeBill)

	_, err := a.Extract(context.Background(), "Total Amount: $100.00")

	var ee *domain.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, domain.ErrorKindParse, ee.Kind)
	assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
}

func TestAgent_SchemaMismatchIsParseError(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(`{"date_of_service": "2024-04-10", "items": "several"}`, nil)
	a := newAgent(t, gen, domain.DocumentTypeBill)

	_, err := a.Extract(context.Background(), "Total Amount: $100.00")

	var ee *domain.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, domain.ErrorKindParse, ee.Kind)
}

func TestAgent_StillMissingAfterMerge(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(`{"hospital_name": "Mercy", "date_of_service": null}`, nil)
	a := newAgent(t, gen, domain.DocumentTypeBill)

	_, err := a.Extract(context.Background(), "Total Amount: $100.00")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingRequiredFields))
	var ee *domain.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, domain.ErrorKindExtraction, ee.Kind)
	assert.Equal(t, []string{"date_of_service"}, ee.Missing)
}

func TestAgent_EmptyText(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	a := newAgent(t, gen, domain.DocumentTypeLabReport)

	_, err := a.Extract(context.Background(), " \n\t")

	var ee *domain.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, domain.ErrorKindTextUnavailable, ee.Kind)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

const dischargeText = `DISCHARGE SUMMARY
Patient Name: Jane Smith
Admission Date: 2024-03-01
Discharge Date: 03/05/2024
Diagnosis: Community acquired pneumonia
`

func TestDischargeAgent_AlwaysAsksBackend(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, maxTokens(1000)).
		Return(`{"diagnosis": "Pneumonia", "medications": ["Azithromycin", "Albuterol"], "attending_physician": "Dr. Lee"}`, nil).Once()
	a := newAgent(t, gen, domain.DocumentTypeDischargeSummary)

	doc, err := a.Extract(context.Background(), dischargeText)

	require.NoError(t, err)
	ds := doc.(domain.DischargeSummaryDocument)
	assert.Equal(t, "Jane Smith", ds.PatientName)
	assert.Equal(t, "2024-03-01", ds.AdmissionDate)
	assert.Equal(t, "2024-03-05", ds.DischargeDate)
	assert.Equal(t, "Pneumonia", ds.Diagnosis)
	assert.Equal(t, []string{"Azithromycin", "Albuterol"}, ds.Medications)
	assert.Equal(t, "Dr. Lee", ds.AttendingPhysician)
	gen.AssertExpectations(t)
}

func TestDischargeAgent_BackendFailureFailsDocument(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)
	a := newAgent(t, gen, domain.DocumentTypeDischargeSummary)

	doc, err := a.Extract(context.Background(), dischargeText)

	require.Error(t, err)
	assert.Nil(t, doc)
	var ee *domain.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, domain.DocumentTypeDischargeSummary, ee.DocumentType)
	assert.Equal(t, domain.ErrorKindBackend, ee.Kind)
	assert.Empty(t, ee.Missing)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIDCardAgent(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	a := newAgent(t, gen, domain.DocumentTypeIDCard)

	doc, err := a.Extract(context.Background(), `BLUE CROSS BLUE SHIELD
Member Name: John Doe
Member ID: XYZ123456789
Group Number: GRP-98765
Policy Number: POL-2024-001
Effective Date: 01/01/2024
`)

	require.NoError(t, err)
	assert.Equal(t, domain.IDCardDocument{
		InsuranceProvider: "Blue Cross Blue Shield",
		PolicyNumber:      "POL-2024-001",
		GroupNumber:       "GRP-98765",
		MemberID:          "XYZ123456789",
		MemberName:        "John Doe",
		EffectiveDate:     "2024-01-01",
	}, doc)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPrescriptionAgent(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	a := newAgent(t, gen, domain.DocumentTypePrescription)

	doc, err := a.Extract(context.Background(), `PRESCRIPTION
Patient: John Doe
Date: 04/12/2024
Prescriber: Dr. Sarah Lee
License #: MD123456
Medications:
- Amoxicillin 500mg capsule - Take one capsule three times daily
- Ibuprofen 200 mg
`)

	require.NoError(t, err)
	rx := doc.(domain.PrescriptionDocument)
	assert.Equal(t, "John Doe", rx.PatientName)
	assert.Equal(t, "2024-04-12", rx.DatePrescribed)
	assert.Equal(t, "Dr. Sarah Lee", rx.PrescriberName)
	assert.Equal(t, "MD123456", rx.PrescriberLicense)
	assert.Equal(t, []domain.Medication{
		{Name: "Amoxicillin", Strength: "500mg", Form: "capsule", Instructions: "Take one capsule three times daily"},
		{Name: "Ibuprofen", Strength: "200mg"},
	}, rx.Medications)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPrescriptionAgent_BackendMedicationStrings(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, maxTokens(1500)).
		Return(`{"medications": ["Lisinopril 10mg tablet", {"name": "Metformin", "strength": "500mg", "refills": 2}]}`, nil)
	a := newAgent(t, gen, domain.DocumentTypePrescription)

	doc, err := a.Extract(context.Background(), "Patient: John Doe\nDate: 2024-04-12\n")

	require.NoError(t, err)
	rx := doc.(domain.PrescriptionDocument)
	assert.Equal(t, []domain.Medication{
		{Name: "Lisinopril", Strength: "10mg", Form: "tablet"},
		{Name: "Metformin", Strength: "500mg", Refills: "2"},
	}, rx.Medications)
}

func TestLabReportAgent(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	a := newAgent(t, gen, domain.DocumentTypeLabReport)

	doc, err := a.Extract(context.Background(), `CITY LAB SERVICES
Patient Name: John Doe
MRN: 778812
Collection Date: 04/09/2024
Ordering Physician: Dr. Alan Grant
Hemoglobin (13.5-17.5) 14.2 g/dL
Glucose: 105 mg/dL (70-99) H
`)

	require.NoError(t, err)
	lab := doc.(domain.LabReportDocument)
	assert.Equal(t, "John Doe", lab.PatientName)
	assert.Equal(t, "778812", lab.PatientID)
	assert.Equal(t, "2024-04-09", lab.DateCollected)
	assert.Equal(t, "Dr. Alan Grant", lab.OrderingPhysician)
	assert.Equal(t, []domain.TestResult{
		{TestName: "Hemoglobin", Result: "14.2", Unit: "g/dL", ReferenceRange: "13.5-17.5"},
		{TestName: "Glucose", Result: "105", Unit: "mg/dL", ReferenceRange: "70-99", Flag: "H"},
	}, lab.TestResults)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestLabReportAgent_FallbackOnMissingResults(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, maxTokens(2000)).
		Return(`{"test_results": [{"test_name": "WBC", "result": 7.1, "unit": "K/uL"}], "lab_name": "Quest"}`, nil)
	a := newAgent(t, gen, domain.DocumentTypeLabReport)

	doc, err := a.Extract(context.Background(), "Patient Name: John Doe\nDate Collected: 2024-04-09\nResults attached separately.")

	require.NoError(t, err)
	lab := doc.(domain.LabReportDocument)
	assert.Equal(t, "Quest", lab.LabName)
	require.Len(t, lab.TestResults, 1)
	assert.Equal(t, "7.1", lab.TestResults[0].Result)
}
