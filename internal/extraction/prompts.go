package extraction

import "strings"

const textPlaceholder = "{{DOCUMENT_TEXT}}"

func buildPrompt(tmpl, text string, maxChars int) string {
	return strings.Replace(tmpl, textPlaceholder, Prefix(text, maxChars), 1)
}

// Prefix returns at most maxChars runes of s. A non-positive maxChars keeps s whole.
func Prefix(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

const billPrompt = `You are an expert medical bill processor. Extract the following information from the bill.

Bill Text:
{{DOCUMENT_TEXT}}

Return a JSON object with these fields:
1. hospital_name: name of the hospital or medical facility
2. total_amount: total amount due, as a number
3. date_of_service: date of service in YYYY-MM-DD format
4. patient_name: name of the patient, if available
5. patient_id: patient ID or MRN, if available
6. diagnosis_codes: list of ICD-10 diagnosis codes
7. procedure_codes: list of CPT/HCPCS procedure codes
8. items: list of line items with description and amount

Example Output:
{
  "hospital_name": "General Hospital",
  "total_amount": 1250.75,
  "date_of_service": "2024-04-10",
  "patient_name": "John Doe",
  "patient_id": "MRN123456",
  "diagnosis_codes": ["E11.65", "I10"],
  "procedure_codes": ["99213", "J3423"],
  "items": [
    {"description": "Doctor Consultation", "amount": 250.00},
    {"description": "Lab Tests", "amount": 1000.75}
  ]
}

Respond with the JSON object only.`

const dischargePrompt = `You are an expert medical records processor. Extract the following information from the hospital discharge summary.

Discharge Summary Text:
{{DOCUMENT_TEXT}}

Return a JSON object with these fields:
1. patient_name: full name of the patient
2. patient_id: patient ID or MRN, if available
3. admission_date: admission date in YYYY-MM-DD format
4. discharge_date: discharge date in YYYY-MM-DD format
5. diagnosis: primary diagnosis
6. secondary_diagnoses: list of secondary diagnoses
7. procedures: list of procedures performed
8. medications: list of discharge medications
9. attending_physician: name of the attending physician
10. facility_name: name of the hospital or facility
11. discharge_instructions: instructions given at discharge

Example Output:
{
  "patient_name": "John Doe",
  "patient_id": "MRN123456",
  "admission_date": "2024-04-01",
  "discharge_date": "2024-04-05",
  "diagnosis": "Community-acquired pneumonia",
  "secondary_diagnoses": ["Type 2 diabetes mellitus"],
  "procedures": ["Chest X-ray"],
  "medications": ["Amoxicillin 500mg three times daily"],
  "attending_physician": "Dr. Sarah Johnson",
  "facility_name": "General Hospital",
  "discharge_instructions": "Rest and follow up in one week"
}

Respond with the JSON object only.`

const idCardPrompt = `You are an expert insurance document processor. Extract the following information from the insurance ID card.

ID Card Text:
{{DOCUMENT_TEXT}}

Return a JSON object with these fields:
1. insurance_provider: name of the insurance company
2. policy_number: policy number
3. group_number: group number, if available
4. member_id: member ID
5. member_name: full name of the member
6. relationship: relationship to the subscriber, if available
7. effective_date: coverage start date in YYYY-MM-DD format
8. expiration_date: coverage end date in YYYY-MM-DD format

Example Output:
{
  "insurance_provider": "Blue Cross Blue Shield",
  "policy_number": "POL123456789",
  "group_number": "GRP98765",
  "member_id": "MEM123456",
  "member_name": "John Doe",
  "relationship": "Self",
  "effective_date": "2024-01-01",
  "expiration_date": "2024-12-31"
}

Respond with the JSON object only.`

const prescriptionPrompt = `You are an expert pharmacist. Extract the following information from the prescription.

Prescription Text:
{{DOCUMENT_TEXT}}

Return a JSON object with these fields:
1. patient_name: full name of the patient
2. date_prescribed: date of the prescription in YYYY-MM-DD format
3. medications: list of medications, each with name, strength, form, quantity, refills, instructions and ndc
4. prescriber_name: name of the prescribing doctor
5. prescriber_license: prescriber license or DEA number
6. instructions: general instructions for the patient

Example Output:
{
  "patient_name": "John Doe",
  "date_prescribed": "2024-04-10",
  "medications": [
    {
      "name": "Amoxicillin",
      "strength": "500mg",
      "form": "capsule",
      "quantity": "30",
      "refills": "0",
      "instructions": "Take 1 capsule by mouth three times daily",
      "ndc": "00093-3109-01"
    }
  ],
  "prescriber_name": "Dr. Sarah Johnson",
  "prescriber_license": "AB1234567",
  "instructions": "Complete the full course"
}

Respond with the JSON object only.`

const labReportPrompt = `You are an expert laboratory technician. Extract the following information from the lab report.

Lab Report Text:
{{DOCUMENT_TEXT}}

Return a JSON object with these fields:
1. patient_name: full name of the patient
2. patient_id: patient ID or MRN, if available
3. date_collected: specimen collection date in YYYY-MM-DD format
4. date_reported: report date in YYYY-MM-DD format
5. lab_name: name of the laboratory
6. ordering_physician: name of the ordering physician
7. test_results: list of results, each with test_name, result, unit, reference_range, flag and status

Example Output:
{
  "patient_name": "John Doe",
  "patient_id": "MRN123456",
  "date_collected": "2024-04-10",
  "date_reported": "2024-04-11",
  "lab_name": "City Diagnostics",
  "ordering_physician": "Dr. Sarah Johnson",
  "test_results": [
    {
      "test_name": "Glucose",
      "result": "95",
      "unit": "mg/dL",
      "reference_range": "70-99",
      "flag": "",
      "status": "final"
    }
  ]
}

Respond with the JSON object only.`
