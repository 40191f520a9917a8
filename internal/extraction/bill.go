package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"claimflow/internal/domain"
)

var (
	lineItemRe      = regexp.MustCompile(`(?m)^[ \t]*-[ \t]*([^:\n]+?)[ \t]*:[ \t]*\$?[ \t]*([\d,]+(?:\.\d{1,2})?)[ \t]*$`)
	facilityLineRe  = regexp.MustCompile(`(?im)^[ \t]*([^\n:]*\b(?:hospital|medical center|clinic|healthcare)\b[^\n:]*)[ \t]*$`)
	diagnosisCodeRe = regexp.MustCompile(`\b[A-Z]\d{2}(?:\.\d+)?\b`)
	procedureCodeRe = regexp.MustCompile(`\b(?:\d{5}|\d{4}[A-Z]|[A-Z]\d{4})\b`)
	amountSpanRe    = regexp.MustCompile(`\$[ \t]*[\d,]+(?:\.\d{1,2})?|\b\d[\d,]*\.\d{1,2}\b`)
	dateSpanRe      = regexp.MustCompile(`\b\d{1,4}[/-]\d{1,2}[/-]\d{1,4}\b`)
	addressLineRe   = regexp.MustCompile(`(?i)\b(?:address|zip|postal|street|avenue|ave|blvd|suite|p\.?o\.? box)\b`)
	stateZipRe      = regexp.MustCompile(`\b[A-Z]{2}[ \t]+\d{5}(?:-\d{4})?\b`)
	procedureHintRe = regexp.MustCompile(`(?i)\b(?:cpt|hcpcs|procedures?|proc|codes?)\b`)
)

func billSpec() agentSpec {
	return agentSpec{
		docType:     domain.DocumentTypeBill,
		required:    []string{"total_amount", "date_of_service"},
		dateFields:  []string{"date_of_service"},
		moneyFields: []string{"total_amount"},
		battery:     billBattery,
		prompt:      billPrompt,
		maxTokens:   1000,
		schema: objectSchema(map[string]any{
			"hospital_name":   textSchema,
			"total_amount":    numberSchema,
			"date_of_service": textSchema,
			"patient_name":    textSchema,
			"patient_id":      textSchema,
			"diagnosis_codes": listSchema,
			"procedure_codes": listSchema,
			"items": arrayOf(objectSchema(map[string]any{
				"description": textSchema,
				"amount":      numberSchema,
			})),
		}),
		decode: func(f Fields) (domain.ExtractedDocument, error) {
			var doc domain.BillDocument
			if err := decodeInto(f, &doc); err != nil {
				return nil, err
			}
			return doc, nil
		},
	}
}

// billBattery covers the labelled "HOSPITAL BILL" layout first, then free-form bills.
var billBattery = Battery{
	labelledLineRule("patient_name", `patient name`, Trim),
	labelledLineRule("date_of_service", `date of service`, Date),
	{
		Field:     "total_amount",
		Pattern:   regexp.MustCompile(`(?i:total amount)[ \t]*:[ \t]*\$?[ \t]*([\d,]+(?:\.\d{1,2})?)`),
		Transform: Amount,
	},
	{Field: "items", Extract: extractLineItems},

	labelledLineRule("hospital_name", `hospital|hospital name|medical center|healthcare|clinic|facility`, Trim),
	{Field: "hospital_name", Pattern: facilityLineRe, Transform: facilityName},
	{
		Field:     "total_amount",
		Pattern:   regexp.MustCompile(`(?i:total|amount due|balance)[^\n\d$]{0,20}\$?[ \t]*([\d,]+(?:\.\d{1,2})?)`),
		Pick:      PickLast,
		Transform: Amount,
	},
	dateRule("date_of_service", `date of service|service date|date`),
	patientNameRule,
	{
		Field:     "patient_id",
		Pattern:   regexp.MustCompile(`(?i:patient[ \t-]?id|mrn|account[ \t]+(?:number|no\.?|#))[ \t]*[:#]?[ \t]*([A-Z0-9][A-Z0-9-]+)`),
		Transform: IDToken,
	},
	{Field: "diagnosis_codes", Pattern: diagnosisCodeRe, Pick: PickAll},
	{Field: "procedure_codes", Extract: extractProcedureCodes},
}

func extractLineItems(text string) (any, bool) {
	var items []map[string]any
	for _, m := range lineItemRe.FindAllStringSubmatch(text, -1) {
		amount, err := ParseMoney(m[2])
		if err != nil {
			continue
		}
		items = append(items, map[string]any{
			"description": strings.TrimSpace(m[1]),
			"amount":      amount,
		})
	}
	return items, len(items) > 0
}

func facilityName(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "hospital bill") {
		return nil, false
	}
	return s, true
}

// extractProcedureCodes finds CPT/HCPCS-like codes that are not part of an amount, a date or a year.
// Address lines never yield codes, and a bare five-digit number needs procedure context.
func extractProcedureCodes(text string) (any, bool) {
	var excluded [][]int
	excluded = append(excluded, amountSpanRe.FindAllStringIndex(text, -1)...)
	excluded = append(excluded, dateSpanRe.FindAllStringIndex(text, -1)...)

	var codes []string
	seen := map[string]bool{}
	for _, loc := range procedureCodeRe.FindAllStringIndex(text, -1) {
		code := text[loc[0]:loc[1]]
		if seen[code] || overlaps(loc, excluded) || isYear(code) {
			continue
		}
		line, col := lineAt(text, loc[0])
		if addressLineRe.MatchString(line) || stateZipRe.MatchString(line) {
			continue
		}
		if isNumeric(code) && !hasProcedureContext(line, col) {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, len(codes) > 0
}

// lineAt returns the line containing offset i and i's column within it.
func lineAt(text string, i int) (string, int) {
	start := strings.LastIndexByte(text[:i], '\n') + 1
	end := strings.IndexByte(text[i:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += i
	}
	return text[start:end], i - start
}

// hasProcedureContext accepts a code keyword on the line, a "- " line item, or a code leading its line.
func hasProcedureContext(line string, col int) bool {
	if procedureHintRe.MatchString(line) {
		return true
	}
	lead := strings.TrimSpace(line[:col])
	return lead == "" || lead == "-"
}

func isNumeric(code string) bool {
	_, err := strconv.Atoi(code)
	return err == nil
}

func overlaps(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

func isYear(code string) bool {
	n, err := strconv.Atoi(code)
	return err == nil && n >= 1900 && n <= 2099
}
