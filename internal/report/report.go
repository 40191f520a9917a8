// Package report exports claim decisions as CSV or XLSX.
package report

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"claimflow/internal/domain"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" (the default when empty) or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// columns defines the header row shared by both formats.
var columns = []string{
	"Claim ID",
	"Status",
	"Reason",
	"Amount Approved",
	"Amount Rejected",
	"Documents Received",
	"Documents Processed",
	"Documents Failed",
	"Documents Skipped",
	"Missing Documents",
	"Discrepancies",
	"Patient Name",
	"Processed At",
	"Created At",
}

// Columns returns a copy of the header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// recordToRow flattens a stored claim. When the stored result cannot be decoded,
// only the columns held on the record itself are filled.
func recordToRow(rec *domain.ClaimRecord) []string {
	row := make([]string, len(columns))
	row[0] = rec.ID.String()
	row[1] = string(rec.Status)
	row[2] = rec.Reason
	row[3] = formatMoney(rec.AmountApproved)
	row[4] = formatMoney(rec.AmountRejected)
	row[5] = strconv.Itoa(rec.DocumentsReceived)
	row[6] = strconv.Itoa(rec.DocumentsProcessed)
	row[13] = formatTime(rec.CreatedAt)

	if len(rec.Result) == 0 {
		return row
	}
	claim, err := rec.Claim()
	if err != nil {
		return row
	}

	row[7] = strconv.Itoa(claim.Metadata.DocumentsFailed)
	row[8] = strconv.Itoa(claim.Metadata.DocumentsSkipped)
	row[9] = strings.Join(claim.Validation.MissingDocuments, "; ")
	fields := make([]string, 0, len(claim.Validation.Discrepancies))
	for _, d := range claim.Validation.Discrepancies {
		fields = append(fields, d.Field)
	}
	row[10] = strings.Join(fields, "; ")
	row[11] = patientName(claim)
	row[12] = formatTime(claim.Metadata.ProcessedAt)
	return row
}

// patientName returns the first patient name found on a successful document.
func patientName(claim *domain.ProcessedClaim) string {
	for _, o := range claim.Successes() {
		if name := strings.TrimSpace(o.Document.ComparableFields()["patient_name"]); name != "" {
			return name
		}
	}
	return ""
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces anything but letters, digits, '-' and '_' and caps the length at 100.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {name}_{YYYY-MM-DD}.{format} for Content-Disposition.
func BuildFilename(name string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), f)
}
