package service_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimflow/internal/decision"
	"claimflow/internal/domain"
	"claimflow/internal/extraction"
	"claimflow/internal/metrics"
	"claimflow/internal/port"
	"claimflow/internal/service"
	"claimflow/internal/validator"
	"claimflow/mocks"
)

const billText = `HOSPITAL BILL
Hospital: City General Hospital
Patient Name: John Doe
Date of Service: 04/10/2024
Total Amount: $1,750.50
`

const cardText = `BLUE CROSS BLUE SHIELD
Member Name: John Doe
Member ID: XYZ123456789
Group Number: GRP-98765
Policy Number: POL-2024-001
`

// stubClassifier answers by filename and can delay each answer.
type stubClassifier struct {
	types  map[string]domain.DocumentType
	delays map[string]time.Duration
}

func (s stubClassifier) Classify(_ context.Context, _, filename string) domain.DocumentType {
	if d := s.delays[filename]; d > 0 {
		time.Sleep(d)
	}
	if t, ok := s.types[filename]; ok {
		return t
	}
	return domain.DocumentTypeUnknown
}

type panicAgent struct{ docType domain.DocumentType }

func (a panicAgent) DocumentType() domain.DocumentType { return a.docType }

func (a panicAgent) Extract(context.Context, string) (domain.ExtractedDocument, error) {
	panic("boom")
}

// agentOverrides replaces selected agents of a registry.
type agentOverrides struct {
	base      service.AgentLookup
	overrides map[domain.DocumentType]extraction.Agent
	missing   map[domain.DocumentType]bool
}

func (a agentOverrides) Get(t domain.DocumentType) (extraction.Agent, bool) {
	if a.missing[t] {
		return nil, false
	}
	if agent, ok := a.overrides[t]; ok {
		return agent, true
	}
	return a.base.Get(t)
}

func newDeps(t *testing.T, gen port.TextGenerator, cls service.DocumentClassifier) service.ProcessorDeps {
	t.Helper()
	agents, err := extraction.NewDefaultRegistry(gen, extraction.Options{})
	require.NoError(t, err)
	return service.ProcessorDeps{
		Classifier: cls,
		Agents:     agents,
		Validator:  validator.NewDefaultEngine(validator.DefaultRequiredTypes),
		Decider:    decision.NewEngine(decision.DefaultAutoApproveLimit, nil),
	}
}

func textDoc(name, text string) domain.RawDocument {
	return domain.RawDocument{FileName: name, ContentType: "text/plain", Size: int64(len(text)), Text: text}
}

func TestClaimProcessor_EmptyBatch(t *testing.T) {
	p := service.NewClaimProcessor(newDeps(t, new(mocks.MockTextGenerator), stubClassifier{}))

	claim, err := p.Process(context.Background(), uuid.Nil, nil)

	assert.Nil(t, claim)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestClaimProcessor_UsesRequestedID(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	cls := stubClassifier{types: map[string]domain.DocumentType{"bill.txt": domain.DocumentTypeBill}}
	p := service.NewClaimProcessor(newDeps(t, gen, cls))
	id := uuid.New()

	claim, err := p.Process(context.Background(), id, []domain.RawDocument{textDoc("bill.txt", billText)})

	require.NoError(t, err)
	assert.Equal(t, id, claim.ID)
}

func TestClaimProcessor_Approved(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	cls := stubClassifier{types: map[string]domain.DocumentType{
		"bill.txt": domain.DocumentTypeBill,
		"card.txt": domain.DocumentTypeIDCard,
	}}
	p := service.NewClaimProcessor(newDeps(t, gen, cls))

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		textDoc("bill.txt", billText),
		textDoc("card.txt", cardText),
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, claim.ID)
	require.Len(t, claim.Documents, 2)
	assert.True(t, claim.Validation.IsValid)
	assert.Empty(t, claim.Validation.MissingDocuments)
	assert.Equal(t, domain.DecisionApproved, claim.Decision.Status)
	assert.Equal(t, "Claim meets all requirements", claim.Decision.Reason)
	assert.Equal(t, 1750.5, claim.Decision.AmountApproved)
	assert.Equal(t, 0.0, claim.Decision.AmountRejected)
	assert.Equal(t, 2, claim.Metadata.DocumentsReceived)
	assert.Equal(t, 2, claim.Metadata.DocumentsProcessed)
	assert.False(t, claim.Metadata.ProcessedAt.IsZero())
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestClaimProcessor_PreservesInputOrder(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	cls := stubClassifier{
		types: map[string]domain.DocumentType{
			"a-bill.txt": domain.DocumentTypeBill,
			"b-card.txt": domain.DocumentTypeIDCard,
		},
		delays: map[string]time.Duration{
			"a-bill.txt": 60 * time.Millisecond,
			"b-card.txt": 30 * time.Millisecond,
		},
	}
	p := service.NewClaimProcessor(newDeps(t, gen, cls))

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		textDoc("a-bill.txt", billText),
		textDoc("b-card.txt", cardText),
		textDoc("c-note.txt", "hello"),
	})

	require.NoError(t, err)
	names := make([]string, 0, len(claim.Documents))
	for _, d := range claim.Documents {
		names = append(names, d.FileName)
	}
	assert.Equal(t, []string{"a-bill.txt", "b-card.txt", "c-note.txt"}, names)
	assert.Equal(t, domain.DocumentTypeBill, claim.Documents[0].DocumentType)
	assert.Equal(t, domain.DocumentTypeIDCard, claim.Documents[1].DocumentType)
}

func TestClaimProcessor_FailureDoesNotAbortBatch(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("backend down"))
	cls := stubClassifier{types: map[string]domain.DocumentType{
		"bill.txt":   domain.DocumentTypeBill,
		"broken.txt": domain.DocumentTypeBill,
		"card.txt":   domain.DocumentTypeIDCard,
	}}
	p := service.NewClaimProcessor(newDeps(t, gen, cls))

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		textDoc("bill.txt", billText),
		textDoc("broken.txt", "Total Amount: $5.00\n"),
		textDoc("card.txt", cardText),
	})

	require.NoError(t, err)
	require.Len(t, claim.Documents, 3)
	assert.True(t, claim.Documents[0].IsSuccess())
	assert.Equal(t, domain.OutcomeFailure, claim.Documents[1].Status)
	assert.Equal(t, domain.ErrorKindBackend, claim.Documents[1].ErrorKind)
	assert.True(t, claim.Documents[2].IsSuccess())

	// only successful bills count towards the total
	assert.Equal(t, domain.DecisionApproved, claim.Decision.Status)
	assert.Equal(t, 1750.5, claim.Decision.AmountApproved)
	assert.Equal(t, 1, claim.Metadata.DocumentsFailed)
	require.Len(t, claim.Metadata.ProcessingErrors, 1)
	assert.True(t, strings.HasPrefix(claim.Metadata.ProcessingErrors[0], "broken.txt: "))
}

func TestClaimProcessor_UnknownIsSkipped(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	cls := stubClassifier{types: map[string]domain.DocumentType{
		"bill.txt": domain.DocumentTypeBill,
		"card.txt": domain.DocumentTypeIDCard,
	}}
	p := service.NewClaimProcessor(newDeps(t, gen, cls))

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		textDoc("bill.txt", billText),
		textDoc("photo.txt", "a picture of a cat"),
		textDoc("card.txt", cardText),
	})

	require.NoError(t, err)
	skipped := claim.Documents[1]
	assert.Equal(t, domain.OutcomeSkipped, skipped.Status)
	assert.Equal(t, domain.DocumentTypeUnknown, skipped.DocumentType)
	assert.Equal(t, "unclassified", skipped.Error)

	assert.Equal(t, 3, claim.Metadata.DocumentsReceived)
	assert.Equal(t, 2, claim.Metadata.DocumentsProcessed)
	assert.Equal(t, 1, claim.Metadata.DocumentsSkipped)
	assert.Equal(t, 0, claim.Metadata.DocumentsFailed)
	assert.Equal(t, []domain.SkippedDocument{{FileName: "photo.txt", Reason: "unclassified"}}, claim.Metadata.Skipped)
	assert.True(t, claim.Validation.IsValid)
	assert.Equal(t, domain.DecisionApproved, claim.Decision.Status)
}

func TestClaimProcessor_MissingIDCardRejects(t *testing.T) {
	cls := stubClassifier{types: map[string]domain.DocumentType{"bill.txt": domain.DocumentTypeBill}}
	p := service.NewClaimProcessor(newDeps(t, new(mocks.MockTextGenerator), cls))

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{textDoc("bill.txt", billText)})

	require.NoError(t, err)
	assert.False(t, claim.Validation.IsValid)
	assert.Equal(t, []string{"insurance ID card"}, claim.Validation.MissingDocuments)
	assert.Equal(t, domain.DecisionRejected, claim.Decision.Status)
	assert.Equal(t, 1750.5, claim.Decision.AmountRejected)
}

func TestClaimProcessor_AboveLimitPending(t *testing.T) {
	cls := stubClassifier{types: map[string]domain.DocumentType{
		"bill.txt": domain.DocumentTypeBill,
		"card.txt": domain.DocumentTypeIDCard,
	}}
	p := service.NewClaimProcessor(newDeps(t, new(mocks.MockTextGenerator), cls))

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		textDoc("bill.txt", strings.Replace(billText, "$1,750.50", "$10,000.01", 1)),
		textDoc("card.txt", cardText),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionPending, claim.Decision.Status)
	assert.Equal(t, "Claim amount exceeds automatic approval limit", claim.Decision.Reason)
}

func TestClaimProcessor_PanicIsolated(t *testing.T) {
	cls := stubClassifier{types: map[string]domain.DocumentType{
		"bill.txt": domain.DocumentTypeBill,
		"card.txt": domain.DocumentTypeIDCard,
		"lab.txt":  domain.DocumentTypeLabReport,
	}}
	deps := newDeps(t, new(mocks.MockTextGenerator), cls)
	deps.Agents = agentOverrides{
		base:      deps.Agents,
		overrides: map[domain.DocumentType]extraction.Agent{domain.DocumentTypeLabReport: panicAgent{domain.DocumentTypeLabReport}},
	}
	p := service.NewClaimProcessor(deps)

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		textDoc("bill.txt", billText),
		textDoc("lab.txt", "LAB REPORT"),
		textDoc("card.txt", cardText),
	})

	require.NoError(t, err)
	assert.True(t, claim.Documents[0].IsSuccess())
	assert.Equal(t, domain.ErrorKindInternal, claim.Documents[1].ErrorKind)
	assert.Equal(t, domain.DocumentTypeLabReport, claim.Documents[1].DocumentType)
	assert.Contains(t, claim.Documents[1].Error, "boom")
	assert.True(t, claim.Documents[2].IsSuccess())
	assert.Equal(t, domain.DecisionApproved, claim.Decision.Status)
}

func TestClaimProcessor_NoAgent(t *testing.T) {
	cls := stubClassifier{types: map[string]domain.DocumentType{"rx.txt": domain.DocumentTypePrescription}}
	deps := newDeps(t, new(mocks.MockTextGenerator), cls)
	deps.Agents = agentOverrides{
		base:    deps.Agents,
		missing: map[domain.DocumentType]bool{domain.DocumentTypePrescription: true},
	}
	p := service.NewClaimProcessor(deps)

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{textDoc("rx.txt", "Rx")})

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailure, claim.Documents[0].Status)
	assert.Equal(t, domain.ErrorKindNoAgent, claim.Documents[0].ErrorKind)
}

func TestClaimProcessor_TextUnavailable(t *testing.T) {
	text := new(mocks.MockTextExtractor)
	text.On("Extract", mock.Anything, mock.MatchedBy(func(d domain.RawDocument) bool { return d.FileName == "scan.png" })).
		Return("", domain.ErrNoTextLayer)
	text.On("Extract", mock.Anything, mock.MatchedBy(func(d domain.RawDocument) bool { return d.FileName == "bill.pdf" })).
		Return(billText, nil)
	cls := stubClassifier{types: map[string]domain.DocumentType{
		"bill.pdf": domain.DocumentTypeBill,
		"scan.png": domain.DocumentTypeIDCard,
	}}
	deps := newDeps(t, new(mocks.MockTextGenerator), cls)
	deps.Text = text
	p := service.NewClaimProcessor(deps)

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		{FileName: "bill.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
		{FileName: "scan.png", ContentType: "image/png", Content: []byte{0x89}},
	})

	require.NoError(t, err)
	assert.True(t, claim.Documents[0].IsSuccess())
	assert.Equal(t, domain.ErrorKindTextUnavailable, claim.Documents[1].ErrorKind)
	assert.Equal(t, domain.DocumentTypeUnknown, claim.Documents[1].DocumentType)
	assert.Equal(t, domain.DecisionRejected, claim.Decision.Status)
	text.AssertExpectations(t)
}

func TestClaimProcessor_NoExtractorConfigured(t *testing.T) {
	cls := stubClassifier{types: map[string]domain.DocumentType{"bill.pdf": domain.DocumentTypeBill}}
	p := service.NewClaimProcessor(newDeps(t, new(mocks.MockTextGenerator), cls))

	claim, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{{FileName: "bill.pdf", Content: []byte("%PDF")}})

	require.NoError(t, err)
	assert.Equal(t, domain.ErrorKindTextUnavailable, claim.Documents[0].ErrorKind)
	assert.Contains(t, claim.Documents[0].Error, domain.ErrNoTextLayer.Error())
}

func TestClaimProcessor_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	cls := stubClassifier{types: map[string]domain.DocumentType{
		"bill.txt": domain.DocumentTypeBill,
		"card.txt": domain.DocumentTypeIDCard,
	}}
	deps := newDeps(t, new(mocks.MockTextGenerator), cls)
	deps.Metrics = m
	p := service.NewClaimProcessor(deps)

	_, err := p.Process(context.Background(), uuid.Nil, []domain.RawDocument{
		textDoc("bill.txt", billText),
		textDoc("card.txt", cardText),
		textDoc("note.txt", "?"),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `claimflow_pipeline_decisions_total{status="approved"} 1`)
	assert.Contains(t, out, `claimflow_pipeline_classifications_total{type="unknown"} 1`)
	assert.Contains(t, out, `claimflow_pipeline_claims_in_flight 0`)
}
