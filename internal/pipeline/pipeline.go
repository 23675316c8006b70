package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/genesisqa/internal/document"
	"github.com/dshills/genesisqa/internal/extract"
	"github.com/dshills/genesisqa/internal/generate"
	"github.com/dshills/genesisqa/internal/metrics"
	"github.com/dshills/genesisqa/internal/report"
	"github.com/dshills/genesisqa/internal/schema"
	"github.com/dshills/genesisqa/internal/store"
)

var (
	errNoFile     = errors.New("No file uploaded")
	errNoFileName = errors.New("No file selected")
)

// Upload is one file received at the boundary. Present is false when the
// request carried no file at all.
type Upload struct {
	Present  bool
	Filename string
	Data     []byte
}

// Result summarizes a processed upload.
type Result struct {
	DocumentID        string
	RequirementsCount int
	TestCasesCount    int
	Report            *schema.ComplianceReport
}

// Message is the human-readable success line returned to uploaders.
func (r *Result) Message() string {
	return fmt.Sprintf("File processed successfully! Generated %d test cases.", r.TestCasesCount)
}

// Service runs uploads through extract → generate → report and commits
// each stage to its repository as soon as it completes.
type Service struct {
	docs    store.DocumentRepository
	cases   store.TestCaseRepository
	reports store.ReportRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu  sync.Mutex
	gen *generate.Generator
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records upload outcomes and batch statistics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used for all timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service. Test-case numbering continues from the number of
// cases already held by the test-case repository.
func New(ctx context.Context, docs store.DocumentRepository, cases store.TestCaseRepository, reports store.ReportRepository, opts ...Option) (*Service, error) {
	s := &Service{
		docs:    docs,
		cases:   cases,
		reports: reports,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	issued, err := cases.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting stored test cases: %w", err)
	}
	s.gen = generate.New(generate.NewCounter(issued), generate.WithClock(s.now))
	return s, nil
}

// Process handles one upload to completion. Calls are serialized so test
// case ids and commit order stay monotonic when the host serves requests
// concurrently. Commit order: document, test cases, processed flag, report.
// A failure after the document commit leaves earlier commits in place.
func (s *Service) Process(ctx context.Context, up Upload) (*Result, error) {
	res, err := s.process(ctx, up)
	s.record(err)
	return res, err
}

func (s *Service) process(ctx context.Context, up Upload) (*Result, error) {
	if !up.Present {
		return nil, newError(KindMissingFile, errNoFile)
	}
	if up.Filename == "" {
		return nil, newError(KindMissingFile, errNoFileName)
	}
	doc, err := document.Decode(up.Filename, up.Data)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedType) {
			return nil, newError(KindUnsupportedType, err)
		}
		return nil, newError(KindDecode, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := &schema.UploadedDocument{
		ID:          uuid.New().String(),
		Filename:    doc.Filename,
		UploadDate:  schema.NewTimestamp(s.now()),
		Content:     doc.Text,
		ContentHash: doc.Hash,
		SizeBytes:   doc.SizeBytes,
	}
	if err := s.docs.Add(ctx, meta); err != nil {
		return nil, newError(KindProcessing, fmt.Errorf("storing document: %w", err))
	}

	reqs := extract.Requirements(doc.Text)
	batch := s.gen.TestCases(reqs)
	if err := s.cases.Append(ctx, batch); err != nil {
		return nil, newError(KindProcessing, fmt.Errorf("storing test cases: %w", err))
	}
	if err := s.docs.MarkProcessed(ctx, meta.ID, len(reqs), len(batch)); err != nil {
		return nil, newError(KindProcessing, fmt.Errorf("marking document processed: %w", err))
	}

	rep := report.Build(batch, s.now())
	if err := s.reports.Append(ctx, rep); err != nil {
		return nil, newError(KindProcessing, fmt.Errorf("storing compliance report: %w", err))
	}

	s.metrics.Batch(len(reqs), len(batch), mentions(rep), rep.ComplianceScore)
	s.logger.Info("document processed",
		zap.String("file_id", meta.ID),
		zap.String("filename", meta.Filename),
		zap.Int("requirements", len(reqs)),
		zap.Int("test_cases", len(batch)),
		zap.Float64("compliance_score", rep.ComplianceScore),
	)

	return &Result{
		DocumentID:        meta.ID,
		RequirementsCount: len(reqs),
		TestCasesCount:    len(batch),
		Report:            rep,
	}, nil
}

func (s *Service) record(err error) {
	if err == nil {
		s.metrics.Upload(metrics.OutcomeSuccess)
		return
	}
	var pe *Error
	if errors.As(err, &pe) && pe.Kind.ClientError() {
		s.metrics.Upload(metrics.OutcomeClientError)
		s.logger.Debug("upload rejected", zap.Stringer("kind", pe.Kind), zap.Error(err))
		return
	}
	s.metrics.Upload(metrics.OutcomeFailure)
	s.logger.Warn("upload failed", zap.Error(err))
}

func mentions(rep *schema.ComplianceReport) map[string]int {
	out := make(map[string]int, len(rep.ComplianceCoverage))
	for std, cov := range rep.ComplianceCoverage {
		out[std] = cov.Count
	}
	return out
}

// Preview derives a suite from text without touching any repository.
// seq numbers the generated cases.
func Preview(source, text string, seq generate.Sequence, now time.Time) *schema.Suite {
	reqs := extract.Requirements(text)
	cases := generate.New(seq, generate.WithClock(func() time.Time { return now })).TestCases(reqs)
	return &schema.Suite{
		Source:       source,
		Requirements: reqs,
		TestCases:    cases,
		Report:       report.Build(cases, now),
	}
}
