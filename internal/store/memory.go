package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/genesisqa/internal/schema"
)

// Memory holds every collection in process memory for the lifetime of the
// process. Reads return copies; nothing is ever removed.
type Memory struct {
	mu        sync.RWMutex
	documents []*schema.UploadedDocument
	testCases []schema.TestCase
	reports   []*schema.ComplianceReport
}

func NewMemory() *Memory {
	return &Memory{}
}

// Documents returns a DocumentRepository view of m.
func (m *Memory) Documents() DocumentRepository { return memoryDocuments{m} }

// TestCases returns a TestCaseRepository view of m.
func (m *Memory) TestCases() TestCaseRepository { return memoryTestCases{m} }

// Reports returns a ReportRepository view of m.
func (m *Memory) Reports() ReportRepository { return memoryReports{m} }

type memoryDocuments struct{ m *Memory }

func (r memoryDocuments) Add(ctx context.Context, doc *schema.UploadedDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *doc
	r.m.mu.Lock()
	r.m.documents = append(r.m.documents, &cp)
	r.m.mu.Unlock()
	return nil
}

func (r memoryDocuments) MarkProcessed(ctx context.Context, id string, requirements, testCases int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, d := range r.m.documents {
		if d.ID == id {
			d.Processed = true
			d.RequirementsCount = requirements
			d.TestCasesCount = testCases
			return nil
		}
	}
	return fmt.Errorf("document %s: %w", id, ErrNotFound)
}

func (r memoryDocuments) Get(ctx context.Context, id string) (*schema.UploadedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, d := range r.m.documents {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
}

func (r memoryDocuments) List(ctx context.Context) ([]schema.UploadedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]schema.UploadedDocument, len(r.m.documents))
	for i, d := range r.m.documents {
		out[i] = *d
	}
	return out, nil
}

type memoryTestCases struct{ m *Memory }

func (r memoryTestCases) Append(ctx context.Context, cases []schema.TestCase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	r.m.testCases = append(r.m.testCases, cases...)
	r.m.mu.Unlock()
	return nil
}

func (r memoryTestCases) List(ctx context.Context) ([]schema.TestCase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return append([]schema.TestCase(nil), r.m.testCases...), nil
}

func (r memoryTestCases) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return len(r.m.testCases), nil
}

type memoryReports struct{ m *Memory }

func (r memoryReports) Append(ctx context.Context, rep *schema.ComplianceReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.m.mu.Lock()
	r.m.reports = append(r.m.reports, rep)
	r.m.mu.Unlock()
	return nil
}

func (r memoryReports) List(ctx context.Context) ([]schema.ComplianceReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]schema.ComplianceReport, len(r.m.reports))
	for i, rep := range r.m.reports {
		out[i] = *rep
	}
	return out, nil
}
