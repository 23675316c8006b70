package store

import (
	"context"
	"errors"

	"github.com/dshills/genesisqa/internal/schema"
)

// ErrNotFound is returned when a document id is unknown.
var ErrNotFound = errors.New("not found")

type DocumentRepository interface {
	Add(ctx context.Context, doc *schema.UploadedDocument) error
	MarkProcessed(ctx context.Context, id string, requirements, testCases int) error
	Get(ctx context.Context, id string) (*schema.UploadedDocument, error)
	List(ctx context.Context) ([]schema.UploadedDocument, error)
}

type TestCaseRepository interface {
	Append(ctx context.Context, cases []schema.TestCase) error
	List(ctx context.Context) ([]schema.TestCase, error)
	Count(ctx context.Context) (int, error)
}

type ReportRepository interface {
	Append(ctx context.Context, r *schema.ComplianceReport) error
	List(ctx context.Context) ([]schema.ComplianceReport, error)
}
