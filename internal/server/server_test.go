package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/genesisqa/internal/config"
	"github.com/dshills/genesisqa/internal/metrics"
	"github.com/dshills/genesisqa/internal/pipeline"
	"github.com/dshills/genesisqa/internal/schema"
	"github.com/dshills/genesisqa/internal/store"
)

const sampleText = "The system shall authenticate all users before granting access. This is a short note."

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Listen:         ":0",
		MaxUploadBytes: 1 << 20,
		RedactErrors:   true,
	}
}

type fixture struct {
	srv *Server
	mem *store.Memory
	m   *metrics.Metrics
}

func newFixture(t *testing.T, cfg config.ServerConfig, reports store.ReportRepository) *fixture {
	t.Helper()
	mem := store.NewMemory()
	if reports == nil {
		reports = mem.Reports()
	}
	m := metrics.New()
	svc, err := pipeline.New(context.Background(), mem.Documents(), mem.TestCases(), reports,
		pipeline.WithMetrics(m),
		pipeline.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	srv := New(cfg, Deps{
		Service:   svc,
		Documents: mem.Documents(),
		TestCases: mem.TestCases(),
		Reports:   reports,
		Metrics:   m,
	})
	return &fixture{srv: srv, mem: mem, m: m}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload_file", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestUploadFile_Success(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	rec := f.do(uploadRequest(t, "reqs.txt", []byte(sampleText)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "File processed successfully! Generated 2 test cases.", resp.Message)
	assert.Equal(t, 1, resp.RequirementsCount)
	assert.Equal(t, 2, resp.TestCasesCount)
	assert.NotEmpty(t, resp.FileID)

	doc, err := f.mem.Documents().Get(context.Background(), resp.FileID)
	require.NoError(t, err)
	assert.True(t, doc.Processed)
	assert.Equal(t, "reqs.txt", doc.Filename)
}

func TestUploadFile_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
		want string
	}{
		{
			name: "no multipart body",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/upload_file", nil)
			},
			want: "No file uploaded",
		},
		{
			name: "other field only",
			req: func(t *testing.T) *http.Request {
				var body bytes.Buffer
				w := multipart.NewWriter(&body)
				require.NoError(t, w.WriteField("note", "hello"))
				require.NoError(t, w.Close())
				req := httptest.NewRequest(http.MethodPost, "/upload_file", &body)
				req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
				return req
			},
			want: "No file uploaded",
		},
		{
			name: "empty filename",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "", []byte(sampleText))
			},
			want: "No file selected",
		},
		{
			name: "wrong extension",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "reqs.pdf", []byte(sampleText))
			},
			want: "Only .txt files are supported in this demo",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testConfig(), nil)
			rec := f.do(tt.req(t))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec))

			docs, err := f.mem.Documents().List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestUploadFile_DecodeFailureIs500(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	rec := f.do(uploadRequest(t, "bad.txt", []byte{'o', 'k', 0xff, 0xfe}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "bad.txt")
}

type failingReports struct{}

func (failingReports) Append(context.Context, *schema.ComplianceReport) error {
	return errors.New("report backend rejected write: password=hunter2")
}

func (failingReports) List(context.Context) ([]schema.ComplianceReport, error) {
	return []schema.ComplianceReport{}, nil
}

func TestUploadFile_ProcessingFailureScrubbed(t *testing.T) {
	f := newFixture(t, testConfig(), failingReports{})

	rec := f.do(uploadRequest(t, "reqs.txt", []byte(sampleText)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeError(t, rec)
	assert.Contains(t, msg, "storing compliance report")
	assert.Contains(t, msg, "[REDACTED]")
	assert.NotContains(t, msg, "hunter2")
}

func TestUploadFile_ProcessingFailureUnscrubbed(t *testing.T) {
	cfg := testConfig()
	cfg.RedactErrors = false
	f := newFixture(t, cfg, failingReports{})

	rec := f.do(uploadRequest(t, "reqs.txt", []byte(sampleText)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "password=hunter2")
}

func TestUploadFile_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 64
	f := newFixture(t, cfg, nil)

	rec := f.do(uploadRequest(t, "big.txt", bytes.Repeat([]byte("The system shall scale. "), 20)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestListTestCases(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/test_cases", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	require.Equal(t, http.StatusOK, f.do(uploadRequest(t, "a.txt", []byte(sampleText))).Code)
	require.Equal(t, http.StatusOK, f.do(uploadRequest(t, "b.txt", []byte("The user must see a clinical summary page"))).Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/test_cases", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cases []schema.TestCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cases))
	require.Len(t, cases, 4)
	for i, want := range []string{"TC-001", "TC-002", "TC-003", "TC-004"} {
		assert.Equal(t, want, cases[i].ID)
	}
	assert.Equal(t, "2024-05-01 09:30:00", cases[0].CreatedDate.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/test_cases?tag=HIPAA", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cases = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cases))
	require.Len(t, cases, 2)
	assert.Equal(t, "TC-003", cases[0].ID)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/test_cases?tag=GDPR", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestExportTestCases(t *testing.T) {
	f := newFixture(t, testConfig(), nil)
	require.Equal(t, http.StatusOK, f.do(uploadRequest(t, "a.txt", []byte(sampleText))).Code)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/test_cases/export.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), exportFilename)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Title,Description,Priority,Expected Result,Compliance Tags,Created Date", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "TC-001,Test Case for REQ-001,"))
}

func TestUploadStatus(t *testing.T) {
	text := "The system must store the admin password=hunter2 safely"

	t.Run("content returned verbatim by default", func(t *testing.T) {
		f := newFixture(t, testConfig(), nil)
		require.Equal(t, http.StatusOK, f.do(uploadRequest(t, "a.txt", []byte(text))).Code)

		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/upload_status", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var docs []schema.UploadedDocument
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, text, docs[0].Content)
		assert.True(t, docs[0].Processed)
		assert.Equal(t, 1, docs[0].RequirementsCount)
		assert.Equal(t, 2, docs[0].TestCasesCount)
	})

	t.Run("content scrubbed when configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.RedactContent = true
		f := newFixture(t, cfg, nil)
		require.Equal(t, http.StatusOK, f.do(uploadRequest(t, "a.txt", []byte(text))).Code)

		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/upload_status", nil))
		var docs []schema.UploadedDocument
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
		require.Len(t, docs, 1)
		assert.NotContains(t, docs[0].Content, "hunter2")

		stored, err := f.mem.Documents().Get(context.Background(), docs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, text, stored.Content, "stored content is untouched")
	})
}

func TestListReports(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/compliance_reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	require.Equal(t, http.StatusOK, f.do(uploadRequest(t, "a.txt", []byte(sampleText))).Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/compliance_reports", nil))
	var reports []schema.ComplianceReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, 24.0, reports[0].ComplianceScore)
	assert.Equal(t, 2, reports[0].TotalTestCases)
	require.Contains(t, reports[0].ComplianceCoverage, "General-Compliance")
	assert.Equal(t, []string{"TC-001", "TC-002"}, reports[0].ComplianceCoverage["General-Compliance"].TestCases)
}

func TestHealthzAndMetrics(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	f.do(uploadRequest(t, "a.txt", []byte(sampleText)))
	f.do(uploadRequest(t, "a.pdf", []byte(sampleText)))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `genesisqa_uploads_total{outcome="success"} 1`)
	assert.Contains(t, body, `genesisqa_uploads_total{outcome="client_error"} 1`)
}

func TestUnknownRouteIsJSON(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestUploadFile_HandlerDirect(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(uploadRequest(t, "reqs.txt", []byte(sampleText)), rec)
	require.NoError(t, f.srv.uploadFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
