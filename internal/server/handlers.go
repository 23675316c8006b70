package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dshills/genesisqa/internal/pipeline"
	"github.com/dshills/genesisqa/internal/render"
	"github.com/dshills/genesisqa/internal/report"
	"github.com/dshills/genesisqa/internal/schema"
	"github.com/dshills/genesisqa/internal/scrub"
)

const (
	uploadField    = "file"
	exportFilename = "genesis_qa_test_cases.csv"
)

type errorBody struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	FileID            string `json:"file_id"`
	RequirementsCount int    `json:"requirements_count"`
	TestCasesCount    int    `json:"test_cases_count"`
}

func (s *Server) uploadFile(c echo.Context) error {
	up, err := readUpload(c)
	if err != nil {
		return err
	}

	res, err := s.svc.Process(c.Request().Context(), up)
	if err != nil {
		var pe *pipeline.Error
		if errors.As(err, &pe) && pe.Kind.ClientError() {
			return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorBody{Error: s.errorMessage(err)})
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Success:           true,
		Message:           res.Message(),
		FileID:            res.DocumentID,
		RequirementsCount: res.RequirementsCount,
		TestCasesCount:    res.TestCasesCount,
	})
}

// readUpload pulls the "file" part out of a multipart request. A part sent
// with an empty filename is parsed as a plain form value; it is reported as
// present so the pipeline can reject it as "No file selected".
func readUpload(c echo.Context) (pipeline.Upload, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return pipeline.Upload{}, err
			}
			return pipeline.Upload{}, echo.NewHTTPError(http.StatusBadRequest, "malformed multipart body").SetInternal(err)
		}
		if form := c.Request().MultipartForm; form != nil {
			if _, ok := form.Value[uploadField]; ok {
				return pipeline.Upload{Present: true}, nil
			}
		}
		return pipeline.Upload{}, nil
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return pipeline.Upload{}, err
	}
	return pipeline.Upload{Present: true, Filename: fh.Filename, Data: data}, nil
}

func (s *Server) listTestCases(c echo.Context) error {
	cases, err := s.cases.List(c.Request().Context())
	if err != nil {
		return err
	}
	if tag := c.QueryParam("tag"); tag != "" {
		cases = report.FilterByTag(cases, tag)
	}
	if cases == nil {
		cases = []schema.TestCase{}
	}
	return c.JSON(http.StatusOK, cases)
}

func (s *Server) exportTestCases(c echo.Context) error {
	cases, err := s.cases.List(c.Request().Context())
	if err != nil {
		return err
	}
	data, err := render.TestCasesCSV(cases)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportFilename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) uploadStatus(c echo.Context) error {
	docs, err := s.docs.List(c.Request().Context())
	if err != nil {
		return err
	}
	if s.cfg.RedactContent {
		for i := range docs {
			docs[i].Content = scrub.Text(docs[i].Content)
		}
	}
	return c.JSON(http.StatusOK, docs)
}

func (s *Server) listReports(c echo.Context) error {
	reports, err := s.reports.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reports)
}
