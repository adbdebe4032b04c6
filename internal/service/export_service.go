package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/pkg/export"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var contentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var consolidatedHeaders = []string{"Dept.", "Reg. No. From", "Reg. No. To", "No. of Candidates", "Hall No", "Floor"}

var hallSheetHeaders = []string{"Row", "Bench", "Seat", "Roll Number", "Department"}

type planReader interface {
	Consolidated(ctx context.Context, hallID *int64) ([]dto.ConsolidatedRow, error)
	HallPlan(ctx context.Context, hallID int64) (*dto.HallPlan, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, title, sheet string) ([]byte, error)
}

// ExportConfig tunes rendered documents.
type ExportConfig struct {
	Footer string
}

// ExportService renders seating plans as downloadable documents.
type ExportService struct {
	plans     planReader
	csv       csvRenderer
	pdf       pdfRenderer
	xlsx      xlsxRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(plans planReader, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if cfg.Footer == "" {
		cfg.Footer = "Examcell Coordinator"
	}
	return &ExportService{
		plans:     plans,
		csv:       csv,
		pdf:       pdf,
		xlsx:      xlsx,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Consolidated renders the consolidated hall plan.
func (s *ExportService) Consolidated(ctx context.Context, req dto.ExportRequest) (*dto.ExportResult, error) {
	format, err := s.format(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.plans.Consolidated(ctx, req.HallID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no seating assignments found; generate seating plans first")
	}

	data := export.Dataset{Headers: consolidatedHeaders, Footer: s.cfg.Footer, Notes: s.notes(req.Session)}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Dept.":             row.DepartmentName,
			"Reg. No. From":     row.FromRoll,
			"Reg. No. To":       row.ToRoll,
			"No. of Candidates": strconv.Itoa(row.Count),
			"Hall No":           row.HallName,
			"Floor":             row.Floor,
		})
	}

	name := "consolidated-hall-plan"
	if req.HallID != nil {
		name = sanitizeFilename(rows[0].HallName) + "-consolidated-plan"
	}
	return s.render(format, data, "Consolidated Hall Plan", name)
}

// HallSheet renders one hall's seat list.
func (s *ExportService) HallSheet(ctx context.Context, hallID int64, req dto.ExportRequest) (*dto.ExportResult, error) {
	format, err := s.format(req)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.HallPlan(ctx, hallID)
	if err != nil {
		return nil, err
	}
	if len(plan.Seats) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no seating data available for this hall")
	}

	data := export.Dataset{
		Headers: hallSheetHeaders,
		Footer:  s.cfg.Footer,
		Notes:   append([]string{fmt.Sprintf("%s | %s | %d of %d seats", plan.Hall.Name, FloorOf(plan.Hall), plan.Occupied, plan.Capacity)}, s.notes(req.Session)...),
	}
	for _, seat := range plan.Seats {
		data.Rows = append(data.Rows, map[string]string{
			"Row":         strconv.Itoa(seat.Row),
			"Bench":       strconv.Itoa(seat.Column),
			"Seat":        strconv.Itoa(seat.BenchPosition),
			"Roll Number": seat.StudentRollNumber,
			"Department":  seat.DepartmentName,
		})
	}

	return s.render(format, data, "Hall Seating Plan", sanitizeFilename(plan.Hall.Name)+"-seating-plan")
}

func (s *ExportService) format(req dto.ExportRequest) (string, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be one of csv, pdf, xlsx")
	}
	if req.Format == "" {
		return FormatPDF, nil
	}
	return req.Format, nil
}

func (s *ExportService) notes(session string) []string {
	notes := []string{}
	if session = strings.TrimSpace(session); session != "" {
		notes = append(notes, "Date / Session : "+session)
	}
	return append(notes, "Generated: "+s.now().Format("02/01/2006 15:04"))
}

func (s *ExportService) render(format string, data export.Dataset, title, name string) (*dto.ExportResult, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatCSV:
		body, err = s.csv.Render(data)
	case FormatPDF:
		body, err = s.pdf.Render(data, title)
	case FormatXLSX:
		body, err = s.xlsx.Render(data, strings.ToUpper(title), "Plan")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported format "+format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render document")
	}

	filename := fmt.Sprintf("%s-%s.%s", name, s.now().Format("20060102"), format)
	s.logger.Info("seating plan exported", zap.String("file", filename), zap.Int("rows", len(data.Rows)))
	return &dto.ExportResult{Filename: filename, ContentType: contentTypes[format], Body: body}, nil
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "hall"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
