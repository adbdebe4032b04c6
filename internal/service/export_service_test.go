package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/dto"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/export"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type stubPlanReader struct {
	rows []dto.ConsolidatedRow
	plan *dto.HallPlan
	err  error
}

func (s *stubPlanReader) Consolidated(ctx context.Context, hallID *int64) ([]dto.ConsolidatedRow, error) {
	return s.rows, s.err
}

func (s *stubPlanReader) HallPlan(ctx context.Context, hallID int64) (*dto.HallPlan, error) {
	return s.plan, s.err
}

type capturingPDF struct {
	data  export.Dataset
	title string
}

func (c *capturingPDF) Render(data export.Dataset, title string) ([]byte, error) {
	c.data = data
	c.title = title
	return []byte("%PDF-stub"), nil
}

func newExportService(reader planReader, pdf pdfRenderer) *ExportService {
	svc := NewExportService(reader, ExportConfig{}, nil, nil, pdf, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceConsolidatedCSV(t *testing.T) {
	reader := &stubPlanReader{rows: []dto.ConsolidatedRow{
		{HallID: 1, HallName: "Hall A", Floor: "GROUND FLOOR", DepartmentName: "CSE", FromRoll: "1001", ToRoll: "1020", Count: 20},
	}}
	svc := newExportService(reader, nil)

	result, err := svc.Consolidated(context.Background(), dto.ExportRequest{Format: "CSV"})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "consolidated-hall-plan-20260302.csv", result.Filename)
	lines := strings.Split(strings.TrimSpace(string(result.Body)), "\n")
	assert.Equal(t, "Dept.,Reg. No. From,Reg. No. To,No. of Candidates,Hall No,Floor", lines[0])
	assert.Equal(t, "CSE,1001,1020,20,Hall A,GROUND FLOOR", lines[1])
}

func TestExportServiceConsolidatedPDFDefaults(t *testing.T) {
	reader := &stubPlanReader{rows: []dto.ConsolidatedRow{{HallName: "Hall A", DepartmentName: "CSE", FromRoll: "1", ToRoll: "2", Count: 2}}}
	pdf := &capturingPDF{}
	svc := newExportService(reader, pdf)

	result, err := svc.Consolidated(context.Background(), dto.ExportRequest{Session: "02/03/2026 | FN"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "Consolidated Hall Plan", pdf.title)
	assert.Equal(t, "Examcell Coordinator", pdf.data.Footer)
	assert.Equal(t, []string{"Date / Session : 02/03/2026 | FN", "Generated: 02/03/2026 09:30"}, pdf.data.Notes)
}

func TestExportServiceConsolidatedXLSX(t *testing.T) {
	reader := &stubPlanReader{rows: []dto.ConsolidatedRow{{HallName: "Hall A", DepartmentName: "CSE", FromRoll: "1", ToRoll: "2", Count: 2}}}
	svc := newExportService(reader, nil)

	result, err := svc.Consolidated(context.Background(), dto.ExportRequest{Format: "xlsx"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Filename, ".xlsx"))
	assert.NotEmpty(t, result.Body)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(&stubPlanReader{}, nil)
	_, err := svc.Consolidated(context.Background(), dto.ExportRequest{Format: "docx"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportServiceConsolidatedEmpty(t *testing.T) {
	svc := newExportService(&stubPlanReader{}, nil)
	_, err := svc.Consolidated(context.Background(), dto.ExportRequest{Format: "csv"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceHallSheet(t *testing.T) {
	reader := &stubPlanReader{plan: &dto.HallPlan{
		Hall:     models.Hall{ID: 3, Name: "Lab 2/East", Rows: 1, Columns: 1, SeatsPerBench: 2},
		Capacity: 2,
		Occupied: 1,
		Seats: []dto.SeatView{
			{Row: 1, Column: 1, BenchPosition: 2, StudentRollNumber: "1001", DepartmentName: "CSE"},
		},
	}}
	svc := newExportService(reader, nil)

	result, err := svc.HallSheet(context.Background(), 3, dto.ExportRequest{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "Lab_2-East-seating-plan-20260302.csv", result.Filename)
	assert.Contains(t, string(result.Body), "1,1,2,1001,CSE")
}
