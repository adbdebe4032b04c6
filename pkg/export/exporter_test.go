package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Department", "From", "To", "Count"},
		Rows: []map[string]string{
			{"Department": "CSE", "From": "1001", "To": "1030", "Count": "30"},
			{"Department": "Manual Entry", "From": "A12", "To": "A12", "Count": "1"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Department,From,To,Count\nCSE,1001,1030,30\nManual Entry,A12,A12,1\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter("Office of Examination Cell").Render(sampleDataset(), "Consolidated Hall Plan")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Consolidated Hall Plan", "Plan")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Plan", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Consolidated Hall Plan", title)

	header, err := f.GetCellValue("Plan", "B2")
	require.NoError(t, err)
	assert.Equal(t, "From", header)

	value, err := f.GetCellValue("Plan", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Manual Entry", value)
}
