package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Therapist workload",
		Headers: []string{"therapist", "hours", "status"},
		Rows: []map[string]string{
			{"therapist": "Ana", "hours": "8.25", "status": "near_limit"},
			{"therapist": "Bruno", "status": "available"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "therapist,hours,status\nAna,8.25,near_limit\nBruno,,available\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", ContentType(FormatPDF))
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
}
