package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pmadmin/internal/models"
)

func sampleReports() []models.Report {
	return []models.Report{
		{ID: "1", ProjectName: "Website", ProjectStatus: "Active", TotalTasks: 4, CompletedTasks: 1, PendingTasks: 3, CompletionPercentage: 25},
		{ID: "2", ProjectName: "Mobile", ProjectStatus: "On Hold", TotalTasks: 2, CompletedTasks: 1, PendingTasks: 1, CompletionPercentage: 50},
	}
}

func TestReportRows(t *testing.T) {
	rows := ReportRows(sampleReports())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Website", "Active", "4", "1", "3", "25"}, rows[0])
	assert.Equal(t, []string{"Mobile", "On Hold", "2", "1", "1", "50"}, rows[1])
}

func TestReportRowsFractionalPercentage(t *testing.T) {
	rows := ReportRows([]models.Report{{ProjectName: "P", CompletionPercentage: 33.33}})
	assert.Equal(t, "33.33", rows[0][5])
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	err := CSV(&buf, ReportHeaders, ReportRows(sampleReports()))
	require.NoError(t, err)

	want := "Project Name,Project Status,Total Tasks,Completed Tasks,Pending Tasks,Completion (%)\n" +
		"Website,Active,4,1,3,25\n" +
		"Mobile,On Hold,2,1,1,50"
	assert.Equal(t, want, buf.String())
}

func TestPDFProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	err := PDF(&buf, "Project Report", ReportHeaders, ReportRows(sampleReports()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWorkbookRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := Workbook(&buf, "Report", ReportHeaders, ReportRows(sampleReports()))
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Project Name", header)

	cell, err := f.GetCellValue("Report", "B3")
	require.NoError(t, err)
	assert.Equal(t, "On Hold", cell)
}
