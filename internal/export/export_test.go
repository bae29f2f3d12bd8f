package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"

	"fieldforce-system/internal/database/models"
)

var sampleVisits = []models.Visit{
	{EmployeeName: "John Smith", CustomerName: "ABC Corporation", ContactPerson: "James Wilson", VisitDate: "2024-01-22", Purpose: models.PurposeProductDemo, Status: models.VisitCompleted, Notes: "Follow-up, next week"},
	{EmployeeName: "Emily Davis", CustomerName: "Tech Solutions Inc", VisitDate: "2024-01-22", Purpose: models.PurposeSupportVisit, Status: models.VisitCompleted},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, VisitsTable(sampleVisits), FormatCSV); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Employee" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[1][9] != "Follow-up, next week" {
		t.Fatalf("notes not preserved: %q", rows[1][9])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	table := VisitsTable(sampleVisits)
	if err := Write(&buf, table, FormatXLSX); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("visits")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 || rows[2][1] != "Tech Solutions Inc" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatXLSX {
		t.Fatalf("empty format should default to xlsx")
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
	if got := AttendanceTable(nil).FileName(FormatCSV); got != "attendance-report.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
}
