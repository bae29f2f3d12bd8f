// Package export renders report tables as Excel workbooks or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fieldforce-system/internal/database/models"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

func (t Table) FileName(f Format) string {
	return t.Sheet + "-report." + string(f)
}

func Write(w io.Writer, t Table, f Format) error {
	if f == FormatCSV {
		return writeCSV(w, t)
	}
	return writeXLSX(w, t)
}

func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(t.Header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func AttendanceTable(records []models.AttendanceRecord) Table {
	t := Table{
		Sheet:  "attendance",
		Header: []string{"Employee", "Date", "Check In", "Check Out", "Working Hours", "Status", "Location", "Fingerprint", "Manual", "Manual Reason"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.EmployeeName, r.Date, r.CheckIn, r.CheckOut, r.WorkingHours, string(r.Status),
			r.Location, yesNo(r.FingerprintVerified), yesNo(r.IsManual), r.ManualReason,
		})
	}
	return t
}

func VisitsTable(visits []models.Visit) Table {
	t := Table{
		Sheet:  "visits",
		Header: []string{"Employee", "Customer", "Contact", "Date", "Time", "Duration", "Purpose", "Status", "Location", "Notes"},
	}
	for _, v := range visits {
		t.Rows = append(t.Rows, []string{
			v.EmployeeName, v.CustomerName, v.ContactPerson, v.VisitDate, v.VisitTime,
			v.Duration, string(v.Purpose), string(v.Status), v.Location, v.Notes,
		})
	}
	return t
}

func EmployeesTable(employees []models.Employee) Table {
	t := Table{
		Sheet:  "employees",
		Header: []string{"Name", "Email", "Phone", "Department", "Position", "Status", "Customers", "Visits Today", "Join Date"},
	}
	for _, e := range employees {
		t.Rows = append(t.Rows, []string{
			e.Name, e.Email, e.Phone, e.Department, e.Position, string(e.Status),
			strconv.Itoa(e.CustomersAssigned), strconv.Itoa(e.VisitsToday), e.JoinDate,
		})
	}
	return t
}

func CustomersTable(customers []models.Customer) Table {
	t := Table{
		Sheet:  "customers",
		Header: []string{"Name", "Contact", "Email", "Phone", "Address", "Status", "Priority", "Registered", "Last Visit", "Next Visit", "Added By", "Registration Location"},
	}
	for _, c := range customers {
		t.Rows = append(t.Rows, []string{
			c.Name, c.Contact, c.Email, c.Phone, c.Address, string(c.Status), string(c.Priority),
			c.RegistrationDate, c.LastVisit, c.NextVisit, c.AddedBy, c.RegistrationLocation.Address,
		})
	}
	return t
}

// PerformanceRow is one employee's totals over a report period.
type PerformanceRow struct {
	Employee       string
	Department     string
	Visits         int
	Completed      int
	Customers      int
	Present        int
	Late           int
	AttendanceRate string
}

func PerformanceTable(rows []PerformanceRow) Table {
	t := Table{
		Sheet:  "performance",
		Header: []string{"Employee", "Department", "Visits", "Completed Visits", "Customers", "Present", "Late", "Attendance Rate (%)"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Employee, r.Department, strconv.Itoa(r.Visits), strconv.Itoa(r.Completed), strconv.Itoa(r.Customers),
			strconv.Itoa(r.Present), strconv.Itoa(r.Late), r.AttendanceRate,
		})
	}
	return t
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
