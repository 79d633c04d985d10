// Package export renders rosters as XLSX workbooks for the office.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"sanctuary/internal/application/projections"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var eventRosterHeader = []string{
	"Type", "Name", "Phone", "Email", "First Time", "Contact OK", "Children", "Prayer Request", "Checked In",
}

var programRosterHeader = []string{
	"Kind", "Name", "Age", "Allergies", "Notes", "Emergency Contact", "Emergency Phone", "Checked In", "Picked Up", "Picked Up By",
}

// EventRoster renders an event roster with a totals block under the rows.
func EventRoster(r projections.GetEventRosterResult, loc *time.Location) ([]byte, error) {
	rows := make([][]any, 0, len(r.Entries)+6)
	for _, e := range r.Entries {
		rows = append(rows, []any{
			e.Type, e.Name, e.Phone, e.Email, yesNo(e.FirstTime), yesNo(e.ContactOK),
			e.ChildrenCount, e.PrayerRequest, clock(e.CreatedAt, loc),
		})
	}
	rows = append(rows,
		[]any{},
		[]any{"Total", r.Totals.Total},
		[]any{"Members", r.Totals.Members},
		[]any{"Guests", r.Totals.Guests},
		[]any{"First-time guests", r.Totals.FirstTimeGuests},
		[]any{"Children", r.Totals.Children},
	)
	title := r.EventTitle
	if title == "" {
		title = "Event"
	}
	return workbook(sheetName(title), eventRosterHeader, []float64{10, 25, 16, 28, 11, 11, 10, 40, 12}, rows)
}

// ProgramRoster renders a program roster with present and picked-up counts.
func ProgramRoster(r projections.GetProgramRosterResult, loc *time.Location) ([]byte, error) {
	rows := make([][]any, 0, len(r.Entries)+3)
	for _, e := range r.Entries {
		pickedUp := ""
		if e.PickedUp {
			pickedUp = clock(e.PickedUpAt, loc)
		}
		rows = append(rows, []any{
			e.Kind, e.Name, e.Age, e.Allergies, e.Notes, e.EmergencyContact.Name, e.EmergencyContact.Phone,
			clock(e.CheckedInAt, loc), pickedUp, e.PickedUpBy,
		})
	}
	rows = append(rows,
		[]any{},
		[]any{"Present", r.Present},
		[]any{"Picked up", r.PickedUp},
	)
	name := sheetName(string(r.Session.Program) + " " + r.Session.ServiceDate)
	return workbook(name, programRosterHeader, []float64{8, 25, 6, 25, 30, 22, 16, 12, 12, 22}, rows)
}

func workbook(sheet string, header []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims s to Excel's 31-character limit and drops forbidden runes.
func sheetName(s string) string {
	out := make([]rune, 0, 31)
	for _, r := range s {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return "Roster"
	}
	return string(out)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func clock(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04")
}
