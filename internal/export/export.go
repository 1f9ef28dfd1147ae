// Package export renders the administrator's complaint listing as a
// spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/sakif/ncps/internal/model"
)

// SheetName is the single worksheet of the export.
const SheetName = "Complaints"

// ContentType is the MIME type of the bytes returned by ComplaintsXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var columns = []struct {
	header string
	width  float64
	value  func(c model.AdminComplaint) any
}{
	{"ID", 22, func(c model.AdminComplaint) any { return c.ID }},
	{"Created", 20, func(c model.AdminComplaint) any { return c.CreatedAt.Local().Format("2006-01-02 15:04:05") }},
	{"User", 20, func(c model.AdminComplaint) any { return c.UserName }},
	{"Email", 28, func(c model.AdminComplaint) any { return c.UserEmail }},
	{"Service", 22, func(c model.AdminComplaint) any { return c.ServiceName }},
	{"Category", 24, func(c model.AdminComplaint) any { return c.CategoryLabel }},
	{"Title", 30, func(c model.AdminComplaint) any { return c.Title }},
	{"Description", 50, func(c model.AdminComplaint) any { return c.Description }},
	{"Status", 14, func(c model.AdminComplaint) any { return c.Status }},
	{"Result", 30, func(c model.AdminComplaint) any { return c.Result }},
	{"Attachment", 30, func(c model.AdminComplaint) any { return c.FilePath }},
	{"Latitude", 12, func(c model.AdminComplaint) any {
		if c.Location == nil {
			return ""
		}
		return c.Location.Lat
	}},
	{"Longitude", 12, func(c model.AdminComplaint) any {
		if c.Location == nil {
			return ""
		}
		return c.Location.Lng
	}},
	{"Amber Alert", 50, func(c model.AdminComplaint) any { return c.AmberSMS }},
}

// ComplaintsXLSX writes one header row and one row per complaint, in the
// order given. The header is bold, filled and frozen.
func ComplaintsXLSX(complaints []model.AdminComplaint) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("export: creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: removing default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("export: creating header style: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, col.header); err != nil {
			return nil, fmt.Errorf("export: header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("export: header style %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, name, name, col.width); err != nil {
			return nil, fmt.Errorf("export: column width %s: %w", name, err)
		}
	}

	for r, c := range complaints {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = col.value(c)
		}
		if err := f.SetSheetRow(SheetName, "A"+strconv.Itoa(r+2), &row); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", r+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("export: freezing header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export: writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
