package service

import (
	"fmt"
	"io"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/xuri/excelize/v2"
)

const scheduleSheet = "Schedule of Tests"

type scheduleColumn struct {
	Label string
	Width float64
	Value func(r model.ScheduleRow) any
}

var scheduleColumns = []scheduleColumn{
	{"Board", 10, func(r model.ScheduleRow) any { return r.BoardID }},
	{"Circuit", 8, func(r model.ScheduleRow) any { return r.CircuitNumber }},
	{"Designation", 28, func(r model.ScheduleRow) any { return r.CircuitDesignation }},
	{"Type of wiring", 14, func(r model.ScheduleRow) any { return r.TypeOfWiring }},
	{"Ref. method", 10, func(r model.ScheduleRow) any { return r.ReferenceMethod }},
	{"Points", 8, func(r model.ScheduleRow) any { return r.PointsServed }},
	{"Live (mm²)", 10, func(r model.ScheduleRow) any { return r.LiveSize }},
	{"CPC (mm²)", 10, func(r model.ScheduleRow) any { return r.CpcSize }},
	{"BS (EN)", 12, func(r model.ScheduleRow) any { return r.BsStandard }},
	{"Device type", 10, func(r model.ScheduleRow) any { return r.ProtectiveDeviceType }},
	{"Rating (A)", 10, func(r model.ScheduleRow) any { return r.ProtectiveDeviceRating }},
	{"kA", 8, func(r model.ScheduleRow) any { return r.ProtectiveDeviceKaRating }},
	{"Max Zs", 10, func(r model.ScheduleRow) any { return r.MaxZs }},
	{"RCD type", 10, func(r model.ScheduleRow) any { return r.RcdType }},
	{"RCD IΔn (mA)", 12, func(r model.ScheduleRow) any { return r.RcdRating }},
	{"Ring r1", 9, func(r model.ScheduleRow) any { return r.RingR1 }},
	{"Ring rn", 9, func(r model.ScheduleRow) any { return r.RingRn }},
	{"Ring r2", 9, func(r model.ScheduleRow) any { return r.RingR2 }},
	{"R1+R2", 9, func(r model.ScheduleRow) any { return r.R1R2 }},
	{"R2", 9, func(r model.ScheduleRow) any { return r.R2 }},
	{"Test V", 9, func(r model.ScheduleRow) any { return r.InsulationTestVoltage }},
	{"IR L-N (MΩ)", 11, func(r model.ScheduleRow) any { return r.InsulationLiveNeutral }},
	{"IR L-E (MΩ)", 11, func(r model.ScheduleRow) any { return r.InsulationLiveEarth }},
	{"Polarity", 9, func(r model.ScheduleRow) any { return r.Polarity }},
	{"Zs (Ω)", 9, func(r model.ScheduleRow) any { return r.Zs }},
	{"RCD (ms)", 9, func(r model.ScheduleRow) any { return r.RcdOneX }},
	{"RCD test button", 14, func(r model.ScheduleRow) any { return r.RcdTestButton }},
	{"AFDD", 8, func(r model.ScheduleRow) any { return r.AfddTest }},
	{"Ring final", 9, func(r model.ScheduleRow) any { return yesNo(r.IsRingFinal) }},
	{"Notes", 30, func(r model.ScheduleRow) any { return r.Notes }},
}

// ScheduleWorkbook lays the schedule of tests out as a spreadsheet: a title
// row, the certificate reference, then one row per circuit from row 4.
func ScheduleWorkbook(payload model.CertificatePayload) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(scheduleSheet, "A1", "Schedule of Test Results")
	f.SetCellStyle(scheduleSheet, "A1", "A1", titleStyle)
	f.SetRowHeight(scheduleSheet, 1, 30)

	f.SetCellValue(scheduleSheet, "A2", fmt.Sprintf("Certificate: %s  Client: %s",
		payload.Metadata.CertificateNumber, payload.ClientDetails.ClientName))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for colIdx, col := range scheduleColumns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 3)
		f.SetCellValue(scheduleSheet, cell, col.Label)
		f.SetCellStyle(scheduleSheet, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(colIdx + 1)
		f.SetColWidth(scheduleSheet, name, name, col.Width)
	}

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})

	for rowIdx, row := range payload.ScheduleOfTests {
		for colIdx, col := range scheduleColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+4)
			f.SetCellValue(scheduleSheet, cell, col.Value(row))
			f.SetCellStyle(scheduleSheet, cell, cell, dataStyle)
		}
	}

	if err := f.SetPanes(scheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      3,
		TopLeftCell: "A4",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteScheduleXLSX writes the schedule workbook to w.
func WriteScheduleXLSX(w io.Writer, payload model.CertificatePayload) error {
	f, err := ScheduleWorkbook(payload)
	if err != nil {
		return fmt.Errorf("failed to build schedule workbook: %w", err)
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write schedule workbook: %w", err)
	}
	return nil
}

// ScheduleFilename names the spreadsheet after the certificate.
func ScheduleFilename(certificateNumber string) string {
	return fmt.Sprintf("EIC_%s_schedule.xlsx", filenamePart(certificateNumber))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
