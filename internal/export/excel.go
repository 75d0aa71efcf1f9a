// Package export renders admin reports as Excel workbooks.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"grislo/internal/domain"
	"grislo/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Reservations"

// Exporter writes reservation reports for a date range into the exports
// directory.
type Exporter struct {
	store  domain.Store
	path   string
	logger *zerolog.Logger
}

func NewExporter(store domain.Store, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{store: store, path: path, logger: logger}
}

// ReservationsXLSX writes all reservations whose service date falls inside
// [startDate, endDate] and returns the file path. Cancelled rows are included
// so the report shows the full history.
func (e *Exporter) ReservationsXLSX(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	start := startDate.Format(models.DateFormat)
	end := endDate.Format(models.DateFormat)
	var rows []models.Reservation
	for _, r := range e.store.LoadReservations(ctx) {
		if r.Date >= start && r.Date <= end {
			rows = append(rows, r)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Reservations %s - %s", start, end))
	lastCol, _ := excelize.CoordinatesToCellName(len(columnHeaders()), 1)
	_ = f.MergeCell(sheetName, "A1", lastCol)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	writeHeaderRow(f)
	for i, r := range rows {
		writeReservationRow(f, i+3, r)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "H", 16)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservations_%s_to_%s.xlsx", start, end)
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(rows)).Msg("Excel file created")
	return filePath, nil
}

func columnHeaders() []string {
	return []string{"ID", "Guest", "Date", "Time", "Pickup", "Notes", "Status", "Created"}
}

func writeHeaderRow(f *excelize.File) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range columnHeaders() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func writeReservationRow(f *excelize.File, row int, r models.Reservation) {
	values := []interface{}{
		r.ID,
		r.DisplayName,
		r.Date,
		r.Time,
		r.PickupLocation,
		r.Notes,
		r.Status,
		r.CreatedAt.Format("2006-01-02 15:04"),
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
}
