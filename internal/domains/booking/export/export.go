// Package export renders bookings as an xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"roombooking/internal/domains/booking/model/dto"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Bookings"

	defaultSheet = "Sheet1"
)

var Headers = []string{
	"ID", "Room", "User", "Booking Date", "Start Time", "End Time", "Purpose", "Status",
	"Check-in Time", "Check-out Time", "Location GPS", "Present", "Photos", "Created At",
}

var columnWidths = []float64{8, 20, 20, 14, 11, 11, 40, 10, 22, 22, 20, 9, 50, 22}

// Bookings writes one row per booking under a frozen, styled header row.
func Bookings(bookings []dto.BookingResponse) (data []byte, err error) {
	file := excelize.NewFile()
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", closeErr)
		}
	}()

	if _, err = file.NewSheet(SheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err = file.DeleteSheet(defaultSheet); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	index, err := file.GetSheetIndex(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to locate sheet: %w", err)
	}

	file.SetActiveSheet(index)

	if err = writeHeader(file); err != nil {
		return nil, err
	}

	for i, booking := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}

		row := []any{
			booking.ID,
			booking.RoomName,
			booking.UserName,
			booking.BookingDate,
			booking.StartTime,
			booking.EndTime,
			booking.Purpose,
			booking.Status,
			optional(booking.CheckinTime),
			optional(booking.CheckoutTime),
			booking.LocationGPS,
			yesNo(booking.IsPresent),
			strings.Join(booking.PhotoURLs, "\n"),
			booking.CreatedAt,
		}

		if err = file.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	err = file.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err = file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func writeHeader(file *excelize.File) error {
	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(Headers))
	for i, title := range Headers {
		header[i] = title
	}

	if err = file.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	lastColumn, err := excelize.ColumnNumberToName(len(Headers))
	if err != nil {
		return fmt.Errorf("failed to convert column number: %w", err)
	}

	if err = file.SetCellStyle(SheetName, "A1", lastColumn+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range columnWidths {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}

		if err = file.SetColWidth(SheetName, column, column, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return nil
}

func optional(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}

	return "No"
}
