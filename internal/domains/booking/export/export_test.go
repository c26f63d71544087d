package export_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"roombooking/internal/domains/booking/export"
	"roombooking/internal/domains/booking/model/dto"
)

func TestBookings(t *testing.T) {
	checkin := "2024-06-01T09:05:00Z"

	data, err := export.Bookings([]dto.BookingResponse{
		{
			ID:          1,
			RoomName:    "Orchid",
			UserName:    "Ana",
			BookingDate: "2024-06-01",
			StartTime:   "09:00",
			EndTime:     "10:00",
			Purpose:     "Sync",
			Status:      "in_use",
			CheckinTime: &checkin,
			IsPresent:   true,
			PhotoURLs:   []string{"http://x/a.jpg", "http://x/b.jpg"},
		},
		{ID: 2, Status: "pending"},
	})
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	defer file.Close()

	assert.Equal(t, []string{export.SheetName}, file.GetSheetList())

	rows, err := file.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, export.Headers, rows[0])
	assert.Equal(t, "Orchid", rows[1][1])
	assert.Equal(t, "in_use", rows[1][7])
	assert.Equal(t, checkin, rows[1][8])
	assert.Equal(t, "Yes", rows[1][11])
	assert.Equal(t, "http://x/a.jpg\nhttp://x/b.jpg", rows[1][12])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "pending", rows[2][7])
}

func TestBookings_Empty(t *testing.T) {
	data, err := export.Bookings(nil)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	defer file.Close()

	rows, err := file.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
