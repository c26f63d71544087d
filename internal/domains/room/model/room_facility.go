package model

import (
	"slices"
	"time"
)

const (
	RoomFacilityTableName  = "room_facilities"
	RoomFacilityEntityName = "room_facility"

	FieldRoomID     = "room_id"
	FieldFacilityID = "facility_id"
)

// RoomFacility links a room to one facility. FacilityName is read through the join.
type RoomFacility struct {
	ID           int64     `db:"id"            readonly:"true"`
	RoomID       int64     `db:"room_id"`
	FacilityID   int64     `db:"facility_id"`
	FacilityName *string   `db:"facility_name" table:"facilities" column:"name"`
	CreatedAt    time.Time `db:"created_at"`
}

func (RoomFacility) GetJoinQuery() string {
	return "LEFT JOIN facilities ON facilities.id = room_facilities.facility_id"
}

// NewRoomFacilities builds the link rows for roomID, dropping repeated ids and keeping first-seen order.
func NewRoomFacilities(roomID int64, facilityIDs []int64, now time.Time) []RoomFacility {
	links := make([]RoomFacility, 0, len(facilityIDs))
	seen := make([]int64, 0, len(facilityIDs))

	for _, facilityID := range facilityIDs {
		if slices.Contains(seen, facilityID) {
			continue
		}

		seen = append(seen, facilityID)
		links = append(links, RoomFacility{RoomID: roomID, FacilityID: facilityID, CreatedAt: now})
	}

	return links
}

func GroupByRoom(links []RoomFacility) map[int64][]RoomFacility {
	grouped := make(map[int64][]RoomFacility)
	for _, link := range links {
		grouped[link.RoomID] = append(grouped[link.RoomID], link)
	}

	return grouped
}
