package reservation

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the reservation sheet handed to drivers on pickup day.
func WriteCSV(w io.Writer, reservations []Reservation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Street Name", "Student Name", "Group Members", "Created At"}); err != nil {
		return err
	}

	for _, res := range reservations {
		record := []string{
			res.StreetName,
			res.Name,
			res.GroupMembers,
			res.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
