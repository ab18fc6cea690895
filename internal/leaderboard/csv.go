package leaderboard

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"candrive-backend/internal/roster"
)

// WriteCSV writes the printable leaderboard: contributing students first,
// then teachers with "Teacher" in the grade column. Each section is ranked
// separately by cans descending; rows with zero cans are left out.
func WriteCSV(w io.Writer, students []roster.Student, teachers []roster.Teacher) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Grade", "Homeroom Number", "Homeroom Teacher", "Total Cans", "Rank"}); err != nil {
		return err
	}

	contributing := make([]roster.Student, 0, len(students))
	for _, st := range students {
		if st.TotalCans > 0 {
			contributing = append(contributing, st)
		}
	}
	sort.SliceStable(contributing, func(i, j int) bool {
		return contributing[i].TotalCans > contributing[j].TotalCans
	})
	for i, st := range contributing {
		record := []string{
			st.Name(),
			st.Grade,
			st.HomeroomNumber,
			st.HomeroomTeacher,
			strconv.Itoa(st.TotalCans),
			strconv.Itoa(i + 1),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	giving := make([]roster.Teacher, 0, len(teachers))
	for _, t := range teachers {
		if t.TotalCans > 0 {
			giving = append(giving, t)
		}
	}
	sort.SliceStable(giving, func(i, j int) bool {
		return giving[i].TotalCans > giving[j].TotalCans
	})
	for i, t := range giving {
		record := []string{
			t.Name(),
			"Teacher",
			t.HomeroomNumber,
			"",
			strconv.Itoa(t.TotalCans),
			strconv.Itoa(i + 1),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
