package leaderboard

import (
	"sort"

	"candrive-backend/internal/ledger"
	"candrive-backend/internal/roster"
)

type DailyEntry struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	DailyCans int    `json:"dailyCans"`
}

type DailyGradeEntry struct {
	Rank      int    `json:"rank"`
	Grade     string `json:"grade"`
	DailyCans int    `json:"dailyCans"`
}

// DailyBoard ranks only entities with at least one donation inside the day
// window. Date is the window's calendar day in the configured zone.
type DailyBoard struct {
	Date        string            `json:"date"`
	TopStudents []DailyEntry      `json:"topStudents"`
	TopTeachers []DailyEntry      `json:"topTeachers"`
	TopGrades   []DailyGradeEntry `json:"topGrades"`
	TotalCans   int               `json:"totalCans"`
}

// ComputeDaily builds the daily board. donations must already be filtered to
// the window; ranks are computed within that filtered set only, never reused
// from the full-period board.
func ComputeDaily(students []roster.Student, teachers []roster.Teacher, donations []ledger.Donation, date string) *DailyBoard {
	board := &DailyBoard{
		Date:        date,
		TopStudents: []DailyEntry{},
		TopTeachers: []DailyEntry{},
		TopGrades:   []DailyGradeEntry{},
	}

	studentCans := make(map[int64]int)
	teacherCans := make(map[int64]int)
	var studentOrder, teacherOrder []int64
	for _, d := range donations {
		board.TotalCans += d.Amount
		switch {
		case d.StudentID != nil:
			if _, ok := studentCans[*d.StudentID]; !ok {
				studentOrder = append(studentOrder, *d.StudentID)
			}
			studentCans[*d.StudentID] += d.Amount
		case d.TeacherID != nil:
			if _, ok := teacherCans[*d.TeacherID]; !ok {
				teacherOrder = append(teacherOrder, *d.TeacherID)
			}
			teacherCans[*d.TeacherID] += d.Amount
		}
	}

	studentsByID := make(map[int64]roster.Student, len(students))
	for _, st := range students {
		studentsByID[st.ID] = st
	}
	teachersByID := make(map[int64]roster.Teacher, len(teachers))
	for _, t := range teachers {
		teachersByID[t.ID] = t
	}

	gradeCans := make(map[string]int)
	var gradeOrder []string

	studentEntries := make([]DailyEntry, 0, len(studentOrder))
	for _, id := range studentOrder {
		st, ok := studentsByID[id]
		if !ok {
			// Donor deleted since the donation was taken; nothing to show.
			continue
		}
		cans := studentCans[id]
		studentEntries = append(studentEntries, DailyEntry{Name: st.Name(), DailyCans: cans})

		if grade := roster.NormalizeGrade(st.Grade); grade != "" {
			if _, seen := gradeCans[grade]; !seen {
				gradeOrder = append(gradeOrder, grade)
			}
			gradeCans[grade] += cans
		}
	}
	board.TopStudents = rankDaily(studentEntries, dailyListLimit)

	teacherEntries := make([]DailyEntry, 0, len(teacherOrder))
	for _, id := range teacherOrder {
		t, ok := teachersByID[id]
		if !ok {
			continue
		}
		teacherEntries = append(teacherEntries, DailyEntry{Name: t.Name(), DailyCans: teacherCans[id]})
	}
	board.TopTeachers = rankDaily(teacherEntries, dailyListLimit)

	gradeEntries := make([]DailyGradeEntry, 0, len(gradeOrder))
	for _, grade := range gradeOrder {
		gradeEntries = append(gradeEntries, DailyGradeEntry{Grade: grade, DailyCans: gradeCans[grade]})
	}
	board.TopGrades = rankDailyGrades(gradeEntries, dailyListLimit)

	return board
}

func rankDaily(entries []DailyEntry, limit int) []DailyEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DailyCans > entries[j].DailyCans
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func rankDailyGrades(entries []DailyGradeEntry, limit int) []DailyGradeEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DailyCans > entries[j].DailyCans
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
