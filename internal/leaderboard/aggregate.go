// Package leaderboard turns roster and ledger snapshots into the ranked
// boards the front end renders. Both aggregations are pure functions; the
// service wraps them with data loading and the daily time window.
package leaderboard

import (
	"math"
	"sort"
	"strings"

	"candrive-backend/internal/ledger"
	"candrive-backend/internal/roster"
)

const (
	topListLimit    = 50
	buyoutListLimit = 20
	dailyListLimit  = 10

	// Buyout quota per enrolled student.
	cansPerStudent = 10
)

// Entry is one ranked row. Teachers leave Grade empty.
type Entry struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	Grade          string `json:"grade,omitempty"`
	HomeroomNumber string `json:"homeroomNumber,omitempty"`
	TotalCans      int    `json:"totalCans"`
}

type ClassEntry struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	HomeroomNumber string `json:"homeroomNumber"`
	TotalCans      int    `json:"totalCans"`
}

type GradeEntry struct {
	Rank      int    `json:"rank"`
	Grade     string `json:"grade"`
	TotalCans int    `json:"totalCans"`
}

// BuyoutEntry keeps the field names the buyout board was built against.
type BuyoutEntry struct {
	ClassName          string  `json:"class_name"`
	HomeroomTeacher    string  `json:"homeroom_teacher"`
	HomeroomNumber     string  `json:"homeroom_number"`
	StudentCount       int     `json:"student_count"`
	RequiredCans       int     `json:"required_cans"`
	ActualCans         int     `json:"actual_cans"`
	IsEligible         bool    `json:"is_eligible"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

type Board struct {
	TopStudents    []Entry       `json:"topStudents"`
	TopTeachers    []Entry       `json:"topTeachers"`
	TopClasses     []ClassEntry  `json:"topClasses"`
	TopGrades      []GradeEntry  `json:"topGrades"`
	ClassBuyout    []BuyoutEntry `json:"classBuyout"`
	AllClassBuyout []BuyoutEntry `json:"allClassBuyout"`
	TotalCans      int           `json:"totalCans"`
}

// classTotal accumulates one (homeroom teacher, homeroom number) bucket.
type classTotal struct {
	teacher string
	room    string
	cans    int
	count   int
}

// Compute builds the full-period board from a point-in-time snapshot.
// With an empty roster the result is all-zero regardless of donations.
func Compute(students []roster.Student, teachers []roster.Teacher, donations []ledger.Donation) *Board {
	board := &Board{
		TopStudents:    []Entry{},
		TopTeachers:    []Entry{},
		TopClasses:     []ClassEntry{},
		TopGrades:      []GradeEntry{},
		ClassBuyout:    []BuyoutEntry{},
		AllClassBuyout: []BuyoutEntry{},
	}
	if len(students) == 0 && len(teachers) == 0 {
		return board
	}

	studentEntries := make([]Entry, 0, len(students))
	for _, st := range students {
		studentEntries = append(studentEntries, Entry{
			Name:           st.Name(),
			Grade:          st.Grade,
			HomeroomNumber: st.HomeroomNumber,
			TotalCans:      st.TotalCans,
		})
	}
	board.TopStudents = rankEntries(studentEntries, topListLimit)

	teacherEntries := make([]Entry, 0, len(teachers))
	for _, t := range teachers {
		teacherEntries = append(teacherEntries, Entry{
			Name:           t.Name(),
			HomeroomNumber: t.HomeroomNumber,
			TotalCans:      t.TotalCans,
		})
	}
	board.TopTeachers = rankEntries(teacherEntries, topListLimit)

	// Class buckets come from students carrying both the teacher name and
	// the room. Keys are tracked in a slice as well as the map so the
	// teacher fold below sees them in insertion order, not map order.
	classTotals := make(map[string]*classTotal)
	var classKeys []string
	for _, st := range students {
		if st.HomeroomTeacher == "" || st.HomeroomNumber == "" {
			continue
		}
		key := st.HomeroomTeacher + " " + st.HomeroomNumber
		ct, ok := classTotals[key]
		if !ok {
			ct = &classTotal{teacher: st.HomeroomTeacher, room: st.HomeroomNumber}
			classTotals[key] = ct
			classKeys = append(classKeys, key)
		}
		ct.cans += st.TotalCans
		ct.count++
	}

	// A teacher's own cans join the first class key containing their room
	// number as a substring. No class is ever created from a teacher alone.
	for _, t := range teachers {
		if t.HomeroomNumber == "" {
			continue
		}
		for _, key := range classKeys {
			if strings.Contains(key, t.HomeroomNumber) {
				classTotals[key].cans += t.TotalCans
				break
			}
		}
	}

	classEntries := make([]ClassEntry, 0, len(classKeys))
	for _, key := range classKeys {
		ct := classTotals[key]
		classEntries = append(classEntries, ClassEntry{
			Name:           key,
			HomeroomNumber: ct.room,
			TotalCans:      ct.cans,
		})
	}
	board.TopClasses = rankClasses(classEntries, topListLimit)

	gradeTotals := make(map[string]int)
	var gradeKeys []string
	for _, st := range students {
		grade := roster.NormalizeGrade(st.Grade)
		if grade == "" {
			continue
		}
		if _, ok := gradeTotals[grade]; !ok {
			gradeKeys = append(gradeKeys, grade)
		}
		gradeTotals[grade] += st.TotalCans
	}
	gradeEntries := make([]GradeEntry, 0, len(gradeKeys))
	for _, grade := range gradeKeys {
		gradeEntries = append(gradeEntries, GradeEntry{
			Grade:     grade,
			TotalCans: gradeTotals[grade],
		})
	}
	board.TopGrades = rankGrades(gradeEntries, topListLimit)

	board.AllClassBuyout = buildBuyout(classKeys, classTotals)
	eligible := make([]BuyoutEntry, 0, len(board.AllClassBuyout))
	for _, entry := range board.AllClassBuyout {
		if entry.IsEligible {
			eligible = append(eligible, entry)
		}
		if len(eligible) == buyoutListLimit {
			break
		}
	}
	board.ClassBuyout = eligible

	ledgerSum := 0
	for _, d := range donations {
		ledgerSum += d.Amount
	}
	rosterSum := 0
	for _, st := range students {
		rosterSum += st.TotalCans
	}
	for _, t := range teachers {
		rosterSum += t.TotalCans
	}
	// Admin corrections move only the denormalized totals; a donation whose
	// increment failed exists only in the ledger. Publish the larger sum.
	board.TotalCans = max(ledgerSum, rosterSum)

	return board
}

func buildBuyout(keys []string, totals map[string]*classTotal) []BuyoutEntry {
	entries := make([]BuyoutEntry, 0, len(keys))
	for _, key := range keys {
		ct := totals[key]
		if ct.count == 0 {
			continue
		}
		required := ct.count * cansPerStudent
		entry := BuyoutEntry{
			ClassName:       key,
			HomeroomTeacher: ct.teacher,
			HomeroomNumber:  ct.room,
			StudentCount:    ct.count,
			RequiredCans:    required,
			ActualCans:      ct.cans,
			IsEligible:      ct.cans >= required,
		}
		if required > 0 {
			entry.ProgressPercentage = math.Min(100, float64(ct.cans)/float64(required)*100)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsEligible != entries[j].IsEligible {
			return entries[i].IsEligible
		}
		return entries[i].ActualCans > entries[j].ActualCans
	})
	return entries
}

func rankEntries(entries []Entry, limit int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalCans > entries[j].TotalCans
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func rankClasses(entries []ClassEntry, limit int) []ClassEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalCans > entries[j].TotalCans
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func rankGrades(entries []GradeEntry, limit int) []GradeEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalCans > entries[j].TotalCans
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
