package export

import (
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func week(monday time.Time) []time.Time {
	days := make([]time.Time, 5)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

func samplePlan() *models.ExamPlan {
	pentecost := []time.Time{day(2024, time.May, 14), day(2024, time.May, 15), day(2024, time.May, 16), day(2024, time.May, 17), day(2024, time.May, 10)}
	return &models.ExamPlan{
		GeneratedAt: time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC),
		Semesters: []models.SemesterPlan{
			{
				Name:    "Sommersemester 2024",
				Key:     models.SemesterKey{Year: 2024},
				Lecture: models.Period{Start: day(2024, time.March, 18), End: day(2024, time.July, 12)},
				HIP:     models.Period{Start: day(2024, time.May, 13), End: day(2024, time.May, 17)},
				Blocks: []models.ExamBlock{
					{Label: "P1", Number: 1, Monday: day(2024, time.March, 18), Start: day(2024, time.March, 18), End: day(2024, time.March, 22), Days: week(day(2024, time.March, 18))},
					{
						Label: "P2", Number: 2, Monday: day(2024, time.May, 13), Start: day(2024, time.May, 10), End: day(2024, time.May, 17), Days: pentecost,
						Holidays: []models.HolidayHit{{Date: day(2024, time.May, 20), Name: "Pfingstmontag"}},
						Notes:    []string{"HIP-Woche"}, HIP: true,
					},
					{Label: "P3", Number: 3, Monday: day(2024, time.July, 8), Start: day(2024, time.July, 8), End: day(2024, time.July, 12), Days: week(day(2024, time.July, 8))},
				},
				Stats:    models.ScheduleStats{LectureWeeks: 14, WeeksBeforeHIP: 7, WeeksAfterHIP: 7},
				Holidays: []models.Holiday{{Date: day(2024, time.May, 1), Name: "Tag der Arbeit", Weekday: "Mi"}},
			},
			{
				Name:     "Wintersemester 2026/27",
				Key:      models.SemesterKey{Year: 2026, Winter: true},
				Proposal: true,
				Lecture:  models.Period{Start: day(2026, time.September, 21), End: day(2027, time.February, 5)},
				HIP:      models.Period{Start: day(2026, time.November, 23), End: day(2026, time.November, 27)},
				Blocks: []models.ExamBlock{
					{Label: "P1a", Number: 1, Start: day(2026, time.September, 21), End: day(2026, time.September, 25), Days: week(day(2026, time.September, 21))},
					{Label: "P1b", Number: 2, Start: day(2026, time.September, 28), End: day(2026, time.October, 2), Days: week(day(2026, time.September, 28))},
					{Label: "P2", Number: 3, Start: day(2026, time.November, 23), End: day(2026, time.November, 27), Days: week(day(2026, time.November, 23)), Notes: []string{"HIP-Woche (Vorschlag)"}, HIP: true},
					{Label: "P3", Number: 4, Start: day(2027, time.February, 1), End: day(2027, time.February, 5), Days: week(day(2027, time.February, 1))},
				},
				Stats: models.ScheduleStats{LectureWeeks: 12, WeeksBeforeHIP: 7, WeeksAfterHIP: 7},
				Violations: []models.Violation{
					{Code: models.ViolationLectureWeeks, Message: "Vorlesungswochen < 13 (12)", Actual: 12, Threshold: 13},
				},
				Score: 500,
			},
		},
		SchoolHolidays: []models.SchoolHoliday{
			{Year: 2024, Name: "Osterferien", Start: day(2024, time.March, 25), End: day(2024, time.April, 6)},
			{Year: 2024, Name: "Herbstferien", Start: day(2024, time.October, 14), End: day(2024, time.October, 26)},
			{Year: 2026, Name: "Herbstferien", Start: day(2026, time.October, 17), End: day(2026, time.October, 31)},
		},
	}
}
