/*
schedule.go - Display-only schedule matrix

PURPOSE:
  Renders day/employee coverage as a grid for operator review. Never feeds
  money: the matrix reads the same effective-hours tables the distribution
  uses, but only to decide which code to show.

CELL CODES:
  ""     not scheduled that day
  "O"    sole opening-window worker
  "O*"   opening shared by two or more
  "C"    sole closing-window worker
  "C*"   closing shared by two or more
  "O/C"  both windows, "/"-joined; window stars are carried into the join
  "✓"    daily-total mode: any nonzero effective hours that day
*/
package payroll

import "time"

// buildWindowedScheduleRow builds one shift-based-mode row.
func buildWindowedScheduleRow(d time.Time, employees []Employee, opening, closing map[string]float64) ScheduleRow {
	cells := make(map[string]string, len(employees))
	for _, emp := range employees {
		cells[emp.Name] = ""
	}

	openCode := "O"
	if len(opening) > 1 {
		openCode = "O*"
	}
	closeCode := "C"
	if len(closing) > 1 {
		closeCode = "C*"
	}

	for name := range opening {
		cells[name] = openCode
	}
	for name := range closing {
		if cells[name] != "" {
			cells[name] += "/"
		}
		cells[name] += closeCode
	}

	return ScheduleRow{
		Date:      DateKey(d),
		DayOfWeek: d.Weekday().String(),
		Cells:     cells,
	}
}

// buildDailyScheduleRow builds one daily-total-mode row.
func buildDailyScheduleRow(d time.Time, employees []Employee, dayHours map[string]float64) ScheduleRow {
	cells := make(map[string]string, len(employees))
	for _, emp := range employees {
		cells[emp.Name] = ""
	}
	for name := range dayHours {
		cells[name] = "✓"
	}

	return ScheduleRow{
		Date:      DateKey(d),
		DayOfWeek: d.Weekday().String(),
		Cells:     cells,
	}
}
