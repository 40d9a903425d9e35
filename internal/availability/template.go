package availability

import (
	"time"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

var weekdayNames = [models.DaysPerWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DefaultTemplate returns the weekly template used when a professional has none stored.
func DefaultTemplate() models.WeeklyTemplate {
	template := make(models.WeeklyTemplate, models.DaysPerWeek)
	for i := range template {
		template[i] = defaultDay(i)
	}
	return template
}

func defaultDay(index int) models.DaySchedule {
	day := models.DaySchedule{
		Day:     weekdayNames[index],
		IsOpen:  true,
		Morning: models.TimeWindow{From: models.MustTimeOfDay("09:00"), To: models.MustTimeOfDay("13:00")},
		Afternoon: models.AfternoonWindow{
			Active: true,
			From:   models.MustTimeOfDay("17:00"),
			To:     models.MustTimeOfDay("22:00"),
		},
	}
	switch index {
	case 5:
		day.Morning.To = models.MustTimeOfDay("14:00")
		day.Afternoon = models.AfternoonWindow{
			Active: false,
			From:   models.MustTimeOfDay("17:00"),
			To:     models.MustTimeOfDay("21:00"),
		}
	case 6:
		day.IsOpen = false
	}
	return day
}

// DayIndex maps a weekday onto the Monday-first template position.
// Sunday is the last entry.
func DayIndex(weekday time.Weekday) int {
	return (int(weekday) + 6) % models.DaysPerWeek
}

// ResolveTemplate returns the stored template, or the default when none is stored.
func ResolveTemplate(stored models.WeeklyTemplate) models.WeeklyTemplate {
	if len(stored) != models.DaysPerWeek {
		return DefaultTemplate()
	}
	return stored
}

// DayFor picks the schedule governing date.
func DayFor(template models.WeeklyTemplate, date time.Time) models.DaySchedule {
	return ResolveTemplate(template)[DayIndex(date.Weekday())]
}
