package ledger

import "time"

// Period is a gang-task half-day window. Stored as an integer in the
// gang_task_xp table: 1 = morning, 2 = night.
type Period int

const (
	PeriodMorning Period = 1
	PeriodNight   Period = 2
)

func (p Period) String() string {
	if p == PeriodMorning {
		return "morning"
	}
	return "night"
}

// ResetDateAt returns the server-local calendar date used as the daily reset
// key for drug tasks and as part of the gang-task key.
func ResetDateAt(t time.Time) string {
	return t.Format("2006-01-02")
}

// GangPeriodAt returns the active gang-task period. Morning runs 06:00-18:00
// local, night 18:00-06:00. Every write and status read goes through this so
// the boundary never drifts between the two.
func GangPeriodAt(t time.Time) Period {
	hour := t.Hour()
	if hour >= 6 && hour < 18 {
		return PeriodMorning
	}
	return PeriodNight
}
