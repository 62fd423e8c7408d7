package ledger

import (
	"database/sql"
	"fmt"
	"time"
)

// DrugTaskDailyLimit caps how many drug-task completions a reset date allows
const DrugTaskDailyLimit = 5

// XPCompletion is one recorded task completion. ResetPeriod is zero for drug
// tasks, which reset daily rather than per half-day.
type XPCompletion struct {
	ID            int64
	ICPlayerName  string
	OOCPlayerName string
	XPAmount      int
	ResetDate     string
	ResetPeriod   Period
	CreatedAt     time.Time
}

// DrugStatus is the drug-task snapshot for the current reset date
type DrugStatus struct {
	Date    string
	Count   int
	Limit   int
	Players []XPCompletion
}

// GangStatus is the gang-task snapshot for the current reset date
type GangStatus struct {
	Date           string
	CurrentPeriod  Period
	MorningPlayers []XPCompletion
	NightPlayers   []XPCompletion
}

// AddDrugTaskXP records a drug-task completion for today. Each IC player
// completes at most one drug task per reset date, and each reset date allows
// at most DrugTaskDailyLimit completions in total.
func (s *Store) AddDrugTaskXP(icPlayer, oocPlayer string, xpAmount int) (*XPCompletion, error) {
	if xpAmount <= 0 {
		return nil, fmt.Errorf("%w: xp must be a positive number", ErrInvalidXPAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := ResetDateAt(s.Now())

	var existing int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM drug_task_xp WHERE ic_player_name = ? AND reset_date = ?`,
		icPlayer, today,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check drug task completion: %v", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: player %s has already completed a drug task today",
			ErrDuplicateCompletion, icPlayer)
	}

	var dailyCount int
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM drug_task_xp WHERE reset_date = ?`, today,
	).Scan(&dailyCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count drug task completions: %v", err)
	}
	if dailyCount >= DrugTaskDailyLimit {
		return nil, fmt.Errorf("%w: daily limit of %d drug tasks has been reached",
			ErrDailyLimitReached, DrugTaskDailyLimit)
	}

	res, err := s.db.Exec(
		`INSERT INTO drug_task_xp (ic_player_name, ooc_player_name, xp_amount, reset_date) VALUES (?, ?, ?, ?)`,
		icPlayer, oocPlayer, xpAmount, today,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert drug task xp: %v", err)
	}

	id, _ := res.LastInsertId()
	return &XPCompletion{
		ID:            id,
		ICPlayerName:  icPlayer,
		OOCPlayerName: oocPlayer,
		XPAmount:      xpAmount,
		ResetDate:     today,
	}, nil
}

// AddGangTaskXP records a gang-task completion for the current half-day
// period. Each IC player completes at most one gang task per (date, period);
// there is no daily numeric cap.
func (s *Store) AddGangTaskXP(icPlayer, oocPlayer string, xpAmount int) (*XPCompletion, error) {
	if xpAmount <= 0 {
		return nil, fmt.Errorf("%w: xp must be a positive number", ErrInvalidXPAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	today := ResetDateAt(now)
	period := GangPeriodAt(now)

	var existing int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM gang_task_xp WHERE ic_player_name = ? AND reset_date = ? AND reset_period = ?`,
		icPlayer, today, period,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check gang task completion: %v", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: player %s has already completed a gang task in this period",
			ErrDuplicateCompletion, icPlayer)
	}

	res, err := s.db.Exec(
		`INSERT INTO gang_task_xp (ic_player_name, ooc_player_name, xp_amount, reset_period, reset_date) VALUES (?, ?, ?, ?, ?)`,
		icPlayer, oocPlayer, xpAmount, period, today,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert gang task xp: %v", err)
	}

	id, _ := res.LastInsertId()
	return &XPCompletion{
		ID:            id,
		ICPlayerName:  icPlayer,
		OOCPlayerName: oocPlayer,
		XPAmount:      xpAmount,
		ResetDate:     today,
		ResetPeriod:   period,
	}, nil
}

// DrugTaskStatus returns today's drug-task completions in submission order
func (s *Store) DrugTaskStatus() (*DrugStatus, error) {
	today := ResetDateAt(s.Now())

	players, err := s.queryCompletions(
		`SELECT id, ic_player_name, ooc_player_name, xp_amount, reset_date, 0, created_at
		 FROM drug_task_xp WHERE reset_date = ? ORDER BY created_at ASC, id ASC`, today)
	if err != nil {
		return nil, err
	}

	return &DrugStatus{
		Date:    today,
		Count:   len(players),
		Limit:   DrugTaskDailyLimit,
		Players: players,
	}, nil
}

// GangTaskStatus returns today's gang-task completions split by period
func (s *Store) GangTaskStatus() (*GangStatus, error) {
	now := s.Now()
	today := ResetDateAt(now)

	morning, err := s.queryCompletions(
		`SELECT id, ic_player_name, ooc_player_name, xp_amount, reset_date, reset_period, created_at
		 FROM gang_task_xp WHERE reset_date = ? AND reset_period = ? ORDER BY created_at ASC, id ASC`,
		today, PeriodMorning)
	if err != nil {
		return nil, err
	}

	night, err := s.queryCompletions(
		`SELECT id, ic_player_name, ooc_player_name, xp_amount, reset_date, reset_period, created_at
		 FROM gang_task_xp WHERE reset_date = ? AND reset_period = ? ORDER BY created_at ASC, id ASC`,
		today, PeriodNight)
	if err != nil {
		return nil, err
	}

	return &GangStatus{
		Date:           today,
		CurrentPeriod:  GangPeriodAt(now),
		MorningPlayers: morning,
		NightPlayers:   night,
	}, nil
}

func (s *Store) queryCompletions(query string, args ...interface{}) ([]XPCompletion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %v", err)
	}
	defer rows.Close()

	var completions []XPCompletion
	for rows.Next() {
		var c XPCompletion
		var created sql.NullString
		if err := rows.Scan(&c.ID, &c.ICPlayerName, &c.OOCPlayerName, &c.XPAmount,
			&c.ResetDate, &c.ResetPeriod, &created); err != nil {
			return nil, err
		}
		if created.Valid {
			if t, err := time.Parse("2006-01-02 15:04:05", created.String); err == nil {
				c.CreatedAt = t
			}
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
