package store

import "context"

type ScheduleStore struct {
	db DB
}

func NewScheduleStore(db DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// ListActiveTimes returns the recurring slot times a staff member offers on a
// weekday (0=Sunday..6=Saturday), ascending.
func (s *ScheduleStore) ListActiveTimes(ctx context.Context, staffID string, weekday int) ([]string, error) {
	var times []string
	err := s.db.SelectContext(ctx, &times, `
		SELECT slot_time
		FROM staff_availability
		WHERE staff_id = $1 AND weekday = $2 AND active = TRUE
		ORDER BY slot_time
	`, staffID, weekday)
	if err != nil {
		return nil, err
	}
	return times, nil
}
