// Package schedule computes bookable slots from weekly availability rules and
// existing bookings.
package schedule

import (
	"context"
	"errors"
	"sort"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time of day")
)

type RuleStore interface {
	ListActiveTimes(ctx context.Context, staffID string, weekday int) ([]string, error)
}

type OccupancyStore interface {
	ListOccupiedTimes(ctx context.Context, staffID, date string) ([]string, error)
}

type DayAvailability struct {
	Date      string `json:"date"`
	FreeSlots int    `json:"free_slots"`
}

type Resolver struct {
	rules     RuleStore
	occupancy OccupancyStore
	leadTime  time.Duration

	horizonDays   int
	targetDays    int
	closedWeekday time.Weekday
	now           func() time.Time
}

func NewResolver(rules RuleStore, occupancy OccupancyStore, leadTime time.Duration) *Resolver {
	return &Resolver{
		rules:         rules,
		occupancy:     occupancy,
		leadTime:      leadTime,
		horizonDays:   45,
		targetDays:    30,
		closedWeekday: time.Sunday,
		now:           time.Now,
	}
}

// AvailableSlots returns the free slot times ("HH:MM", ascending) for a staff
// member on a date. Past dates yield an empty list, not an error. Slots on the
// current date must start at least leadTime from now.
func (r *Resolver) AvailableSlots(ctx context.Context, staffID, date string) ([]string, error) {
	now := r.now()
	day, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return nil, ErrInvalidDate
	}
	today := midnight(now)
	if day.Before(today) {
		return []string{}, nil
	}
	times, err := r.rules.ListActiveTimes(ctx, staffID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return []string{}, nil
	}
	occupied, err := r.occupancy.ListOccupiedTimes(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(occupied))
	for _, slot := range occupied {
		taken[slot] = struct{}{}
	}
	sameDay := day.Equal(today)
	cutoff := now.Add(r.leadTime)
	free := []string{}
	for _, slot := range times {
		if _, ok := taken[slot]; ok {
			continue
		}
		if sameDay {
			start, err := SlotStart(date, slot, now.Location())
			if err != nil {
				return nil, err
			}
			if !start.After(cutoff) {
				continue
			}
		}
		free = append(free, slot)
	}
	sort.Strings(free)
	return free, nil
}

// AvailableDates scans the horizon (45 days) for days with at least one free
// slot, skipping the closed weekday, and stops after 30 qualifying days.
func (r *Resolver) AvailableDates(ctx context.Context, staffID string) ([]DayAvailability, error) {
	today := midnight(r.now())
	days := []DayAvailability{}
	for i := 0; i < r.horizonDays && len(days) < r.targetDays; i++ {
		day := today.AddDate(0, 0, i)
		if day.Weekday() == r.closedWeekday {
			continue
		}
		date := day.Format(DateLayout)
		free, err := r.AvailableSlots(ctx, staffID, date)
		if err != nil {
			return nil, err
		}
		if len(free) == 0 {
			continue
		}
		days = append(days, DayAvailability{Date: date, FreeSlots: len(free)})
	}
	return days, nil
}

// SlotStart combines a date and a slot time into the moment the slot begins.
func SlotStart(date, slotTime string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	tod, err := time.Parse(TimeLayout, slotTime)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

func midnight(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}
