package racedomain

import "time"

// Alert identifies one of the one-shot countdown notifications sent before
// betting closes.
type Alert string

const (
	AlertOneHour     Alert = "1h"
	AlertFiveMinutes Alert = "5m"
)

// AlertWindow is the inclusive band of minutes-left in which an alert fires.
type AlertWindow struct {
	Alert      Alert
	MinMinutes float64
	MaxMinutes float64
}

// AlertWindows are checked in order on every tick.
var AlertWindows = []AlertWindow{
	{Alert: AlertOneHour, MinMinutes: 55, MaxMinutes: 65},
	{Alert: AlertFiveMinutes, MinMinutes: 2, MaxMinutes: 7},
}

// AlertState is what the alert check needs to know about a race.
type AlertState struct {
	Status          Status
	BetsCloseAt     *time.Time
	OneHourSent     bool
	FiveMinutesSent bool
}

func (a AlertState) sent(alert Alert) bool {
	switch alert {
	case AlertOneHour:
		return a.OneHourSent
	case AlertFiveMinutes:
		return a.FiveMinutesSent
	}
	return true
}

// MinutesUntil is the fractional number of minutes from now to deadline.
func MinutesUntil(deadline, now time.Time) float64 {
	return deadline.Sub(now).Minutes()
}

// DueAlerts lists the alerts that should fire for the race at now. Only
// OPEN races with a close deadline in the future are eligible, and an alert
// already marked sent never fires again.
func DueAlerts(state AlertState, now time.Time) []Alert {
	if state.Status != StatusOpen || state.BetsCloseAt == nil {
		return nil
	}
	left := MinutesUntil(*state.BetsCloseAt, now)
	if left < 0 {
		return nil
	}

	var due []Alert
	for _, w := range AlertWindows {
		if left >= w.MinMinutes && left <= w.MaxMinutes && !state.sent(w.Alert) {
			due = append(due, w.Alert)
		}
	}
	return due
}
