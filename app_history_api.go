package main

import (
	"context"

	"shortgroup/internal/history"
)

// RecentLaunches returns the newest launch records, most recent first.
// Returns an empty slice when history is unavailable.
func (a *App) RecentLaunches(limit int) ([]history.Entry, error) {
	launches := a.launches
	if launches == nil {
		return []history.Entry{}, nil
	}
	return launches.Recent(context.Background(), limit)
}

// MostUsedShortcuts returns launch counts aggregated per shortcut, most
// used first. Returns an empty slice when history is unavailable.
func (a *App) MostUsedShortcuts(limit int) ([]history.Usage, error) {
	launches := a.launches
	if launches == nil {
		return []history.Usage{}, nil
	}
	return launches.MostUsed(context.Background(), limit)
}
