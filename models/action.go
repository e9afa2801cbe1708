package models

import "time"

// PointRange is an inclusive [Min, Max] reward range.
type PointRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// EarningAction is a catalog entry. Instances are immutable once the catalog is built.
type EarningAction struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Points          PointRange `json:"points"`
	CooldownSeconds int64      `json:"cooldown_seconds"`
}

// Cooldown returns the minimum time between two successful uses of the action.
func (a EarningAction) Cooldown() time.Duration {
	return time.Duration(a.CooldownSeconds) * time.Second
}

// Valid reports whether the point range and cooldown are well formed.
func (a EarningAction) Valid() bool {
	return a.Points.Min >= 0 && a.Points.Min <= a.Points.Max && a.CooldownSeconds >= 0
}
