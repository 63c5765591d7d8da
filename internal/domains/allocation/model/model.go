package model

import (
	"time"
)

// Slot is a requested time slot reduced to what assignment needs.
type Slot struct {
	ID    int64
	Start time.Duration
	End   time.Duration
}

func (s Slot) Overlaps(other Slot) bool {
	return s.Start < other.End && other.Start < s.End
}

// CourtAvailability lists the slots already held on one court for one date.
type CourtAvailability struct {
	CourtID int64
	Held    map[int64]struct{}
}

func NewCourtAvailability(courtID int64) CourtAvailability {
	return CourtAvailability{CourtID: courtID, Held: map[int64]struct{}{}}
}

func (c CourtAvailability) IsFree(slotID int64) bool {
	_, held := c.Held[slotID]

	return !held
}

// Assignment maps a slot id to the court chosen for it.
type Assignment map[int64]int64

// Request describes what a customer asks for. CourtID pins every slot to one court.
type Request struct {
	FacilityID int64
	CategoryID int64
	CourtID    int64
	SlotIDs    []int64
	Date       time.Time
}

type Line struct {
	SlotID      int64   `json:"slot_id"`
	CourtID     int64   `json:"court_id"`
	CourtName   string  `json:"court_name"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Hours       float64 `json:"hours"`
	HourlyPrice float64 `json:"hourly_price"`
	Discount    float64 `json:"discount"`
	Amount      float64 `json:"amount"`
}

// Quote holds unrounded line amounts and a rounded total.
type Quote struct {
	Lines []Line  `json:"lines"`
	Total float64 `json:"total"`
}

// Allocation is a priced assignment ready to be persisted.
type Allocation struct {
	FacilityID int64
	CategoryID int64
	Date       time.Time
	Quote
}

type SlotAvailability struct {
	SlotID      int64   `json:"slot_id"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Discount    float64 `json:"discount"`
	FreeCourts  int     `json:"free_courts"`
	TotalCourts int     `json:"total_courts"`
}
