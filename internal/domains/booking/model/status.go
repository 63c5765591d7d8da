package model

import (
	"slices"
	"strconv"
)

type Status int

const (
	StatusCreated   Status = 1
	StatusConfirmed Status = 2
	StatusPaid      Status = 7
	StatusCancelled Status = 9
	StatusCompleted Status = 10
)

var statusNames = map[Status]string{
	StatusCreated:   "created",
	StatusConfirmed: "confirmed",
	StatusPaid:      "paid",
	StatusCancelled: "cancelled",
	StatusCompleted: "completed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// HoldsSlot reports whether lines in this status block their court and slot.
func (s Status) HoldsSlot() bool {
	return s != StatusCancelled
}

type Transition string

const (
	TransitionConfirm  Transition = "confirm"
	TransitionPay      Transition = "pay"
	TransitionComplete Transition = "complete"
	TransitionCancel   Transition = "cancel"
)

type transitionRule struct {
	target   Status
	from     []Status
	rejected string
}

var transitionRules = map[Transition]transitionRule{
	TransitionConfirm: {
		target:   StatusConfirmed,
		from:     []Status{StatusCreated},
		rejected: "booking status does not allow confirmation",
	},
	TransitionPay: {
		target:   StatusPaid,
		from:     []Status{StatusCreated, StatusConfirmed},
		rejected: "booking status does not allow payment",
	},
	TransitionComplete: {
		target:   StatusCompleted,
		from:     []Status{StatusCreated, StatusConfirmed, StatusPaid},
		rejected: "booking status does not allow completion",
	},
	TransitionCancel: {
		target:   StatusCancelled,
		from:     []Status{StatusCreated, StatusConfirmed, StatusPaid},
		rejected: "booking status does not allow cancellation",
	},
}

// Target is the status a booking lands in after the transition.
func (t Transition) Target() Status {
	return transitionRules[t].target
}

// From lists the statuses a booking may be in for the transition to apply.
func (t Transition) From() []Status {
	return slices.Clone(transitionRules[t].from)
}

// Allows reports whether a booking in status from may take this transition.
func (t Transition) Allows(from Status) bool {
	rule, ok := transitionRules[t]

	return ok && slices.Contains(rule.from, from)
}

// RejectionMessage is the conflict message returned when Allows is false.
func (t Transition) RejectionMessage() string {
	return transitionRules[t].rejected
}
