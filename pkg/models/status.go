package models

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindAnime Kind = "anime"
	KindManga Kind = "manga"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anime", "animelist":
		return KindAnime, nil
	case "manga", "mangalist":
		return KindManga, nil
	default:
		return "", fmt.Errorf("unknown list kind %q", s)
	}
}

// Status is the exact status string a list export carries.
type Status string

const (
	StatusWatching    Status = "Watching"
	StatusReading     Status = "Reading"
	StatusCompleted   Status = "Completed"
	StatusOnHold      Status = "On-Hold"
	StatusDropped     Status = "Dropped"
	StatusPlanToWatch Status = "Plan to Watch"
	StatusPlanToRead  Status = "Plan to Read"
)

// Phase is the kind-neutral meaning of a status: Watching and Reading are
// both PhaseCurrent, Plan to Watch and Plan to Read are both PhasePlanned.
type Phase string

const (
	PhaseCurrent   Phase = "current"
	PhaseCompleted Phase = "completed"
	PhaseOnHold    Phase = "on_hold"
	PhaseDropped   Phase = "dropped"
	PhasePlanned   Phase = "planned"
)

var statusPhases = map[Status]Phase{
	StatusWatching:    PhaseCurrent,
	StatusReading:     PhaseCurrent,
	StatusCompleted:   PhaseCompleted,
	StatusOnHold:      PhaseOnHold,
	StatusDropped:     PhaseDropped,
	StatusPlanToWatch: PhasePlanned,
	StatusPlanToRead:  PhasePlanned,
}

// Phase returns "" for strings outside the closed status set.
func (s Status) Phase() Phase {
	return statusPhases[s]
}

// Statuses lists the closed status set of a kind, in list-page order.
func (k Kind) Statuses() []Status {
	switch k {
	case KindAnime:
		return []Status{StatusWatching, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToWatch}
	case KindManga:
		return []Status{StatusReading, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToRead}
	default:
		return nil
	}
}

func (k Kind) HasStatus(s Status) bool {
	for _, v := range k.Statuses() {
		if v == s {
			return true
		}
	}
	return false
}

// StatusFor returns the status of kind k that carries phase p.
func (k Kind) StatusFor(p Phase) (Status, bool) {
	for _, s := range k.Statuses() {
		if s.Phase() == p {
			return s, true
		}
	}
	return "", false
}

// StatusFromCode maps the numeric status used by the list load.json endpoint.
func StatusFromCode(k Kind, code int) (Status, error) {
	var p Phase
	switch code {
	case 1:
		p = PhaseCurrent
	case 2:
		p = PhaseCompleted
	case 3:
		p = PhaseOnHold
	case 4:
		p = PhaseDropped
	case 6:
		p = PhasePlanned
	default:
		return "", fmt.Errorf("unknown %s status code %d", k, code)
	}
	s, ok := k.StatusFor(p)
	if !ok {
		return "", fmt.Errorf("unknown list kind %q", k)
	}
	return s, nil
}

// Code is the numeric list-page status code: 1 current, 2 completed,
// 3 on hold, 4 dropped, 6 planned. Unknown statuses return 0.
func (s Status) Code() int {
	switch s.Phase() {
	case PhaseCurrent:
		return 1
	case PhaseCompleted:
		return 2
	case PhaseOnHold:
		return 3
	case PhaseDropped:
		return 4
	case PhasePlanned:
		return 6
	default:
		return 0
	}
}

// ParsePhase accepts any status name of either kind (case-insensitive) plus
// the shorthands "planned", "current", "on hold" and "onhold".
func ParsePhase(s string) (Phase, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "watching", "reading", "current":
		return PhaseCurrent, true
	case "completed":
		return PhaseCompleted, true
	case "on-hold", "on hold", "onhold", "on_hold":
		return PhaseOnHold, true
	case "dropped":
		return PhaseDropped, true
	case "plan to watch", "plan to read", "planned", "plan_to_watch", "plan_to_read":
		return PhasePlanned, true
	default:
		return "", false
	}
}
