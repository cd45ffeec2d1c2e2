package goal

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

const (
	// MaxDays bounds the plan length a single request may ask for.
	MaxDays = 365
	// MaxHoursPerDay is the most study time a day can hold.
	MaxHoursPerDay = 24
)

// Request is the user's learning goal as submitted.
type Request struct {
	Title             string  `json:"title"`
	StartDate         Date    `json:"startDate"`
	NumberOfDays      int     `json:"numberOfDays"`
	HoursPerDay       float64 `json:"hoursPerDay"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

// Normalize trims free-text fields in place.
func (r *Request) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ExternalReference = strings.TrimSpace(r.ExternalReference)
}

// Validate reports every constraint the request violates as a
// *ValidationError, or nil.
func (r Request) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(r.Title) == "" {
		verr.add("title", "is required")
	}
	if r.StartDate.IsZero() {
		verr.add("startDate", "is required")
	}
	switch {
	case r.NumberOfDays < 1:
		verr.add("numberOfDays", "must be at least 1")
	case r.NumberOfDays > MaxDays:
		verr.add("numberOfDays", "must be at most 365")
	}
	switch {
	case r.HoursPerDay <= 0:
		verr.add("hoursPerDay", "must be greater than 0")
	case r.HoursPerDay > MaxHoursPerDay:
		verr.add("hoursPerDay", "must be at most 24")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Goal is a stored goal together with its generated plan.
type Goal struct {
	ID string `json:"id"`
	Request
	DailyPlan []planning.DayPlan      `json:"dailyPlan"`
	Report    planning.DayCountReport `json:"dayCountReport"`
	Fallback  bool                    `json:"fallback"`
	Model     string                  `json:"model,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// DateForDay returns the calendar date of the day with the given number.
func (g *Goal) DateForDay(dayNumber int) Date {
	if g.StartDate.IsZero() {
		return Date{}
	}
	return g.StartDate.AddDays(dayNumber - 1)
}

// Progress computes completion of the goal's plan against state.
func (g *Goal) Progress(state *planning.CompletionState) planning.Progress {
	return planning.ComputeProgress(g.DailyPlan, state)
}
