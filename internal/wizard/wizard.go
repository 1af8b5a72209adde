// Package wizard models the booking wizard as a finite-state machine: one
// state per step, one transition table, and guards that decide whether the
// user may move on.
package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"benessere-booking/internal/booking"
	"benessere-booking/internal/catalog"
	"benessere-booking/internal/slots"
)

type State int

const (
	StateService State = iota
	StateDuration
	StateDate
	StateTime
	StateContact
	StateSummary
	StateDone
)

var stateNames = [...]string{"service", "duration", "date", "time", "contact", "summary", "done"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

type Event int

const (
	EventNext Event = iota
	EventBack
	EventSubmitted
	EventReset
)

func (e Event) String() string {
	switch e {
	case EventNext:
		return "next"
	case EventBack:
		return "back"
	case EventSubmitted:
		return "submitted"
	case EventReset:
		return "reset"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

var (
	ErrNoTransition   = errors.New("wizard: no transition")
	ErrGuard          = errors.New("wizard: step incomplete")
	ErrWrongState     = errors.New("wizard: selection not allowed in current state")
	ErrUnknownService = errors.New("wizard: unknown service")
	ErrUnknownLength  = errors.New("wizard: duration not offered by service")
	ErrPastDate       = errors.New("wizard: date is in the past")
)

type Contact struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// Selection is everything picked so far.
type Selection struct {
	Service     catalog.Service
	HasService  bool
	Duration    catalog.Duration
	HasDuration bool
	Date        string
	Time        string
	Contact     Contact

	// autoDuration is set when the duration step was skipped.
	autoDuration bool
}

type rule struct {
	guard func(*Wizard) bool
	// enter picks the target state and may adjust the selection on the way.
	enter func(*Wizard) State
}

func to(s State) func(*Wizard) State { return func(*Wizard) State { return s } }

func always(*Wizard) bool { return true }

var transitions = map[State]map[Event]rule{
	StateService: {
		EventNext: {guard: hasService, enter: afterService},
	},
	StateDuration: {
		EventNext: {guard: hasDuration, enter: to(StateDate)},
		EventBack: {guard: always, enter: to(StateService)},
	},
	StateDate: {
		EventNext: {guard: hasDate, enter: to(StateTime)},
		EventBack: {guard: always, enter: beforeDate},
	},
	StateTime: {
		EventNext: {guard: hasTime, enter: to(StateContact)},
		EventBack: {guard: always, enter: to(StateDate)},
	},
	StateContact: {
		EventNext: {guard: contactComplete, enter: to(StateSummary)},
		EventBack: {guard: always, enter: to(StateTime)},
	},
	StateSummary: {
		EventBack:      {guard: always, enter: to(StateContact)},
		EventSubmitted: {guard: always, enter: to(StateDone)},
	},
}

func hasService(w *Wizard) bool  { return w.sel.HasService }
func hasDuration(w *Wizard) bool { return w.sel.HasDuration }
func hasDate(w *Wizard) bool     { return w.sel.Date != "" }
func hasTime(w *Wizard) bool     { return w.sel.Time != "" }

func contactComplete(w *Wizard) bool {
	c := w.sel.Contact
	return strings.TrimSpace(c.Name) != "" &&
		strings.Contains(c.Email, "@") &&
		strings.TrimSpace(c.Phone) != ""
}

func afterService(w *Wizard) State {
	if d, ok := w.sel.Service.DefaultDuration(); ok {
		w.sel.Duration, w.sel.HasDuration = d, true
		w.sel.autoDuration = true
		return StateDate
	}
	return StateDuration
}

func beforeDate(w *Wizard) State {
	if w.sel.autoDuration {
		return StateService
	}
	return StateDuration
}

// Wizard is not safe for concurrent use.
type Wizard struct {
	state State
	sel   Selection
	now   func() time.Time
	loc   *time.Location
}

// New starts a wizard at the service step. Dates before today in loc are
// rejected.
func New(loc *time.Location, now func() time.Time) *Wizard {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Wizard{state: StateService, now: now, loc: loc}
}

func (w *Wizard) State() State { return w.state }

func (w *Wizard) Selection() Selection { return w.sel }

// CanProceed reports whether Next would be accepted.
func (w *Wizard) CanProceed() bool {
	r, ok := transitions[w.state][EventNext]
	return ok && r.guard(w)
}

// Fire applies e to the current state.
func (w *Wizard) Fire(e Event) error {
	if e == EventReset {
		w.state = StateService
		w.sel = Selection{}
		return nil
	}
	r, ok := transitions[w.state][e]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrNoTransition, e, w.state)
	}
	if !r.guard(w) {
		return fmt.Errorf("%w: %s", ErrGuard, w.state)
	}
	w.state = r.enter(w)
	return nil
}

// JumpTo moves back to an earlier step, as the step indicator allows. The
// duration step cannot be reached when it was skipped.
func (w *Wizard) JumpTo(s State) error {
	if w.state == StateDone || s < StateService || s >= w.state ||
		(s == StateDuration && w.sel.autoDuration) {
		return fmt.Errorf("%w: jump from %s to %s", ErrNoTransition, w.state, s)
	}
	w.state = s
	return nil
}

func (w *Wizard) require(s State) error {
	if w.state != s {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	return nil
}

// SelectService picks a service by id. A single-duration service gets its
// duration preselected; otherwise any previous duration is cleared.
func (w *Wizard) SelectService(id string) error {
	if err := w.require(StateService); err != nil {
		return err
	}
	svc, ok := catalog.Find(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownService, id)
	}
	w.sel.Service, w.sel.HasService = svc, true
	w.sel.autoDuration = false
	if d, ok := svc.DefaultDuration(); ok {
		w.setDuration(d)
	} else {
		w.sel.Duration, w.sel.HasDuration = catalog.Duration{}, false
		w.sel.Time = ""
	}
	return nil
}

func (w *Wizard) SelectDuration(minutes int) error {
	if err := w.require(StateDuration); err != nil {
		return err
	}
	for _, d := range w.sel.Service.Durations {
		if d.Minutes == minutes {
			w.setDuration(d)
			w.sel.autoDuration = false
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownLength, minutes)
}

func (w *Wizard) setDuration(d catalog.Duration) {
	if !w.sel.HasDuration || w.sel.Duration != d {
		w.sel.Time = ""
	}
	w.sel.Duration, w.sel.HasDuration = d, true
}

// SelectDate picks a YYYY-MM-DD day that is not before today.
func (w *Wizard) SelectDate(date string) error {
	if err := w.require(StateDate); err != nil {
		return err
	}
	day, err := slots.ParseDate(date)
	if err != nil {
		return err
	}
	today := w.now().In(w.loc).Format(slots.DateLayout)
	if day.Format(slots.DateLayout) < today {
		return fmt.Errorf("%w: %s", ErrPastDate, date)
	}
	if w.sel.Date != date {
		w.sel.Time = ""
	}
	w.sel.Date = date
	return nil
}

func (w *Wizard) SelectTime(slot string) error {
	if err := w.require(StateTime); err != nil {
		return err
	}
	if _, err := slots.ParseHHMM(slot); err != nil {
		return err
	}
	w.sel.Time = slot
	return nil
}

func (w *Wizard) SetContact(c Contact) error {
	if err := w.require(StateContact); err != nil {
		return err
	}
	w.sel.Contact = c
	return nil
}

// Request builds and validates the booking submitted from the summary step.
// serviceName is the localized display name of the selected service.
func (w *Wizard) Request(serviceName, locale string) (booking.Request, error) {
	if err := w.require(StateSummary); err != nil {
		return booking.Request{}, err
	}
	duration := w.sel.Duration.Minutes
	price := w.sel.Duration.Price
	notes := w.sel.Contact.Notes
	return booking.Validate(booking.Payload{
		Name:        w.sel.Contact.Name,
		Email:       w.sel.Contact.Email,
		Phone:       w.sel.Contact.Phone,
		Notes:       &notes,
		Service:     w.sel.Service.ID,
		ServiceName: serviceName,
		Duration:    &duration,
		Price:       &price,
		Date:        w.sel.Date,
		Time:        w.sel.Time,
		Locale:      &locale,
	})
}
