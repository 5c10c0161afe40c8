// Package appointment is the appointment allocator: it works out which
// 30-minute slots of a day are still free, books them, and lists what is
// booked.
//
// There is no index and no lock. Free slots are found by scanning every
// booking, and the clash check right before a booking is appended is the
// only guard against double-booking (the SQLite backend adds a UNIQUE
// constraint on top).
package appointment

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aanand-mishra/student-logging/internal/storage"
	"github.com/aanand-mishra/student-logging/internal/types"
)

var (
	ErrNoSupervisor   = errors.New("no personal supervisor assigned")
	ErrDateInPast     = errors.New("the date should be today or later")
	ErrSlotOutOfHours = errors.New("time is not one of the bookable slots")

	// ErrSlotTaken is storage.ErrSlotTaken so callers can match either.
	ErrSlotTaken = storage.ErrSlotTaken
)

// Allocator books appointments against an AppointmentStore.
type Allocator struct {
	store storage.AppointmentStore
	hours Hours
	loc   *time.Location
	now   func() time.Time
	log   *slog.Logger

	// substring selects the legacy "line contains name" lookup for
	// Upcoming instead of comparing the name fields.
	substring bool
}

type Option func(*Allocator)

// WithHours overrides DefaultHours.
func WithHours(h Hours) Option { return func(a *Allocator) { a.hours = h } }

// WithLocation sets the zone slots are generated in. Default time.Local.
func WithLocation(loc *time.Location) Option { return func(a *Allocator) { a.loc = loc } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(a *Allocator) { a.now = now } }

func WithSubstringMatch(on bool) Option { return func(a *Allocator) { a.substring = on } }

func New(store storage.AppointmentStore, log *slog.Logger, opts ...Option) *Allocator {
	a := &Allocator{
		store: store,
		hours: DefaultHours,
		loc:   time.Local,
		now:   time.Now,
		log:   log.With(slog.String("component", "appointment")),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location is the zone dates are interpreted in.
func (a *Allocator) Location() *time.Location { return a.loc }

// CheckDate accepts today or any later calendar day. Time of day is
// ignored, so a booking for earlier today is still allowed.
func (a *Allocator) CheckDate(date time.Time) error {
	if sameDay(date, a.loc).Before(sameDay(a.now(), a.loc)) {
		return ErrDateInPast
	}
	return nil
}

// AvailableSlots lists the free slots of date in ascending order.
func (a *Allocator) AvailableSlots(date time.Time) ([]time.Time, error) {
	booked, err := a.store.LoadAppointments()
	if err != nil {
		return nil, fmt.Errorf("AvailableSlots: %w", err)
	}
	return GenerateSlots(sameDay(date, a.loc), a.hours, storage.BookedSlots(booked)), nil
}

// IsSlotTaken reports whether any booking has exactly this yyyy-MM-dd HH:mm.
func (a *Allocator) IsSlotTaken(slot time.Time) (bool, error) {
	booked, err := a.store.LoadAppointments()
	if err != nil {
		return false, fmt.Errorf("IsSlotTaken: %w", err)
	}
	return IsSlotTaken(slot.In(a.loc), storage.BookedSlots(booked)), nil
}

// Book records a meeting between student and their supervisor at slot.
//
// The slot is re-checked against the store immediately before the append.
// Two processes booking at the same moment can still both succeed on the
// text backend.
func (a *Allocator) Book(student types.Student, slot time.Time) (types.Appointment, error) {
	if !student.HasSupervisor() {
		return types.Appointment{}, ErrNoSupervisor
	}

	slot = slot.In(a.loc)
	if !a.hours.OnGrid(slot) {
		return types.Appointment{}, ErrSlotOutOfHours
	}
	if err := a.CheckDate(slot); err != nil {
		return types.Appointment{}, err
	}

	appt := types.Appointment{
		Slot:           slot,
		SupervisorName: student.SupervisorName,
		StudentName:    student.Name,
	}
	if err := types.Validator().Struct(appt); err != nil {
		return types.Appointment{}, err
	}

	taken, err := a.IsSlotTaken(slot)
	if err != nil {
		return types.Appointment{}, fmt.Errorf("Book: %w", err)
	}
	if taken {
		return types.Appointment{}, ErrSlotTaken
	}

	if err := a.store.AppendAppointment(appt); err != nil {
		return types.Appointment{}, fmt.Errorf("Book: %w", err)
	}

	a.log.Info("appointment booked",
		slog.String("slot", slot.Format(types.SlotLayout)),
		slog.String("supervisor", appt.SupervisorName),
		slog.String("student", appt.StudentName))
	return appt, nil
}

// Upcoming returns the meetings name takes part in, earliest first.
func (a *Allocator) Upcoming(name string) ([]types.Appointment, error) {
	all, err := a.store.LoadAppointments()
	if err != nil {
		return nil, fmt.Errorf("Upcoming: %w", err)
	}

	mine := make([]types.Appointment, 0)
	for _, appt := range all {
		if a.matches(appt, name) {
			mine = append(mine, appt)
		}
	}
	sortAscending(mine)
	return mine, nil
}

// All returns every meeting, earliest first.
func (a *Allocator) All() ([]types.Appointment, error) {
	all, err := a.store.LoadAppointments()
	if err != nil {
		return nil, fmt.Errorf("All: %w", err)
	}
	sortAscending(all)
	return all, nil
}

func (a *Allocator) matches(appt types.Appointment, name string) bool {
	if a.substring {
		return strings.Contains(appt.String(), name)
	}
	return appt.Involves(name)
}

func sortAscending(appts []types.Appointment) {
	slices.SortStableFunc(appts, func(x, y types.Appointment) int {
		return x.Slot.Compare(y.Slot)
	})
}
