// Package feeling is the feeling log: students record how they feel on a
// 1–10 scale once a day, supervisors and senior tutors read it back.
package feeling

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-logging/internal/storage"
	"github.com/aanand-mishra/student-logging/internal/types"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 10
)

var ErrRatingOutOfRange = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)

// Log reads and appends feeling entries.
type Log struct {
	store storage.FeelingStore
	loc   *time.Location
	now   func() time.Time
	log   *slog.Logger

	// substring selects the legacy "line contains name" lookup in For.
	substring bool
}

type Option func(*Log)

func WithLocation(loc *time.Location) Option { return func(l *Log) { l.loc = loc } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(l *Log) { l.now = now } }

func WithSubstringMatch(on bool) Option { return func(l *Log) { l.substring = on } }

func New(store storage.FeelingStore, log *slog.Logger, opts ...Option) *Log {
	l := &Log{
		store: store,
		loc:   time.Local,
		now:   time.Now,
		log:   log.With(slog.String("component", "feeling")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record logs today's rating for student.
func (l *Log) Record(student string, rating int) (types.FeelingEntry, error) {
	y, m, d := l.now().In(l.loc).Date()
	entry := types.FeelingEntry{
		Day:         time.Date(y, m, d, 0, 0, 0, 0, l.loc),
		StudentName: student,
		Rating:      rating,
	}

	if err := types.Validator().Struct(entry); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.StructField() == "Rating" {
					return types.FeelingEntry{}, ErrRatingOutOfRange
				}
			}
		}
		return types.FeelingEntry{}, err
	}

	if err := l.store.AppendFeeling(entry); err != nil {
		return types.FeelingEntry{}, fmt.Errorf("Record: %w", err)
	}

	l.log.Info("feeling logged",
		slog.String("student", student),
		slog.Int("rating", rating))
	return entry, nil
}

// For returns name's entries in log order.
func (l *Log) For(name string) ([]types.FeelingEntry, error) {
	all, err := l.store.LoadFeelings()
	if err != nil {
		return nil, fmt.Errorf("For: %w", err)
	}

	mine := make([]types.FeelingEntry, 0)
	for _, e := range all {
		if l.matches(e, name) {
			mine = append(mine, e)
		}
	}
	return mine, nil
}

// All returns every entry, most recent day first. Entries of the same day
// keep their log order.
func (l *Log) All() ([]types.FeelingEntry, error) {
	all, err := l.store.LoadFeelings()
	if err != nil {
		return nil, fmt.Errorf("All: %w", err)
	}
	slices.SortStableFunc(all, func(x, y types.FeelingEntry) int {
		return y.Day.Compare(x.Day)
	})
	return all, nil
}

func (l *Log) matches(e types.FeelingEntry, name string) bool {
	if l.substring {
		return strings.Contains(e.String(), name)
	}
	return e.StudentName == name
}
