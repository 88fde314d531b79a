package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Record is the input to Append.
type Record struct {
	Action  string
	Actor   string
	Target  string
	Channel string
	Status  string
	Details map[string]any
}

// ListFilter is a conjunctive filter over stored entries.
type ListFilter struct {
	Action string
	Actor  string
	Target string
	From   *time.Time
	To     *time.Time
	Limit  int
}

type Service interface {
	// Append writes one entry. It never fails the calling operation: a
	// storage failure is logged and swallowed, because losing an audit line
	// must not block a voucher mutation that already happened remotely.
	Append(ctx context.Context, rec Record) Entry

	// List returns entries matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// ExportCSV renders entries with a deterministic column order:
	// action, actor, target, details, timestamp.
	ExportCSV(entries []Entry) string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Entry, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
