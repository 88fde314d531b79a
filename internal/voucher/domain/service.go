package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	routerdomain "github.com/rapidwifi/zone/internal/router/domain"
	"gorm.io/gorm"
)

// Filter selects vouchers by the conjunction of its non-empty fields.
type Filter struct {
	Batch   string
	Status  Status
	Profile string
}

// BatchFailure records one voucher that could not be created. The batch as a
// whole is never aborted on a single failure; callers get a partial success
// summary instead.
type BatchFailure struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

type BatchResult struct {
	BatchTag string         `json:"batch_tag"`
	Created  []Voucher      `json:"created"`
	Failed   []BatchFailure `json:"failed"`
}

type Service interface {
	// CreateBatch creates count vouchers under one batch tag. Each voucher
	// is added on the access point before it is committed locally; a remote
	// failure skips that voucher and the batch continues.
	CreateBatch(ctx context.Context, count int, profile, batchTag, createdBy string) (BatchResult, error)

	// Validate reports whether an active voucher with this exact
	// username/password pair exists. Read path: no mutation, no audit entry.
	// A store failure is returned as err, never as ok=false.
	Validate(ctx context.Context, username, password string) (Voucher, bool, error)

	// Get resolves a non-deleted voucher by username.
	Get(ctx context.Context, username string) (Voucher, error)

	Block(ctx context.Context, username, actor string) (Voucher, error)
	Delete(ctx context.Context, username, actor string) error

	// RevokeBatch disables every remote user carrying the batch tag and
	// blocks the matching local rows. Returns the number of users disabled.
	RevokeBatch(ctx context.Context, batchTag, actor string) (int, error)

	ListFiltered(ctx context.Context, filter Filter) ([]Voucher, error)

	// FetchRemote reads the appliance's user table through the parser, for
	// drift detection against the registry.
	FetchRemote(ctx context.Context) ([]routerdomain.RemoteUserRecord, error)

	ExportCSV(vouchers []Voucher) string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, voucher *Voucher) error
	GetByUsername(ctx context.Context, db *gorm.DB, username string) (*Voucher, error)
	List(ctx context.Context, db *gorm.DB, filter Filter) ([]Voucher, error)
	// UpdateStatus moves a voucher to next only while its current status is
	// one of from; returns true when a row changed.
	UpdateStatus(ctx context.Context, db *gorm.DB, username string, from []Status, next Status, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error)
	CountByProfile(ctx context.Context, db *gorm.DB) (map[string]int64, error)
	CreatedPerDay(ctx context.Context, db *gorm.DB, since time.Time) (map[string]int64, error)
}

var (
	ErrNotFound          = errors.New("voucher_not_found")
	ErrDuplicateIdentity = errors.New("duplicate_identity")
	ErrInvalidCount      = errors.New("invalid_count")
	ErrRemoteRejected    = errors.New("remote_rejected")
)

// InvalidTransitionError identifies the current vs requested state of a
// rejected transition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// IsInvalidTransition reports whether err is a transition rejection.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
