package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	"github.com/rapidwifi/zone/internal/clock"
	"github.com/rapidwifi/zone/internal/config"
	"github.com/rapidwifi/zone/internal/metrics"
	routerdomain "github.com/rapidwifi/zone/internal/router/domain"
	"github.com/rapidwifi/zone/internal/router/parse"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"github.com/rapidwifi/zone/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const duplicateRetries = 5

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Channel  routerdomain.Channel
	AuditSvc auditdomain.Service
	Repo     voucherdomain.Repository
	Cfg      config.Config
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	channel  routerdomain.Channel
	auditSvc auditdomain.Service
	repo     voucherdomain.Repository
	cfg      config.VoucherConfig
	metrics  *metrics.Metrics
}

func NewService(p Params) voucherdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("voucher.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		channel:  p.Channel,
		auditSvc: p.AuditSvc,
		repo:     p.Repo,
		cfg:      p.Cfg.Voucher,
		metrics:  p.Metrics,
	}
}

// CreateBatch iterates sequentially on purpose: the channel has no
// transactions and no pipelining, so overlapping writes on one instance are
// unsafe. Each voucher gets exactly one audit entry, success or failure, and
// a failed voucher never aborts its siblings.
func (s *Service) CreateBatch(ctx context.Context, count int, profileName, batchTag, createdBy string) (voucherdomain.BatchResult, error) {
	if count <= 0 {
		return voucherdomain.BatchResult{}, voucherdomain.ErrInvalidCount
	}

	batchTag = strings.TrimSpace(batchTag)
	if batchTag == "" {
		batchTag = fmt.Sprintf("batch-%d", s.clock.Now().UnixMilli())
	}
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		createdBy = auditdomain.ActorSystem
	}

	result := voucherdomain.BatchResult{BatchTag: batchTag}
	for i := 0; i < count; i++ {
		voucher, err := s.createOne(ctx, profileName, batchTag, createdBy)
		if err != nil {
			s.countCreated(profileName, "failed")
			result.Failed = append(result.Failed, voucherdomain.BatchFailure{
				Username: voucher.Username,
				Reason:   err.Error(),
			})
			continue
		}
		s.countCreated(profileName, "success")
		result.Created = append(result.Created, voucher)
	}
	return result, nil
}

func (s *Service) createOne(ctx context.Context, profileName, batchTag, createdBy string) (voucherdomain.Voucher, error) {
	voucher := voucherdomain.Voucher{
		Profile:   profileName,
		BatchTag:  batchTag,
		Status:    voucherdomain.StatusActive,
		CreatedBy: createdBy,
	}

	username, password, err := s.generateIdentity(ctx)
	if err != nil {
		s.appendAudit(ctx, auditdomain.ActionCreate, createdBy, username, auditdomain.StatusFailed, map[string]any{
			"batchTag": batchTag, "profile": profileName, "errorMessage": err.Error(),
		})
		return voucher, err
	}
	voucher.Username = username
	voucher.Password = password

	// Remote first, registry second. The reverse order could mark a voucher
	// active locally that the access point never accepted.
	out, err := s.channel.Execute(ctx, routerdomain.AddUser(username, password, profileName, batchTag))
	s.countCommand("add", err)
	if err != nil {
		s.appendAudit(ctx, auditdomain.ActionCreate, createdBy, username, auditdomain.StatusFailed, map[string]any{
			"batchTag": batchTag, "profile": profileName, "errorMessage": err.Error(),
		})
		return voucher, err
	}
	if msg, failed := routerdomain.CommandFailure(out); failed {
		err := fmt.Errorf("%w: %s", voucherdomain.ErrRemoteRejected, msg)
		s.appendAudit(ctx, auditdomain.ActionCreate, createdBy, username, auditdomain.StatusFailed, map[string]any{
			"batchTag": batchTag, "profile": profileName, "errorMessage": msg,
		})
		return voucher, err
	}

	now := s.clock.Now()
	voucher.ID = s.genID.Generate()
	voucher.CreatedAt = now
	voucher.UpdatedAt = now
	if err := s.repo.Insert(ctx, s.db, &voucher); err != nil {
		if db.IsDuplicateKeyErr(err) {
			err = voucherdomain.ErrDuplicateIdentity
		}
		s.appendAudit(ctx, auditdomain.ActionCreate, createdBy, username, auditdomain.StatusFailed, map[string]any{
			"batchTag": batchTag, "profile": profileName, "errorMessage": err.Error(),
		})
		return voucher, err
	}

	s.appendAudit(ctx, auditdomain.ActionCreate, createdBy, username, auditdomain.StatusSuccess, map[string]any{
		"batchTag": batchTag, "profile": profileName,
	})
	return voucher, nil
}

// generateIdentity draws random codes until the username is free locally.
// The local check runs before any remote mutation so a collision never
// reaches the appliance.
func (s *Service) generateIdentity(ctx context.Context) (string, string, error) {
	for attempt := 0; attempt < duplicateRetries; attempt++ {
		username, err := generateCode(s.usernameLength())
		if err != nil {
			return "", "", err
		}
		existing, err := s.repo.GetByUsername(ctx, s.db, username)
		if err != nil {
			return username, "", err
		}
		if existing != nil {
			continue
		}
		password, err := generateCode(s.passwordLength())
		if err != nil {
			return username, "", err
		}
		return username, password, nil
	}
	return "", "", voucherdomain.ErrDuplicateIdentity
}

func (s *Service) Get(ctx context.Context, username string) (voucherdomain.Voucher, error) {
	voucher, err := s.repo.GetByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return voucherdomain.Voucher{}, err
	}
	if voucher == nil {
		return voucherdomain.Voucher{}, voucherdomain.ErrNotFound
	}
	return *voucher, nil
}

func (s *Service) Validate(ctx context.Context, username, password string) (voucherdomain.Voucher, bool, error) {
	voucher, err := s.repo.GetByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return voucherdomain.Voucher{}, false, err
	}
	if voucher == nil || voucher.Status != voucherdomain.StatusActive {
		return voucherdomain.Voucher{}, false, nil
	}
	if subtle.ConstantTimeCompare([]byte(voucher.Password), []byte(password)) != 1 {
		return voucherdomain.Voucher{}, false, nil
	}
	return *voucher, true, nil
}

// Block disables a voucher on the access point and marks it blocked locally.
// Re-blocking an already-blocked voucher is an idempotent success; blocking a
// deleted voucher reports not-found so the attempt still reaches the audit
// log.
func (s *Service) Block(ctx context.Context, username, actor string) (voucherdomain.Voucher, error) {
	username = strings.TrimSpace(username)
	voucher, err := s.repo.GetByUsername(ctx, s.db, username)
	if err != nil {
		return voucherdomain.Voucher{}, err
	}
	if voucher == nil {
		s.appendAudit(ctx, auditdomain.ActionBlock, actor, username, auditdomain.StatusFailed, map[string]any{
			"errorMessage": voucherdomain.ErrNotFound.Error(),
		})
		return voucherdomain.Voucher{}, voucherdomain.ErrNotFound
	}
	if voucher.Status == voucherdomain.StatusBlocked {
		s.appendAudit(ctx, auditdomain.ActionBlock, actor, username, auditdomain.StatusSuccess, map[string]any{
			"alreadyBlocked": true,
		})
		return *voucher, nil
	}
	if !voucherdomain.CanTransition(voucher.Status, voucherdomain.StatusBlocked) {
		err := &voucherdomain.InvalidTransitionError{From: voucher.Status, To: voucherdomain.StatusBlocked}
		s.appendAudit(ctx, auditdomain.ActionBlock, actor, username, auditdomain.StatusFailed, map[string]any{
			"errorMessage": err.Error(), "currentStatus": string(voucher.Status),
		})
		return voucherdomain.Voucher{}, err
	}

	if err := s.execute(ctx, "disable", routerdomain.DisableUser(username)); err != nil {
		s.appendAudit(ctx, auditdomain.ActionBlock, actor, username, auditdomain.StatusFailed, map[string]any{
			"errorMessage": err.Error(),
		})
		return voucherdomain.Voucher{}, err
	}

	now := s.clock.Now()
	changed, err := s.repo.UpdateStatus(ctx, s.db, username,
		[]voucherdomain.Status{voucherdomain.StatusActive, voucherdomain.StatusSold},
		voucherdomain.StatusBlocked, now)
	if err != nil {
		s.appendAudit(ctx, auditdomain.ActionBlock, actor, username, auditdomain.StatusFailed, map[string]any{
			"errorMessage": err.Error(),
		})
		return voucherdomain.Voucher{}, err
	}
	if changed {
		voucher.Status = voucherdomain.StatusBlocked
		voucher.UpdatedAt = now
	}

	s.appendAudit(ctx, auditdomain.ActionBlock, actor, username, auditdomain.StatusSuccess, nil)
	return *voucher, nil
}

// Delete removes the user remotely and soft-deletes the local row. Valid
// from any non-deleted state; deleted is terminal.
func (s *Service) Delete(ctx context.Context, username, actor string) error {
	username = strings.TrimSpace(username)
	voucher, err := s.repo.GetByUsername(ctx, s.db, username)
	if err != nil {
		return err
	}
	if voucher == nil {
		s.appendAudit(ctx, auditdomain.ActionDelete, actor, username, auditdomain.StatusFailed, map[string]any{
			"errorMessage": voucherdomain.ErrNotFound.Error(),
		})
		return voucherdomain.ErrNotFound
	}

	if err := s.execute(ctx, "remove", routerdomain.RemoveUser(username)); err != nil {
		s.appendAudit(ctx, auditdomain.ActionDelete, actor, username, auditdomain.StatusFailed, map[string]any{
			"errorMessage": err.Error(),
		})
		return err
	}

	if _, err := s.repo.UpdateStatus(ctx, s.db, username,
		[]voucherdomain.Status{voucherdomain.StatusPending, voucherdomain.StatusActive, voucherdomain.StatusSold, voucherdomain.StatusBlocked},
		voucherdomain.StatusDeleted, s.clock.Now()); err != nil {
		s.appendAudit(ctx, auditdomain.ActionDelete, actor, username, auditdomain.StatusFailed, map[string]any{
			"errorMessage": err.Error(),
		})
		return err
	}

	s.appendAudit(ctx, auditdomain.ActionDelete, actor, username, auditdomain.StatusSuccess, nil)
	return nil
}

// RevokeBatch blocks every remote user whose comment carries the batch tag.
// Individual failures are collected into the summary entry rather than
// aborting the sweep.
func (s *Service) RevokeBatch(ctx context.Context, batchTag, actor string) (int, error) {
	batchTag = strings.TrimSpace(batchTag)
	records, err := s.FetchRemote(ctx)
	if err != nil {
		s.appendAudit(ctx, auditdomain.ActionRevokeBatch, actor, batchTag, auditdomain.StatusFailed, map[string]any{
			"errorMessage": err.Error(),
		})
		return 0, err
	}

	blocked := 0
	var failures []string
	for _, record := range records {
		if record.Comment != batchTag || record.Disabled {
			continue
		}
		if err := s.execute(ctx, "disable", routerdomain.DisableUser(record.Name)); err != nil {
			failures = append(failures, record.Name)
			continue
		}
		if _, err := s.repo.UpdateStatus(ctx, s.db, record.Name,
			[]voucherdomain.Status{voucherdomain.StatusActive, voucherdomain.StatusSold},
			voucherdomain.StatusBlocked, s.clock.Now()); err != nil {
			failures = append(failures, record.Name)
			continue
		}
		blocked++
	}

	status := auditdomain.StatusSuccess
	details := map[string]any{"blocked": blocked, "batchTag": batchTag}
	if len(failures) > 0 {
		details["failed"] = failures
		if blocked == 0 {
			status = auditdomain.StatusFailed
		}
	}
	s.appendAudit(ctx, auditdomain.ActionRevokeBatch, actor, batchTag, status, details)
	return blocked, nil
}

func (s *Service) ListFiltered(ctx context.Context, filter voucherdomain.Filter) ([]voucherdomain.Voucher, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) FetchRemote(ctx context.Context) ([]routerdomain.RemoteUserRecord, error) {
	raw, err := s.channel.Execute(ctx, routerdomain.ListUsers())
	s.countCommand("list", err)
	if err != nil {
		return nil, err
	}
	return parse.Parse(raw), nil
}

func (s *Service) ExportCSV(vouchers []voucherdomain.Voucher) string {
	var b strings.Builder
	b.WriteString("id,username,password,profile,status,batch_tag,created_by,created_at\n")
	for _, v := range vouchers {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s,%s\n",
			v.ID, v.Username, v.Password, v.Profile, v.Status, v.BatchTag, v.CreatedBy,
			v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	return b.String()
}

// execute runs one remote command and folds appliance-side failure text into
// an error, so callers handle one failure path.
func (s *Service) execute(ctx context.Context, verb, command string) error {
	out, err := s.channel.Execute(ctx, command)
	s.countCommand(verb, err)
	if err != nil {
		return err
	}
	if msg, failed := routerdomain.CommandFailure(out); failed {
		return fmt.Errorf("%w: %s", voucherdomain.ErrRemoteRejected, msg)
	}
	return nil
}

func (s *Service) appendAudit(ctx context.Context, action, actor, target, status string, details map[string]any) {
	s.auditSvc.Append(ctx, auditdomain.Record{
		Action:  action,
		Actor:   actor,
		Target:  target,
		Channel: auditdomain.ChannelDashboard,
		Status:  status,
		Details: details,
	})
}

func (s *Service) usernameLength() int {
	if s.cfg.UsernameLength > 0 {
		return s.cfg.UsernameLength
	}
	return 4
}

func (s *Service) passwordLength() int {
	if s.cfg.PasswordLength > 0 {
		return s.cfg.PasswordLength
	}
	return 5
}

func (s *Service) countCreated(profile, outcome string) {
	if s.metrics != nil {
		s.metrics.VouchersCreated.WithLabelValues(profile, outcome).Inc()
	}
}

func (s *Service) countCommand(verb string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.CommandsExecuted.WithLabelValues(verb, outcome).Inc()
}
