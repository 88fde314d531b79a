package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	"github.com/rapidwifi/zone/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, rec auditdomain.Record) auditdomain.Entry {
	actor := strings.TrimSpace(rec.Actor)
	if actor == "" {
		actor = auditdomain.ActorSystem
	}
	status := rec.Status
	if status == "" {
		status = auditdomain.StatusSuccess
	}

	payload := map[string]any{}
	for key, value := range rec.Details {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := auditdomain.Entry{
		ID:        s.genID.Generate(),
		Action:    strings.TrimSpace(rec.Action),
		Actor:     actor,
		Target:    strings.TrimSpace(rec.Target),
		Channel:   rec.Channel,
		Status:    status,
		Details:   datatypes.JSONMap(payload),
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("target", entry.Target),
			zap.Error(err))
	}
	return entry
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.Entry, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, auditdomain.ErrInvalidTimeRange
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) ExportCSV(entries []auditdomain.Entry) string {
	var b strings.Builder
	b.WriteString("action,actor,target,details,timestamp\n")
	for _, e := range entries {
		details := ""
		if len(e.Details) > 0 {
			raw, err := json.Marshal(e.Details)
			if err == nil {
				details = strings.ReplaceAll(string(raw), "\n", " ")
			}
		}
		// Details carry JSON; quote the field so embedded commas stay inside it.
		details = `"` + strings.ReplaceAll(details, `"`, `""`) + `"`
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s\n",
			e.Action, e.Actor, e.Target, details, e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	return b.String()
}
