package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	profiledomain "github.com/rapidwifi/zone/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Profile names on the appliance follow "<duration>-<price>FCFA",
// e.g. "1h-1000FCFA". The price embedded in the name is authoritative for
// tiers that were configured on the router before this system existed.
var pricedNameRe = regexp.MustCompile(`^([^-]+)-(\d+)FCFA$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  profiledomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  profiledomain.Repository
}

func NewService(p Params) profiledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]profiledomain.Profile, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, name string) (profiledomain.Profile, error) {
	profile, err := s.repo.GetByName(ctx, s.db, strings.TrimSpace(name))
	if err != nil {
		return profiledomain.Profile{}, err
	}
	if profile == nil {
		return profiledomain.Profile{}, profiledomain.ErrProfileNotFound
	}
	return *profile, nil
}

func (s *Service) PriceFor(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	profile, err := s.repo.GetByName(ctx, s.db, name)
	if err != nil {
		return 0, err
	}
	if profile != nil {
		return profile.Price, nil
	}

	if price, ok := ParsePricedName(name); ok {
		return price, nil
	}
	return 0, profiledomain.ErrUnpricedProfile
}

// ParsePricedName extracts the price from a "<duration>-<price>FCFA" name.
func ParsePricedName(name string) (int64, bool) {
	m := pricedNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	price, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
