// Package seed loads sample organizations and distributions into the store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/centromex/food-rescue-bot/internal/models"
	"github.com/centromex/food-rescue-bot/internal/textnorm"
)

//go:embed organizations.yaml
var defaultData []byte

type Store interface {
	CountOrganizations(ctx context.Context) (int, error)
	UpsertOrganization(ctx context.Context, org models.Organization) (*models.Organization, error)
	SetUserRole(ctx context.Context, phone string, role models.UserRole) error
	CreateDistribution(ctx context.Context, d models.ActiveDistribution) (*models.ActiveDistribution, error)
}

type File struct {
	Organizations []Organization `yaml:"organizations"`
	Distributions []Distribution `yaml:"distributions"`
}

type Organization struct {
	Name         string `yaml:"name"`
	Phone        string `yaml:"phone"`
	CoverageArea string `yaml:"coverage_area"`
	CanPickup    bool   `yaml:"can_pickup"`
	Hours        string `yaml:"hours"`
}

// Distribution is a live food distribution; ExpiresIn is relative to the
// time the seed runs, e.g. "3h".
type Distribution struct {
	VolunteerPhone string `yaml:"volunteer_phone"`
	FoodType       string `yaml:"food_type"`
	Qty            string `yaml:"qty"`
	Location       string `yaml:"location"`
	ExpiresIn      string `yaml:"expires_in"`
}

// Result reports what Apply wrote.
type Result struct {
	Organizations int
	Distributions int
	Skipped       bool
}

// Load reads a seed file, or the embedded sample set when path is empty.
func Load(path string) (*File, error) {
	data := defaultData
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, org := range f.Organizations {
		if org.Name == "" || org.Phone == "" {
			return nil, fmt.Errorf("organization %d: name and phone are required", i+1)
		}
	}
	for i, d := range f.Distributions {
		if _, err := time.ParseDuration(d.ExpiresIn); err != nil {
			return nil, fmt.Errorf("distribution %d: expires_in: %w", i+1, err)
		}
	}
	return &f, nil
}

// Apply upserts the organizations by normalized phone and creates the
// distributions. A store that already has organizations is left alone unless
// force is set.
func Apply(ctx context.Context, store Store, f *File, force bool, now time.Time, log *zap.Logger) (Result, error) {
	existing, err := store.CountOrganizations(ctx)
	if err != nil {
		return Result{}, err
	}
	if existing > 0 && !force {
		log.Info("database already has organizations, skipping seed", zap.Int("organizations", existing))
		return Result{Skipped: true}, nil
	}

	var res Result
	for _, o := range f.Organizations {
		phone := textnorm.Phone(o.Phone)
		org, err := store.UpsertOrganization(ctx, models.Organization{
			Name:         o.Name,
			Phone:        phone,
			CoverageArea: o.CoverageArea,
			CanPickup:    o.CanPickup,
			Hours:        o.Hours,
		})
		if err != nil {
			return res, fmt.Errorf("seed organization %q: %w", o.Name, err)
		}
		if err := store.SetUserRole(ctx, phone, models.RoleOrg); err != nil {
			return res, fmt.Errorf("seed role for %q: %w", o.Name, err)
		}
		res.Organizations++
		log.Debug("seeded organization", zap.Int64("org_id", org.ID), zap.String("name", org.Name))
	}

	for _, d := range f.Distributions {
		ttl, _ := time.ParseDuration(d.ExpiresIn)
		if _, err := store.CreateDistribution(ctx, models.ActiveDistribution{
			VolunteerPhone: textnorm.Phone(d.VolunteerPhone),
			FoodType:       d.FoodType,
			Qty:            d.Qty,
			Location:       d.Location,
			ExpiresAt:      now.Add(ttl),
		}); err != nil {
			return res, fmt.Errorf("seed distribution at %q: %w", d.Location, err)
		}
		res.Distributions++
	}

	log.Info("seed complete", zap.Int("organizations", res.Organizations), zap.Int("distributions", res.Distributions))
	return res, nil
}
