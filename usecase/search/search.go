package search

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/pkg/geo"
	"github.com/fastygo/volunteer/repository"
)

// MaxRadiusKm bounds nearby queries to half the Earth's circumference.
const MaxRadiusKm = math.Pi * geo.EarthRadiusKm

// UseCase answers read-only task queries for volunteers.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{tasks: tasks, logger: logger}
}

// Browse lists Active tasks newest-first.
func (uc *UseCase) Browse(ctx context.Context, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	result, err := uc.tasks.ListActive(ctx, page)
	return result, domain.Internal(err)
}

// TextSearch matches query case-insensitively against title, description and tags of Active tasks.
func (uc *UseCase) TextSearch(ctx context.Context, query string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return uc.Browse(ctx, page)
	}
	if err := page.Validate(); err != nil {
		return repository.Page[domain.VolunteerTask]{}, err
	}
	result, err := uc.tasks.Search(ctx, repository.TaskFilter{
		Statuses:   []domain.TaskStatus{domain.TaskStatusActive},
		Query:      query,
		Pagination: page,
	})
	return result, domain.Internal(err)
}

func (uc *UseCase) Featured(ctx context.Context) ([]domain.VolunteerTask, error) {
	tasks, err := uc.tasks.Featured(ctx)
	return tasks, domain.Internal(err)
}

func (uc *UseCase) ByCategory(ctx context.Context, raw string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	category, ok := domain.ParseCategory(raw)
	if !ok {
		return repository.Page[domain.VolunteerTask]{}, domain.NewError(domain.ErrCodeValidationFailed, "unknown category")
	}
	result, err := uc.tasks.ListByCategory(ctx, category, page)
	return result, domain.Internal(err)
}

func (uc *UseCase) ByOrganization(ctx context.Context, organizationID string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	result, err := uc.tasks.ListByOrganization(ctx, organizationID, page)
	return result, domain.Internal(err)
}

func (uc *UseCase) ByCreator(ctx context.Context, userID string, page repository.Pagination) (repository.Page[domain.VolunteerTask], error) {
	result, err := uc.tasks.ListByCreator(ctx, userID, page)
	return result, domain.Internal(err)
}

// Nearby returns Active tasks within radiusKm of (lat, lng), newest-first.
func (uc *UseCase) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.VolunteerTask, error) {
	switch {
	case math.IsNaN(lat) || lat < -90 || lat > 90:
		return nil, domain.NewError(domain.ErrCodeValidationFailed, "latitude must be within [-90, 90]")
	case math.IsNaN(lng) || lng < -180 || lng > 180:
		return nil, domain.NewError(domain.ErrCodeValidationFailed, "longitude must be within [-180, 180]")
	case math.IsNaN(radiusKm) || radiusKm < 0 || radiusKm > MaxRadiusKm:
		return nil, domain.NewError(domain.ErrCodeValidationFailed, "radius is out of range")
	}

	active, err := uc.tasks.Search(ctx, repository.TaskFilter{
		Statuses: []domain.TaskStatus{domain.TaskStatusActive},
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	found := geo.WithinRadius(active.Items, geo.Point{Lat: lat, Lng: lng}, radiusKm)
	uc.logger.Debug("nearby search",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.Float64("radius_km", radiusKm),
		zap.Int("candidates", len(active.Items)),
		zap.Int("matches", len(found)))
	return found, nil
}
