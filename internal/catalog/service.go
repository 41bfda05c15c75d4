package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rootzsu/orderbot/core/logger"
	"github.com/rootzsu/orderbot/internal/domain"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceInactive = errors.New("service is not active")
	ErrDuplicateName   = errors.New("service with this name already exists")
	ErrBadServiceInput = errors.New("malformed service input")
)

// Service exposes catalog reads to the conversation engine and catalog
// management to operators.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// ActiveServices lists services currently offered.
func (s *Service) ActiveServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListActive(ctx)
}

// AllServices lists every service including deactivated ones.
func (s *Service) AllServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.List(ctx)
}

// ActiveService returns the service only when it exists and is active.
// The activity check is done fresh on every call so a service deactivated
// mid-conversation is rejected at selection time.
func (s *Service) ActiveService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, ErrServiceInactive
	}
	return svc, nil
}

// AddService validates and stores a new catalog entry.
func (s *Service) AddService(ctx context.Context, svc *domain.Service) (int64, error) {
	if strings.TrimSpace(svc.Name) == "" {
		return 0, ErrBadServiceInput
	}
	id, err := s.repo.Create(ctx, svc)
	if err != nil {
		return 0, err
	}
	logger.SVCCatalog.Info("service added",
		slog.String("event", "catalog.add"),
		slog.Int64("service_id", id),
		slog.String("name", svc.Name),
	)
	return id, nil
}

// RemoveService deletes a catalog entry by id.
func (s *Service) RemoveService(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.SVCCatalog.Info("service removed",
		slog.String("event", "catalog.remove"),
		slog.Int64("service_id", id),
	)
	return nil
}

// SetActive flips the availability flag of a service.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	logger.SVCCatalog.Info("service availability changed",
		slog.String("event", "catalog.set_active"),
		slog.Int64("service_id", id),
		slog.Bool("active", active),
	)
	return nil
}

// ParseServiceInput parses the multi-line operator input used to add a
// service: name, description, then one price per supported currency. A dash
// leaves the price unset, making that currency unavailable for the service.
func ParseServiceInput(input string) (*domain.Service, error) {
	lines := strings.Split(strings.TrimSpace(input), "\n")
	if len(lines) != 7 {
		return nil, ErrBadServiceInput
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	svc := &domain.Service{
		Name:        lines[0],
		Description: lines[1],
		Active:      true,
	}
	if svc.Name == "" {
		return nil, ErrBadServiceInput
	}

	var err error
	if svc.PriceUSD, err = parseOptionalPrice(lines[2]); err != nil {
		return nil, err
	}
	if svc.PriceBTC, err = parseOptionalPrice(lines[3]); err != nil {
		return nil, err
	}
	if svc.PriceStars, err = parseOptionalStars(lines[4]); err != nil {
		return nil, err
	}
	if svc.PriceEUR, err = parseOptionalPrice(lines[5]); err != nil {
		return nil, err
	}
	if svc.PriceUAH, err = parseOptionalPrice(lines[6]); err != nil {
		return nil, err
	}
	return svc, nil
}

func parseOptionalPrice(raw string) (*float64, error) {
	if raw == "" || raw == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, ErrBadServiceInput
	}
	return &v, nil
}

func parseOptionalStars(raw string) (*int64, error) {
	if raw == "" || raw == "-" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, ErrBadServiceInput
	}
	return &v, nil
}
