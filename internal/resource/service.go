package resource

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, spec Spec) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, patch Patch) (*Resource, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, spec Spec) (*Resource, error) {
	res, err := spec.Build()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidIdentifier
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, patch Patch) (*Resource, error) {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(res); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}
