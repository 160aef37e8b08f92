package account

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/frahmantamala/shopfront/internal"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context, offset, limit int) ([]*Account, error)
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	repo RepositoryAPI
}

func NewService(repo RepositoryAPI) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, internal.NewInternalError("failed to load account", err)
	}
	return a, nil
}

// List returns one page of accounts, newest first. base is the request URL used for next/previous links.
func (s *Service) List(ctx context.Context, query ListQuery, base *url.URL) (*AccountPage, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count accounts", err)
	}

	accounts, err := s.repo.List(ctx, query.Offset(), query.PageSize)
	if err != nil {
		return nil, internal.NewInternalError("failed to list accounts", fmt.Errorf("page %d: %w", query.Page, err))
	}

	page := &AccountPage{
		Count:   total,
		Results: make([]AccountResponse, 0, len(accounts)),
	}
	for _, a := range accounts {
		page.Results = append(page.Results, a.ToResponse())
	}

	if base != nil {
		if int64(query.Offset()+len(accounts)) < total {
			page.Next = pageLink(base, query.Page+1, query.PageSize)
		}
		if query.Page > 1 {
			page.Previous = pageLink(base, query.Page-1, query.PageSize)
		}
	}

	return page, nil
}
