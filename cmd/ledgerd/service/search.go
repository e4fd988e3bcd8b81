package service

import (
	"context"
	"fmt"

	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/models"
)

// SearchService serves artifact search and listing
type SearchService struct {
	store  repository.Store
	filter *FilterEvaluator
	log    *logger.Logger
}

// NewSearchService creates a new search service
func NewSearchService(store repository.Store, filter *FilterEvaluator, log *logger.Logger) *SearchService {
	return &SearchService{
		store:  store,
		filter: filter,
		log:    log,
	}
}

// Search applies the ANDed simple filters as an indexed store query, then
// narrows by the optional CEL expression
func (s *SearchService) Search(ctx context.Context, q repository.SearchQuery, expr string) ([]*models.Artifact, error) {
	artifacts, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search artifacts: %w", err)
	}

	if expr == "" {
		if artifacts == nil {
			artifacts = []*models.Artifact{}
		}
		return artifacts, nil
	}

	matched := make([]*models.Artifact, 0, len(artifacts))
	for _, artifact := range artifacts {
		ok, err := s.filter.Matches(expr, artifact)
		if err != nil {
			return nil, fmt.Errorf("apply filter expression: %w", err)
		}
		if ok {
			matched = append(matched, artifact)
		}
	}

	return matched, nil
}

// Get returns one artifact by id
func (s *SearchService) Get(ctx context.Context, id string) (*models.Artifact, error) {
	artifact, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	return artifact, nil
}
