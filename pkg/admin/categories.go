package admin

import (
	"context"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/m-mizutani/goerr/v2"
)

// SaveCategory creates a category, or updates it when id is non-zero.
func (s *Service) SaveCategory(ctx context.Context, id int64, input api.CategoryInput) (taxonomy.RemoteCategory, error) {
	cat, err := s.client.SaveCategory(ctx, id, input)
	if err != nil {
		return taxonomy.RemoteCategory{}, goerr.Wrap(err, "failed to save category", goerr.V(taxonomy.CategoryKey, input.Name))
	}
	s.refresh(ctx)
	return cat, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.client.DeleteCategory(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete category", goerr.V(taxonomy.CategoryKey, id))
	}
	s.refresh(ctx)
	return nil
}

// SaveSubCategory creates a sub-category, or updates it when id is non-zero.
func (s *Service) SaveSubCategory(ctx context.Context, id int64, input api.SubCategoryInput) (taxonomy.RemoteSubCategory, error) {
	sub, err := s.client.SaveSubCategory(ctx, id, input)
	if err != nil {
		return taxonomy.RemoteSubCategory{}, goerr.Wrap(err, "failed to save sub-category", goerr.V(taxonomy.SubCategoryKey, input.Name))
	}
	s.refresh(ctx)
	return sub, nil
}

// DeleteSubCategory removes a sub-category.
func (s *Service) DeleteSubCategory(ctx context.Context, id int64) error {
	if err := s.client.DeleteSubCategory(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete sub-category", goerr.V(taxonomy.SubCategoryKey, id))
	}
	s.refresh(ctx)
	return nil
}

func (s *Service) refresh(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.store.Load(ctx)
}
