package readiness

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/ports"
)

type ListChecklistInput struct {
	Category string
	Limit    int
	Offset   int
}

// ChecklistListing carries the configured thresholds verbatim so clients can
// display them next to the catalog.
type ChecklistListing struct {
	Items      []domainreadiness.ChecklistItem `json:"items"`
	Total      int64                           `json:"total"`
	Thresholds map[string]float64              `json:"thresholds"`
}

type CreateChecklistItemInput struct {
	Slug              string
	Category          string
	Title             string
	Description       string
	AutoEvaluated     bool
	Weight            any
	DefaultOwnerEmail string
	SuccessCriteria   domainreadiness.SuccessCriteria
}

type UpdateChecklistItemInput struct {
	Slug  string
	Patch domainreadiness.ChecklistPatch
}

type ImportChecklistResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

func (s *Service) ListChecklist(ctx context.Context, input ListChecklistInput) (ChecklistListing, error) {
	if err := s.ready(ctx); err != nil {
		return ChecklistListing{}, err
	}

	page, err := s.checklist.List(ctx, ports.ChecklistFilter{
		Category: strings.TrimSpace(input.Category),
	}, normalizePage(input.Limit, input.Offset))
	if err != nil {
		return ChecklistListing{}, errs.Wrap(err, "list checklist items")
	}
	return ChecklistListing{
		Items:      page.Items,
		Total:      page.Total,
		Thresholds: s.Config().Thresholds,
	}, nil
}

// GetChecklistItem returns nil when the slug does not exist.
func (s *Service) GetChecklistItem(ctx context.Context, slug string) (*domainreadiness.ChecklistItem, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	item, err := s.checklist.FindBySlug(ctx, domainreadiness.NormalizeSlug(slug))
	if err != nil {
		if errors.Is(err, ports.ErrChecklistItemNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "find checklist item")
	}
	return &item, nil
}

// CreateChecklistItem derives the slug from the title when none is given.
func (s *Service) CreateChecklistItem(ctx context.Context, input CreateChecklistItemInput) (domainreadiness.ChecklistItem, error) {
	if err := s.ready(ctx); err != nil {
		return domainreadiness.ChecklistItem{}, err
	}

	item, err := newChecklistItem(input)
	if err != nil {
		return domainreadiness.ChecklistItem{}, err
	}

	created, err := s.checklist.Create(ctx, item)
	if err != nil {
		return domainreadiness.ChecklistItem{}, err
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.readiness.checklist")),
		"checklist item created",
		slog.String("slug", created.Slug),
		slog.String("category", created.Category),
		slog.Int("weight", created.Weight),
	)
	return created, nil
}

// UpdateChecklistItem merges the patch onto the stored item and returns nil
// when the slug does not exist. Runs already scheduled keep their snapshot.
func (s *Service) UpdateChecklistItem(ctx context.Context, input UpdateChecklistItemInput) (*domainreadiness.ChecklistItem, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	slug := domainreadiness.NormalizeSlug(input.Slug)
	if slug == "" {
		return nil, domainreadiness.ErrSlugRequired
	}
	if input.Patch.Title != nil && strings.TrimSpace(*input.Patch.Title) == "" {
		return nil, domainreadiness.ErrTitleRequired
	}

	updated, err := s.checklist.UpdateBySlug(ctx, slug, input.Patch.Normalized())
	if err != nil {
		if errors.Is(err, ports.ErrChecklistItemNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "update checklist item")
	}
	return &updated, nil
}

// ImportChecklist creates missing items and merges the rest by slug, all in
// one transaction.
func (s *Service) ImportChecklist(ctx context.Context, items []CreateChecklistItemInput) (ImportChecklistResult, error) {
	if err := s.ready(ctx); err != nil {
		return ImportChecklistResult{}, err
	}

	prepared := make([]domainreadiness.ChecklistItem, 0, len(items))
	for i, input := range items {
		item, err := newChecklistItem(input)
		if err != nil {
			return ImportChecklistResult{}, errs.Wrapf(err, "checklist item #%d", i+1)
		}
		prepared = append(prepared, item)
	}

	var result ImportChecklistResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, item := range prepared {
			_, err := s.checklist.FindBySlug(txCtx, item.Slug)
			switch {
			case errors.Is(err, ports.ErrChecklistItemNotFound):
				if _, err := s.checklist.Create(txCtx, item); err != nil {
					return err
				}
				result.Created++
			case err != nil:
				return errs.Wrapf(err, "find checklist item %q", item.Slug)
			default:
				if _, err := s.checklist.UpdateBySlug(txCtx, item.Slug, replacePatch(item)); err != nil {
					return errs.Wrapf(err, "update checklist item %q", item.Slug)
				}
				result.Updated++
			}
		}
		return nil
	}); err != nil {
		return ImportChecklistResult{}, err
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.readiness.checklist")),
		"checklist imported",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
	)
	return result, nil
}

func newChecklistItem(input CreateChecklistItemInput) (domainreadiness.ChecklistItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domainreadiness.ChecklistItem{}, domainreadiness.ErrTitleRequired
	}
	slug := domainreadiness.NormalizeSlug(input.Slug)
	if slug == "" {
		slug = domainreadiness.NormalizeSlug(title)
	}
	if slug == "" {
		return domainreadiness.ChecklistItem{}, domainreadiness.ErrSlugRequired
	}
	return domainreadiness.ChecklistItem{
		Slug:              slug,
		Category:          domainreadiness.NormalizeCategory(input.Category),
		Title:             title,
		Description:       strings.TrimSpace(input.Description),
		AutoEvaluated:     input.AutoEvaluated,
		Weight:            domainreadiness.ParseWeight(input.Weight),
		DefaultOwnerEmail: domainreadiness.NormalizeEmail(input.DefaultOwnerEmail),
		SuccessCriteria:   input.SuccessCriteria.Clone(),
	}, nil
}

func replacePatch(item domainreadiness.ChecklistItem) domainreadiness.ChecklistPatch {
	criteria := item.SuccessCriteria.Clone()
	return domainreadiness.ChecklistPatch{
		Category:          &item.Category,
		Title:             &item.Title,
		Description:       &item.Description,
		AutoEvaluated:     &item.AutoEvaluated,
		Weight:            &item.Weight,
		DefaultOwnerEmail: &item.DefaultOwnerEmail,
		SuccessCriteria:   &criteria,
	}
}
