// Package search answers grid requests: entity models, paged searches, counts,
// workbook exports and saved layouts.
package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpattn/koreng/internal/domain"
	"github.com/rpattn/koreng/internal/export"
	"github.com/rpattn/koreng/internal/query"
	"github.com/rpattn/koreng/internal/repository"
	"github.com/rpattn/koreng/internal/schema"
)

const (
	defaultExportPageSize = 500
	defaultExportLimit    = 10000
)

// Service orchestrates the registry, the statement composer and the repositories.
type Service struct {
	registry *schema.Registry
	composer *query.Composer
	rows     repository.SearchRepository
	layouts  repository.LayoutRepository
	logger   *slog.Logger

	maxPageLength  int
	exportPageSize int
	exportLimit    int
}

// Option customizes a Service.
type Option func(*Service)

// WithMaxPageLength caps the page length of a single search.
func WithMaxPageLength(length int) Option {
	return func(s *Service) {
		if length > 0 {
			s.maxPageLength = length
		}
	}
}

// WithExportLimit caps the number of rows written to one workbook.
func WithExportLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.exportLimit = limit
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires a search service.
func NewService(
	registry *schema.Registry,
	composer *query.Composer,
	rows repository.SearchRepository,
	layouts repository.LayoutRepository,
	opts ...Option,
) *Service {
	s := &Service{
		registry:       registry,
		composer:       composer,
		rows:           rows,
		layouts:        layouts,
		logger:         slog.Default(),
		exportPageSize: defaultExportPageSize,
		exportLimit:    defaultExportLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxPageLength > 0 && s.exportPageSize > s.maxPageLength {
		s.exportPageSize = s.maxPageLength
	}
	return s
}

// Model returns the schema map of an entity.
func (s *Service) Model(_ context.Context, entityName string) (map[string]string, error) {
	return s.registry.Model(entityName)
}

// Search runs one page of a search and returns the projected rows.
func (s *Service) Search(ctx context.Context, entityName string, req domain.SearchRequest) ([]map[string]any, error) {
	desc, err := s.registry.Describe(entityName)
	if err != nil {
		return nil, err
	}
	req = req.Normalize(s.maxPageLength)

	stmt, err := s.composer.Compose(ctx, desc, req)
	if err != nil {
		return nil, err
	}

	rows, err := s.rows.Find(ctx, stmt.Select)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", desc.Name, err)
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("entity", desc.Name),
		slog.Int("start", req.Start),
		slog.Int("length", req.Length),
		slog.Int("rows", len(rows)),
	)
	return schema.Project(desc, rows), nil
}

// Count returns the number of distinct entities matching the request filters.
// Pagination and sort are ignored, but an invalid sort path still fails.
func (s *Service) Count(ctx context.Context, entityName string, req domain.SearchRequest) (int64, error) {
	desc, err := s.registry.Describe(entityName)
	if err != nil {
		return 0, err
	}

	stmt, err := s.composer.Compose(ctx, desc, req.Normalize(s.maxPageLength))
	if err != nil {
		return 0, err
	}

	total, err := s.rows.Count(ctx, stmt.Count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", desc.Name, err)
	}
	return total, nil
}

// Export writes every row matching the request, starting at req.Start, as an
// xlsx workbook to w. Rows are fetched in pages and capped by the export limit.
func (s *Service) Export(ctx context.Context, entityName string, req domain.SearchRequest, w io.Writer) error {
	desc, err := s.registry.Describe(entityName)
	if err != nil {
		return err
	}
	req = req.Normalize(0)

	workbook, err := export.NewWorkbook(desc.Name, schema.Columns(desc))
	if err != nil {
		return err
	}
	defer func() { _ = workbook.Close() }()

	exported := 0
	for exported < s.exportLimit {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := req
		page.Start = req.Start + exported
		page.Length = min(s.exportPageSize, s.exportLimit-exported)

		stmt, err := s.composer.Compose(ctx, desc, page)
		if err != nil {
			return err
		}
		rows, err := s.rows.Find(ctx, stmt.Select)
		if err != nil {
			return fmt.Errorf("export %s: %w", desc.Name, err)
		}
		if err := workbook.Append(schema.Project(desc, rows)); err != nil {
			return err
		}

		exported += len(rows)
		if len(rows) < page.Length {
			break
		}
	}

	s.logger.InfoContext(ctx, "export written",
		slog.String("entity", desc.Name),
		slog.Int("rows", workbook.Rows()),
	)

	if _, err := workbook.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Layout loads the saved grid layout of an entity.
func (s *Service) Layout(ctx context.Context, entityName string) (domain.GridLayout, error) {
	desc, err := s.registry.Describe(entityName)
	if err != nil {
		return domain.GridLayout{}, err
	}
	return s.layouts.Get(ctx, desc.Name)
}

// SaveLayout stores the grid layout of an entity, replacing any previous one.
func (s *Service) SaveLayout(ctx context.Context, entityName string, layout domain.GridLayout) (domain.GridLayout, error) {
	desc, err := s.registry.Describe(entityName)
	if err != nil {
		return domain.GridLayout{}, err
	}
	layout.EntityName = desc.Name
	return s.layouts.Save(ctx, layout)
}
