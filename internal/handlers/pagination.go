package handlers

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/config"
	"gorm.io/gorm"
)

type PageInput struct {
	Page     int `query:"page" minimum:"1" required:"false" doc:"Page number (1-based)"`
	PageSize int `query:"page_size" minimum:"1" required:"false" doc:"Items per page"`
}

// Page is the list envelope: total count plus one page of results.
type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

// paginate counts the filtered query, then fetches one page with the given
// ordering applied. Ordering is applied after the count so the count query
// stays a plain aggregate.
func paginate[T any](query *gorm.DB, cfg *config.Config, in PageInput, order string) (*Page[T], error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = cfg.DefaultPageSize
	}
	if size > cfg.MaxPageSize {
		size = cfg.MaxPageSize
	}

	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to count results")
	}

	results := []T{}
	err := query.Session(&gorm.Session{}).
		Order(order).
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to fetch results")
	}

	return &Page[T]{Count: count, Page: page, PageSize: size, Results: results}, nil
}

// ordering resolves an API ordering parameter (optionally "-"-prefixed for
// descending) against a whitelist of field -> column mappings. Unknown
// fields fall back to the default, mirroring how unknown filter values are
// ignored rather than rejected.
func ordering(param, fallback string, allowed map[string]string) string {
	field := strings.TrimPrefix(param, "-")
	col, ok := allowed[field]
	if !ok {
		return fallback
	}
	if strings.HasPrefix(param, "-") {
		return col + " DESC"
	}
	return col
}

// likeContains, likePrefix, and likeSuffix build case-insensitive LIKE
// patterns; the matching column must be wrapped in LOWER().
func likeContains(value string) string {
	return "%" + strings.ToLower(value) + "%"
}

func likePrefix(value string) string {
	return strings.ToLower(value) + "%"
}

func likeSuffix(value string) string {
	return "%" + strings.ToLower(value)
}
