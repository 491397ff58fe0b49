package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"dms/internal/model"
)

// QueryParams is the filter set for Query. All predicates are optional and
// combined with AND semantics. Title is matched as a case-insensitive
// substring against title OR description; Categories and Tags are
// comma-separated and match when ANY label intersects the document's set;
// StartDate/EndDate bound UploadedOn inclusively; OwnerID matches exactly.
type QueryParams struct {
	Title      string
	StartDate  *time.Time
	EndDate    *time.Time
	Categories string
	Tags       string
	OwnerID    string
	Page       int
	PageSize   int
}

// DocumentItem is one list-view row: document metadata joined with the
// batch-loaded latest-version fields.
type DocumentItem struct {
	model.Document
	VersionCount int    `json:"version_count"`
	Size         int64  `json:"size"`
	Path         string `json:"path"`
}

// DocumentPage is the paginated projection returned by Query.
type DocumentPage struct {
	Items      []DocumentItem `json:"data"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Query evaluates the filters over the full corpus, sorts by uploadedOn
// descending (stable, so ties keep insertion order), selects the page, then
// batch-loads versions for exactly the page's document ids.
func (s *documentService) Query(ctx context.Context, params QueryParams) (*DocumentPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	all, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := filterDocuments(all, params)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].UploadedOn.After(filtered[j].UploadedOn)
	})

	totalCount := len(filtered)
	totalPages := (totalCount + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > totalCount {
		start = totalCount
	}
	end := start + pageSize
	if end > totalCount {
		end = totalCount
	}
	paged := filtered[start:end]

	ids := make([]string, len(paged))
	for i, d := range paged {
		ids[i] = d.ID
	}
	versionsByDoc, err := s.versions.ListByDocumentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]DocumentItem, 0, len(paged))
	for _, d := range paged {
		item := DocumentItem{Document: d}
		if versions := versionsByDoc[d.ID]; len(versions) > 0 {
			item.VersionCount = len(versions)
			item.Size = versions[0].Size
			item.Path = versions[0].StoragePath
		}
		items = append(items, item)
	}

	return &DocumentPage{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func filterDocuments(docs []model.Document, params QueryParams) []model.Document {
	categories := splitLabels(params.Categories)
	tags := splitLabels(params.Tags)

	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if params.Title != "" && !matchesText(d, params.Title) {
			continue
		}
		if params.StartDate != nil && d.UploadedOn.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && d.UploadedOn.After(*params.EndDate) {
			continue
		}
		if len(categories) > 0 && !intersects(d.Categories, categories) {
			continue
		}
		if len(tags) > 0 && !intersects(d.Tags, tags) {
			continue
		}
		if params.OwnerID != "" && d.OwnerID != params.OwnerID {
			continue
		}
		out = append(out, d)
	}
	return out
}

// matchesText reports whether the needle occurs in the document's title or
// description, case-insensitively.
func matchesText(d model.Document, needle string) bool {
	needle = strings.ToLower(needle)
	return strings.Contains(strings.ToLower(d.Title), needle) ||
		strings.Contains(strings.ToLower(d.Description), needle)
}

// splitLabels parses a comma-separated filter value, dropping empty entries.
func splitLabels(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intersects(labels, filter []string) bool {
	for _, l := range labels {
		for _, f := range filter {
			if l == f {
				return true
			}
		}
	}
	return false
}
