// Package relations provides the relationship field family: fields that
// link a resource to related records through foreign keys, pivot tables,
// or polymorphic type columns. To-one fields resolve a compact summary
// for display; to-many fields resolve a count and defer listing to a
// paginated query.
package relations

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/steward-admin/steward/config"
	"github.com/steward-admin/steward/resource"
)

// Pagination bounds applied by Params.normalize. UsePagination replaces
// them with host configuration.
var (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// UsePagination installs the host's pagination bounds. Values the config
// layer would reject are ignored so the bounds stay consistent.
func UsePagination(cfg config.PaginationConfig) {
	if cfg.PerPage > 0 {
		DefaultPerPage = cfg.PerPage
	}
	if cfg.MaxPerPage >= DefaultPerPage {
		MaxPerPage = cfg.MaxPerPage
	}
}

// Summary is the to-one serialization payload. Resource is nil when the
// related record's type could not be matched against the registry.
type Summary struct {
	ID       any    `json:"id"`
	Title    string `json:"title"`
	Resource any    `json:"resource"`
	Exists   bool   `json:"exists"`
}

// orderColumn admits plain or table-qualified column identifiers. Sort
// input comes from the request and cannot be bound as a placeholder, so
// anything else is dropped rather than spliced into the query.
var orderColumn = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Params carries the listing controls taken from the request
type Params struct {
	Page    int
	PerPage int
	Search  string
	OrderBy string
	Desc    bool
}

// normalize clamps paging inputs into their allowed ranges
func (p Params) normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// PageMeta describes one page of a paginated listing
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Page is the paginated listing envelope
type Page struct {
	Data []resource.Record `json:"data"`
	Meta PageMeta          `json:"meta"`
}

// listing runs a paginated query over "FROM ..." SQL with an optional
// search filter, returning the page envelope. The from clause carries
// its own WHERE conditions; search columns are appended as a grouped
// LIKE filter.
func listing(ctx context.Context, q resource.Querier, selectCols, from string, args []any, searchCols []string, params Params) (*Page, error) {
	params = params.normalize()

	where := from
	if params.Search != "" && len(searchCols) > 0 {
		likes := make([]string, len(searchCols))
		pattern := "%" + params.Search + "%"
		for i, col := range searchCols {
			likes[i] = col + " LIKE ?"
			args = append(args, pattern)
		}
		connector := " WHERE "
		if strings.Contains(from, "WHERE") {
			connector = " AND "
		}
		where += connector + "(" + strings.Join(likes, " OR ") + ")"
	}

	var total int
	countQuery := "SELECT COUNT(*) " + where
	if err := q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count related records: %w", err)
	}

	lastPage := (total + params.PerPage - 1) / params.PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	dataQuery := "SELECT " + selectCols + " " + where
	if orderColumn.MatchString(params.OrderBy) {
		direction := "ASC"
		if params.Desc {
			direction = "DESC"
		}
		dataQuery += " ORDER BY " + params.OrderBy + " " + direction
	}
	dataQuery += " LIMIT ? OFFSET ?"
	args = append(args, params.PerPage, (params.Page-1)*params.PerPage)

	rows, err := q.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query related records: %w", err)
	}
	defer rows.Close()

	data, err := resource.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []resource.Record{}
	}

	return &Page{
		Data: data,
		Meta: PageMeta{
			CurrentPage: params.Page,
			LastPage:    lastPage,
			PerPage:     params.PerPage,
			Total:       total,
		},
	}, nil
}

// summarize builds the to-one payload for a preloaded related record,
// degrading the title to "#<id>" when the record only carries an id.
func summarize(res resource.Resource, rec resource.Record) Summary {
	if rec == nil {
		return Summary{Exists: false}
	}
	s := Summary{ID: rec["id"], Exists: true}
	if res != nil {
		s.Title = resource.Title(res, rec)
		s.Resource = res.Name()
	} else {
		s.Title = fmt.Sprintf("#%v", rec["id"])
	}
	return s
}

// placeholder builds the to-one payload when only a foreign key value is
// available, without loading the related record.
func placeholder(res resource.Resource, id any) Summary {
	if id == nil {
		return Summary{Exists: false}
	}
	s := Summary{ID: id, Title: fmt.Sprintf("#%v", id), Exists: true}
	if res != nil {
		s.Resource = res.Name()
	}
	return s
}

// nestedRecord normalizes a preloaded relationship value to a Record
func nestedRecord(value any) (resource.Record, bool) {
	switch v := value.(type) {
	case resource.Record:
		return v, true
	case nil:
		return nil, false
	default:
		return nil, false
	}
}

// nestedList normalizes a preloaded to-many value to a record slice
func nestedList(value any) ([]resource.Record, bool) {
	switch v := value.(type) {
	case []resource.Record:
		return v, true
	case []any:
		out := make([]resource.Record, 0, len(v))
		for _, item := range v {
			if rec, ok := nestedRecord(item); ok {
				out = append(out, rec)
			}
		}
		return out, true
	case nil:
		return nil, false
	default:
		return nil, false
	}
}
