// Package query applies allow-listed filtering, searching, ordering and
// pagination to list endpoints.
package query

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"notebook-loans-backend/internal/parse"
)

const (
	ParamSearch   = "search"
	ParamOrdering = "ordering"
	ParamPage     = "page"
	ParamPageSize = "page_size"
)

// ErrInvalidPage is returned for a page that is not a positive integer or
// lies past the last page.
var ErrInvalidPage = errors.New("invalid page")

// Filter maps an exact-match query parameter to a column. Convert, when set,
// turns the raw value into the column's type; a conversion error matches nothing.
type Filter struct {
	Column  string
	Convert func(string) (any, error)
}

// Fields is the per-entity allow-list.
type Fields struct {
	Filters map[string]Filter
	// Search holds SQL predicates with a single placeholder bound to a
	// lowercased LIKE pattern. Build them with Icontains.
	Search []string
	Order  map[string]string
	// Default is the ORDER BY applied after any requested terms.
	Default string
}

// Query is a parsed list request.
type Query struct {
	Filters  map[string]string
	Search   []string
	Ordering []parse.OrderTerm
	Page     Page
}

// Options bounds page sizes.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultOptions mirrors the configuration defaults.
var DefaultOptions = Options{DefaultPageSize: 50, MaxPageSize: 500}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) Limit() int  { return p.Size }
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// lastPage is the number of pages total results fill.
func (p Page) lastPage(total int64) int64 {
	if p.Size <= 0 || total <= 0 {
		return 0
	}
	return (total-1)/int64(p.Size) + 1
}

// Check rejects pages past the end. The first page is always valid.
// It compares page numbers, so Offset is only computed for pages that exist.
func (p Page) Check(total int64) error {
	if p.Number > 1 && int64(p.Number) > p.lastPage(total) {
		return ErrInvalidPage
	}
	return nil
}

// Parse reads a list request from the query string. Only an unusable page
// number is an error; everything else degrades to defaults.
func Parse(v url.Values, opt Options) (Query, error) {
	if opt.DefaultPageSize <= 0 {
		opt = DefaultOptions
	}
	q := Query{
		Filters:  make(map[string]string),
		Search:   parse.SearchTerms(v.Get(ParamSearch)),
		Ordering: parse.Ordering(v.Get(ParamOrdering)),
		Page:     Page{Number: 1, Size: opt.DefaultPageSize},
	}
	for key, vals := range v {
		if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			continue
		}
		switch key {
		case ParamSearch, ParamOrdering, ParamPage, ParamPageSize:
			continue
		}
		q.Filters[key] = vals[0]
	}

	if raw := strings.TrimSpace(v.Get(ParamPage)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, ErrInvalidPage
		}
		q.Page.Number = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamPageSize))); err == nil && n > 0 {
		q.Page.Size = n
	}
	if opt.MaxPageSize > 0 && q.Page.Size > opt.MaxPageSize {
		q.Page.Size = opt.MaxPageSize
	}
	return q, nil
}

// Where applies the filters and the search terms. Unknown parameters are ignored.
func (f Fields) Where(db *gorm.DB, q Query) *gorm.DB {
	for param, raw := range q.Filters {
		flt, ok := f.Filters[param]
		if !ok {
			continue
		}
		var val any = raw
		if flt.Convert != nil {
			v, err := flt.Convert(raw)
			if err != nil {
				db = db.Where("1 = 0")
				continue
			}
			val = v
		}
		db = db.Where(flt.Column+" = ?", val)
	}

	if len(f.Search) == 0 {
		return db
	}
	for _, term := range q.Search {
		pattern := LikePattern(term)
		args := make([]any, len(f.Search))
		for i := range args {
			args[i] = pattern
		}
		db = db.Where("("+strings.Join(f.Search, " OR ")+")", args...)
	}
	return db
}

// OrderBy applies the allowed ordering terms followed by the default.
func (f Fields) OrderBy(db *gorm.DB, q Query) *gorm.DB {
	seen := make(map[string]bool)
	for _, term := range q.Ordering {
		col, ok := f.Order[term.Field]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		if term.Desc {
			db = db.Order(col + " DESC")
		} else {
			db = db.Order(col + " ASC")
		}
	}
	if f.Default != "" {
		db = db.Order(f.Default)
	}
	return db
}

// Paginate applies LIMIT/OFFSET.
func (q Query) Paginate(db *gorm.DB) *gorm.DB {
	return db.Limit(q.Page.Limit()).Offset(q.Page.Offset())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern lowercases term, escapes LIKE wildcards and wraps it in %.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// Icontains builds a case-insensitive containment predicate for col.
func Icontains(col string) string {
	return "LOWER(" + col + `) LIKE ? ESCAPE '\'`
}

// Bool converts the usual true/false spellings.
func Bool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "t", "yes":
		return true, nil
	case "false", "0", "f", "no":
		return false, nil
	}
	return nil, strconv.ErrSyntax
}
