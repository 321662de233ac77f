// Package query translates raw HTTP query-string parameters into a filtered,
// sorted, field-limited and paginated GORM query.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Defaults applied when page/limit are absent or unusable.
const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// Control keys stripped from the parameter set before filtering.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// hiddenField is always left out of projections unless requested explicitly.
const hiddenField = "password"

var (
	// identPattern guards every column name taken from the query string so
	// raw keys can never reach the SQL text unchecked.
	identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	// opPattern matches bracket-style comparison keys such as price[gte].
	opPattern = regexp.MustCompile(`^([a-z][a-z0-9_]*)\[(gte|gt|lte|lt)\]$`)
)

var operators = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// Features is a fluent builder over a base GORM query. Each transformation
// mutates and returns the receiver so calls can be chained; execution is
// deferred until the caller runs the query returned by Query.
type Features struct {
	db     *gorm.DB
	params map[string]string
}

// New creates a Features builder from a base query and the raw query-string
// parameter map.
func New(db *gorm.DB, params map[string]string) *Features {
	return &Features{db: db, params: params}
}

// Filter turns the non-reserved parameters into WHERE conditions. Plain keys
// become equality checks; bracket-suffixed keys (price[gte]=100) become the
// corresponding comparison. Keys that are neither valid identifiers nor
// recognized operator forms are dropped.
func (f *Features) Filter() *Features {
	for key, value := range f.params {
		if reserved[key] {
			continue
		}
		if m := opPattern.FindStringSubmatch(key); m != nil {
			f.db = f.db.Where(fmt.Sprintf("%s %s ?", m[1], operators[m[2]]), value)
			continue
		}
		if identPattern.MatchString(key) {
			f.db = f.db.Where(fmt.Sprintf("%s = ?", key), value)
		}
	}
	return f
}

// Sort applies a comma-separated multi-field sort; a leading '-' reverses
// that field. Without a sort parameter the newest records come first.
func (f *Features) Sort() *Features {
	raw, ok := f.params["sort"]
	if !ok || raw == "" {
		f.db = f.db.Order("created_at DESC")
		return f
	}

	var clauses []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			dir = "DESC"
		}
		if identPattern.MatchString(field) {
			clauses = append(clauses, field+" "+dir)
		}
	}
	if len(clauses) > 0 {
		f.db = f.db.Order(strings.Join(clauses, ", "))
	}
	return f
}

// LimitFields applies a comma-separated projection. The hidden password
// column is excluded unless the caller names it explicitly. Without a fields
// parameter every column is returned.
func (f *Features) LimitFields() *Features {
	raw, ok := f.params["fields"]
	if !ok || raw == "" {
		f.db = f.db.Omit(hiddenField)
		return f
	}

	var cols []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if !identPattern.MatchString(field) {
			continue
		}
		cols = append(cols, field)
	}
	if len(cols) > 0 {
		f.db = f.db.Select(cols)
	}
	return f
}

// Paginate computes the offset from page and limit (defaults: page 1,
// limit 100). A page beyond the available records simply yields an empty
// result set.
func (f *Features) Paginate() *Features {
	page := intParam(f.params, "page", DefaultPage)
	limit := intParam(f.params, "limit", DefaultLimit)
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	f.db = f.db.Offset((page - 1) * limit).Limit(limit)
	return f
}

// Query returns the fully-built GORM query.
func (f *Features) Query() *gorm.DB {
	return f.db
}

func intParam(params map[string]string, key string, def int) int {
	raw, ok := params[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
