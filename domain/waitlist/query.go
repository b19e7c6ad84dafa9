package waitlist

import (
	"strconv"
	"strings"

	"github.com/akeren/trustlink-waitlist/pkg/constants"
	"gorm.io/gorm/clause"
)

// ListFilter holds the optional admin list criteria. A nil field means the
// criterion was not supplied.
type ListFilter struct {
	ActorType *string
	City      *string
	Notified  *bool
}

type Page struct {
	Limit  int
	Offset int
}

// ListQuery is the parsed admin list request.
type ListQuery struct {
	Filter ListFilter
	Page   Page
}

// QueryLookup matches gin.Context.GetQuery.
type QueryLookup func(key string) (string, bool)

// ParseListQuery reads filters and pagination from query parameters. Empty
// actor_type and city are ignored; any present notified value other than
// "true" filters on false. limit falls back to 100 and offset to 0 when
// missing, malformed or negative. There is no upper bound on limit.
func ParseListQuery(lookup QueryLookup) ListQuery {
	var q ListQuery

	if v, ok := lookup("actor_type"); ok && v != "" {
		q.Filter.ActorType = &v
	}
	if v, ok := lookup("city"); ok && v != "" {
		q.Filter.City = &v
	}
	if v, ok := lookup("notified"); ok {
		notified := v == "true"
		q.Filter.Notified = &notified
	}

	q.Page.Limit = parseNonNegative(lookup, "limit", constants.DefaultListLimit)
	q.Page.Offset = parseNonNegative(lookup, "offset", constants.DefaultListOffset)

	return q
}

func parseNonNegative(lookup QueryLookup, key string, fallback int) int {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// Predicates returns one bound clause per supplied criterion. The caller ANDs
// them; values never reach the SQL text.
func (f ListFilter) Predicates() []clause.Expression {
	exprs := make([]clause.Expression, 0, 3)

	if f.ActorType != nil {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: "actor_type"}, Value: *f.ActorType})
	}
	if f.City != nil {
		// LOWER/LIKE instead of ILIKE so the same clause runs on sqlite.
		exprs = append(exprs, clause.Expr{
			SQL:  "LOWER(city) LIKE ?",
			Vars: []any{"%" + strings.ToLower(*f.City) + "%"},
		})
	}
	if f.Notified != nil {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: "notified"}, Value: *f.Notified})
	}

	return exprs
}

// newestFirst orders by creation time with id as the tie-break so pages stay
// stable when timestamps collide.
var newestFirst = clause.OrderBy{
	Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}, Desc: true},
		{Column: clause.Column{Name: "id"}, Desc: true},
	},
}
