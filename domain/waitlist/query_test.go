package waitlist

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func lookupFrom(raw string) QueryLookup {
	values, _ := url.ParseQuery(raw)
	return func(key string) (string, bool) {
		v, ok := values[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}
}

func TestParseListQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q := ParseListQuery(lookupFrom(""))

		assert.Equal(t, ListFilter{}, q.Filter)
		assert.Equal(t, Page{Limit: 100, Offset: 0}, q.Page)
	})

	t.Run("all criteria", func(t *testing.T) {
		q := ParseListQuery(lookupFrom("actor_type=rider&city=Lag&notified=true&limit=2&offset=4"))

		require.NotNil(t, q.Filter.ActorType)
		require.NotNil(t, q.Filter.City)
		require.NotNil(t, q.Filter.Notified)
		assert.Equal(t, "rider", *q.Filter.ActorType)
		assert.Equal(t, "Lag", *q.Filter.City)
		assert.True(t, *q.Filter.Notified)
		assert.Equal(t, Page{Limit: 2, Offset: 4}, q.Page)
	})

	t.Run("empty actor_type and city are ignored", func(t *testing.T) {
		q := ParseListQuery(lookupFrom("actor_type=&city="))

		assert.Nil(t, q.Filter.ActorType)
		assert.Nil(t, q.Filter.City)
	})

	t.Run("present notified other than true filters on false", func(t *testing.T) {
		for _, raw := range []string{"notified=false", "notified=", "notified=1", "notified=TRUE"} {
			q := ParseListQuery(lookupFrom(raw))
			require.NotNil(t, q.Filter.Notified, raw)
			assert.False(t, *q.Filter.Notified, raw)
		}
	})

	t.Run("malformed pagination falls back", func(t *testing.T) {
		q := ParseListQuery(lookupFrom("limit=abc&offset=-3"))
		assert.Equal(t, Page{Limit: 100, Offset: 0}, q.Page)

		q = ParseListQuery(lookupFrom("limit=-1&offset=xyz"))
		assert.Equal(t, Page{Limit: 100, Offset: 0}, q.Page)
	})

	t.Run("no upper bound on limit", func(t *testing.T) {
		q := ParseListQuery(lookupFrom("limit=100000"))
		assert.Equal(t, 100000, q.Page.Limit)
	})

	t.Run("zero limit is honoured", func(t *testing.T) {
		q := ParseListQuery(lookupFrom("limit=0"))
		assert.Equal(t, 0, q.Page.Limit)
	})
}

func TestListFilter_Predicates(t *testing.T) {
	assert.Empty(t, ListFilter{}.Predicates())

	actor, city, notified := "vendor", "LaGoS", false
	exprs := ListFilter{ActorType: &actor, City: &city, Notified: &notified}.Predicates()
	require.Len(t, exprs, 3)

	assert.Equal(t, clause.Eq{Column: clause.Column{Name: "actor_type"}, Value: "vendor"}, exprs[0])
	assert.Equal(t, clause.Expr{SQL: "LOWER(city) LIKE ?", Vars: []any{"%lagos%"}}, exprs[1])
	assert.Equal(t, clause.Eq{Column: clause.Column{Name: "notified"}, Value: false}, exprs[2])
}
