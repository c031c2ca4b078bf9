package persistence

import (
	"slices"
	"strings"

	"gorm.io/gorm/clause"
)

// sortable lists the columns a listing may be ordered by. Anything else,
// including a mis-cased name, falls back to the first column.
type sortable []string

var (
	clientSort   = sortable{"created_at", "updated_at", "first_name", "last_name", "email", "credits"}
	itemSort     = sortable{"created_at", "updated_at", "name", "size"}
	outfitSort   = sortable{"created_at", "updated_at", "name"}
	shoppingSort = sortable{"created_at", "updated_at", "name", "price", "purchased"}
)

// by orders on column, descending unless dir is "asc".
func (s sortable) by(column, dir string) clause.OrderByColumn {
	column = strings.TrimSpace(column)
	if !slices.Contains(s, column) {
		column = s[0]
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

// likePattern escapes user input for a LIKE ... ESCAPE '\' search.
func likePattern(search string) string {
	var b strings.Builder
	b.WriteByte('%')
	for _, c := range search {
		if c == '%' || c == '_' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte('%')
	return b.String()
}
