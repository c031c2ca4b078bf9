package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestSortable_By(t *testing.T) {
	tests := []struct {
		name       string
		column     string
		dir        string
		wantColumn string
		wantDesc   bool
	}{
		{"allowed column ascending", "name", "asc", "name", false},
		{"direction is case-insensitive", "name", " ASC ", "name", false},
		{"descending by default", "size", "", "size", true},
		{"unknown direction", "size", "sideways", "size", true},
		{"unknown column", "password_hash", "asc", "created_at", false},
		{"column names are case-sensitive", "NAME", "desc", "created_at", true},
		{"injection attempt", "name; DROP TABLE items;--", "asc; --", "created_at", true},
		{"padded column", "  name  ", "desc", "name", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := itemSort.by(tt.column, tt.dir)
			assert.Equal(t, clause.OrderByColumn{Column: clause.Column{Name: tt.wantColumn}, Desc: tt.wantDesc}, got)
		})
	}
}

func TestSortables_DefaultToCreatedAt(t *testing.T) {
	for _, s := range []sortable{clientSort, itemSort, outfitSort, shoppingSort} {
		assert.Equal(t, "created_at", s.by("", "").Column.Name)
		assert.NotContains(t, s, "password_hash")
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ann%", likePattern("ann"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
