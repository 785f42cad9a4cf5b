package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Params
	}{
		{"defaults", 0, 0, Params{Page: 1, Limit: DefaultLimit, Offset: 0}},
		{"third page", 3, 10, Params{Page: 3, Limit: 10, Offset: 20}},
		{"limit clamped", 1, 500, Params{Page: 1, Limit: MaxLimit, Offset: 0}},
		{"negative page", -4, 5, Params{Page: 1, Limit: 5, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.page, tt.limit))
		})
	}
}

func TestMeta(t *testing.T) {
	m := New(2, 5).Meta(11)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrev)

	empty := New(1, 5).Meta(0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)
}

func TestNewPage(t *testing.T) {
	p := NewPage([]string{"a", "b"}, New(1, 2), 2)
	assert.Len(t, p.Items, 2)
	assert.Equal(t, int64(2), p.Meta.Total)
	assert.False(t, p.Meta.HasNext)
}
