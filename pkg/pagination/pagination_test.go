package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
		wantOffset  int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "?page=3&per_page=10", 3, 10, 20},
		{"per_page capped", "?per_page=500", 1, 20, 0},
		{"negative page ignored", "?page=-2", 1, 20, 0},
		{"garbage ignored", "?page=abc&per_page=xyz", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/reviews"+tt.query, nil)
			p := FromRequest(r)

			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestClamp(t *testing.T) {
	p := Clamp(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)

	p = Clamp(2, 150)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 100, p.Offset)
}
