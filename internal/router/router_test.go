package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Page
	}{
		{"/", Index},
		{"/index.html", Index},
		{"/dashboard", Dashboard},
		{"/dashboard.html", Dashboard},
		{"/whatsup", Sentiment},
		{"/whatsup.html", Sentiment},
		{"/market.html", Market},
		{"/analyze/", Analyze},
		{"/settings", Unknown},
		{"/sentiment", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromPath(tt.path), tt.path)
	}
}

func TestBodyIDRoundTrip(t *testing.T) {
	for p := range pages {
		assert.Equal(t, p, FromBodyID(p.BodyID()))
	}
	assert.Equal(t, "page-whatsup", Sentiment.BodyID())
	assert.Equal(t, Unknown, FromBodyID("page-settings"))
	assert.Equal(t, "", Unknown.BodyID())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/", Index.Path())
	assert.Equal(t, "/whatsup", Sentiment.Path())
	assert.True(t, Index.Public())
	assert.False(t, Dashboard.Public())
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "/dashboard", Fallback(true))
	assert.Equal(t, "/", Fallback(false))
}

func TestRouterDispatch(t *testing.T) {
	var hit Page
	rt := New(func(*http.Request) bool { return false })
	for _, p := range []Page{Index, Dashboard, Sentiment} {
		p := p
		rt.Handle(p, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hit = p
		}))
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whatsup.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Sentiment, hit)
}

func TestRouterUnknownFallsBack(t *testing.T) {
	tests := []struct {
		name       string
		authorized bool
		want       string
	}{
		{"authorized", true, "/dashboard"},
		{"anonymous", false, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := New(func(*http.Request) bool { return tt.authorized })
			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere.html", nil))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestRouterUnregisteredPageFallsBack(t *testing.T) {
	rt := New(func(*http.Request) bool { return true })
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market", nil))
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
