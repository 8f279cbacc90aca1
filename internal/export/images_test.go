package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(PlaceholderPNG())
	}))
	defer srv.Close()

	img := NewImageFetcher().Fetch(context.Background(), srv.URL+"/product.png")
	assert.False(t, img.Fallback)
	assert.Equal(t, "png", img.Extension)
	assert.NotEmpty(t, img.Data)
}

func TestFetchNotFoundFallsBackToPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	img := NewImageFetcher().Fetch(context.Background(), srv.URL+"/missing.png")
	assert.True(t, img.Fallback)
	assert.Equal(t, PlaceholderPNG(), img.Data)
}

func TestFetchEmptyURLFallsBack(t *testing.T) {
	img := NewImageFetcher().Fetch(context.Background(), "")
	assert.True(t, img.Fallback)
}

func TestFetchAllPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/a", srv.URL + "/bad", srv.URL + "/c"}
	images := NewImageFetcher().FetchAll(context.Background(), urls)
	require.Len(t, images, 3)

	assert.Equal(t, []byte("/a"), images[0].Data)
	assert.Equal(t, "jpeg", images[0].Extension)
	assert.True(t, images[1].Fallback, "failed slot must carry the placeholder")
	assert.Equal(t, []byte("/c"), images[2].Data)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, "jpeg", extensionFor("image/jpeg", ""))
	assert.Equal(t, "gif", extensionFor("image/gif", ""))
	assert.Equal(t, "jpeg", extensionFor("", "https://cdn.example.com/p/1.JPG"))
	assert.Equal(t, "png", extensionFor("", "https://cdn.example.com/p/1"))
}
