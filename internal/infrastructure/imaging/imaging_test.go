package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solidImage(w, h), nil))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solidImage(w, h), nil))
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		mime    string
		ext     string
		wantErr bool
	}{
		{"png", encodePNG(t, 4, 4), "image/png", ".png", false},
		{"jpeg", encodeJPEG(t, 4, 4), "image/jpeg", ".jpg", false},
		{"gif", encodeGIF(t, 4, 4), "image/gif", ".gif", false},
		{"plain text", []byte("definitely not an image"), "", "", true},
		{"pdf", []byte("%PDF-1.4\n%âãÏÓ\n"), "", "", true},
		{"empty", nil, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrUnsupportedMedia)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mime, got.MIME)
			assert.Equal(t, tt.ext, got.Extension)
		})
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{100, 50, 400, 100, 50},
		{800, 400, 400, 400, 200},
		{400, 800, 400, 200, 400},
		{1000, 1, 400, 400, 1},
		{400, 400, 400, 400, 400},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.limit)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestProcessor_Thumbnail(t *testing.T) {
	p := NewProcessor(50, 80)

	thumb, err := p.Thumbnail(encodePNG(t, 200, 100))
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.SourceWidth)
	assert.Equal(t, 100, thumb.SourceHeight)

	decoded, format, err := image.Decode(bytes.NewReader(thumb.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 50, decoded.Bounds().Dx())
	assert.Equal(t, 25, decoded.Bounds().Dy())

	_, err = p.Thumbnail([]byte("garbage"))
	assert.ErrorIs(t, err, shared.ErrUnsupportedMedia)
}

func TestProcessor_TransparentFlattenedOnWhite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 10, 10))))

	thumb, err := NewProcessor(10, 100).Thumbnail(buf.Bytes())
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(thumb.Data))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(5, 5).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(encodeJPEG(t, 30, 20))
	require.NoError(t, err)
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)

	_, _, err = Dimensions([]byte("nope"))
	assert.ErrorIs(t, err, shared.ErrUnsupportedMedia)
}

func TestNewBackgroundRemover_Validation(t *testing.T) {
	_, err := NewBackgroundRemover("", "key", 0, 0, nil)
	assert.Error(t, err)
	_, err = NewBackgroundRemover("http://x", "", 0, 0, nil)
	assert.Error(t, err)

	r, err := NewBackgroundRemover("http://x", "key", 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, r.httpClient.Timeout)
}

func TestBackgroundRemover_Remove(t *testing.T) {
	output := encodePNG(t, 8, 8)

	var gotKey, gotSize string
	var gotFile []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotSize = r.FormValue("size")
		f, _, err := r.FormFile("image_file")
		require.NoError(t, err)
		gotFile, _ = io.ReadAll(f)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(output)
	}))
	defer server.Close()

	remover, err := NewBackgroundRemover(server.URL, "secret", time.Second, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	input := encodeJPEG(t, 8, 8)
	got, err := remover.Remove(context.Background(), input, "shirt.jpg")
	require.NoError(t, err)
	assert.Equal(t, output, got)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "auto", gotSize)
	assert.Equal(t, input, gotFile)
}

func TestBackgroundRemover_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"error status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"errors":[{"title":"Insufficient credits"}]}`))
		}},
		{"non png body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			remover, err := NewBackgroundRemover(server.URL, "secret", time.Second, 0, nil)
			require.NoError(t, err)
			_, err = remover.Remove(context.Background(), []byte("img"), "a.png")
			assert.ErrorIs(t, err, shared.ErrExternalService)
		})
	}
}

func TestBackgroundRemover_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(encodePNG(t, 2, 2))
	}))
	defer server.Close()

	remover, err := NewBackgroundRemover(server.URL, "secret", time.Second, 1, nil)
	require.NoError(t, err)

	_, err = remover.Remove(context.Background(), []byte("img"), "a.png")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = remover.Remove(ctx, []byte("img"), "a.png")
	assert.ErrorIs(t, err, shared.ErrExternalService)
}
