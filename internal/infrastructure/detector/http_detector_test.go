package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parking-occupancy/internal/config"
	"github.com/parking-occupancy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHTTPDetector(url string) *httpDetector {
	return NewHTTPDetector(&config.DetectorConfig{
		BaseURL:        url + "/",
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop()).(*httpDetector)
}

func TestHTTPDetector_Detect(t *testing.T) {
	var got detectRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"detections": [
			{"name": "car", "percentage_probability": 87.5, "box_points": [10, 20, 110, 220]},
			{"name": "motorcycle", "percentage_probability": 15, "box_points": [300, 40, 340, 90]},
			{"name": "car", "percentage_probability": 9.9, "box_points": [0, 0, 5, 5]},
			{"name": "person", "percentage_probability": 99, "box_points": [0, 0, 5, 5]}
		]}`))
	}))
	defer server.Close()

	d := newTestHTTPDetector(server.URL)

	detections, err := d.Detect(context.Background(), "/media/a/frame.jpg", []string{"car", "motorcycle"}, 15)
	require.NoError(t, err)

	assert.Equal(t, "/media/a/frame.jpg", got.ImagePath)
	assert.Equal(t, []string{"car", "motorcycle"}, got.Classes)
	assert.Equal(t, float64(15), got.MinProbability)

	require.Len(t, detections, 2)
	assert.Equal(t, domain.NewBoundingBox(10, 20, 110, 220), detections[0].Box)
	assert.Equal(t, 87.5, detections[0].Confidence)
	assert.Equal(t, "car", detections[0].Label)
	assert.Equal(t, "motorcycle", detections[1].Label, "confidence equal to the floor is kept")
}

func TestHTTPDetector_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detections": []}`))
	}))
	defer server.Close()

	detections, err := newTestHTTPDetector(server.URL).Detect(context.Background(), "x.jpg", nil, 15)
	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestHTTPDetector_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"detections": [`))
			},
		},
		{
			name: "short box",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"detections": [{"name": "car", "percentage_probability": 90, "box_points": [1, 2, 3]}]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestHTTPDetector(server.URL).Detect(context.Background(), "x.jpg", []string{"car"}, 15)
			assert.Error(t, err)
		})
	}
}

func TestHTTPDetector_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestHTTPDetector(server.URL).Detect(ctx, "x.jpg", []string{"car"}, 15)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "cell_phone", normalizeLabel("Cell Phone"))
	assert.Equal(t, "parking_meter", normalizeLabel(" parking-meter "))
	assert.Equal(t, "car", normalizeLabel("CAR"))
}

func TestAccept(t *testing.T) {
	allowed := classSet([]string{"car", "cell_phone"})

	assert.True(t, accept(allowed, "Car", 50, 15))
	assert.True(t, accept(allowed, "Cell Phone", 15, 15))
	assert.False(t, accept(allowed, "car", 14.9, 15))
	assert.False(t, accept(allowed, "person", 99, 15))
	assert.True(t, accept(classSet(nil), "person", 99, 15))
}
