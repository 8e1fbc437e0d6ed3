package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julianstephens/diarykeep/internal/models"
)

func TestWeatherFromCode(t *testing.T) {
	tests := []struct {
		code      int
		temp      float64
		condition string
		wantTemp  float64
	}{
		{0, 21.4, "Clear", 21},
		{63, 9.6, "Rain", 10},
		{42, 0, "Unknown", 0},
	}
	for _, tt := range tests {
		w := WeatherFromCode(tt.code, tt.temp)
		if w.Condition != tt.condition || w.Temp != tt.wantTemp {
			t.Errorf("WeatherFromCode(%d, %v) = %+v", tt.code, tt.temp, w)
		}
	}
}

func TestOpenMeteo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" || r.URL.Query().Get("current_weather") != "true" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"current_weather":{"temperature":17.8,"weathercode":2}}`))
	}))
	defer server.Close()

	o := &OpenMeteo{Client: server.Client(), BaseURL: server.URL}
	w := FetchWeather(context.Background(), o, 52.5, 13.4)
	if w == nil || w.Condition != "Partly Cloudy" || w.Temp != 18 {
		t.Errorf("unexpected weather %+v", w)
	}
}

type slowWeather struct{}

func (slowWeather) Current(ctx context.Context, _, _ float64) (*models.Weather, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchWeatherCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if w := FetchWeather(ctx, slowWeather{}, 0, 0); w != nil {
		t.Errorf("expected nil on timeout, got %+v", w)
	}
}

func TestNominatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "0" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"address":{"suburb":"Kreuzberg","city":"Berlin"}}`))
	}))
	defer server.Close()

	n := NewNominatim()
	n.Client = server.Client()
	n.BaseURL = server.URL

	loc := FetchLocation(context.Background(), n, 52.5, 13.4)
	if loc == nil || loc.Name != "Berlin" || *loc.Lat != 52.5 {
		t.Errorf("unexpected location %+v", loc)
	}

	loc = FetchLocation(context.Background(), n, 0, 1.23456)
	if loc == nil || loc.Name != "0.0000, 1.2346" {
		t.Errorf("expected coordinate fallback name, got %+v", loc)
	}
}
