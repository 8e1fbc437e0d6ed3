package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/models"
)

// LocationProvider names the place at a coordinate.
type LocationProvider interface {
	Lookup(ctx context.Context, lat, lng float64) (*models.Location, error)
}

// WeatherProvider reports current conditions at a coordinate.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lng float64) (*models.Weather, error)
}

// FetchLocation calls p with the collaborator timeout. Any failure yields nil.
func FetchLocation(ctx context.Context, p LocationProvider, lat, lng float64) *models.Location {
	ctx, cancel := context.WithTimeout(ctx, constants.CollaboratorTimeout)
	defer cancel()
	loc, err := p.Lookup(ctx, lat, lng)
	if err != nil {
		logger.Warn("Location lookup failed", "error", err)
		return nil
	}
	return loc
}

// FetchWeather calls p with the collaborator timeout. Any failure yields nil.
func FetchWeather(ctx context.Context, p WeatherProvider, lat, lng float64) *models.Weather {
	ctx, cancel := context.WithTimeout(ctx, constants.CollaboratorTimeout)
	defer cancel()
	w, err := p.Current(ctx, lat, lng)
	if err != nil {
		logger.Warn("Weather lookup failed", "error", err)
		return nil
	}
	return w
}

type condition struct {
	name string
	icon string
}

// WMO weather interpretation codes.
var weatherCodes = map[int]condition{
	0:  {"Clear", "☀️"},
	1:  {"Mainly Clear", "🌤️"},
	2:  {"Partly Cloudy", "⛅"},
	3:  {"Overcast", "☁️"},
	45: {"Foggy", "🌫️"},
	48: {"Rime Fog", "🌫️"},
	51: {"Light Drizzle", "🌧️"},
	53: {"Drizzle", "🌧️"},
	55: {"Heavy Drizzle", "🌧️"},
	61: {"Light Rain", "🌧️"},
	63: {"Rain", "🌧️"},
	65: {"Heavy Rain", "🌧️"},
	71: {"Light Snow", "🌨️"},
	73: {"Snow", "🌨️"},
	75: {"Heavy Snow", "❄️"},
	77: {"Snow Grains", "🌨️"},
	80: {"Light Showers", "🌦️"},
	81: {"Showers", "🌦️"},
	82: {"Heavy Showers", "🌧️"},
	85: {"Light Snow Showers", "🌨️"},
	86: {"Snow Showers", "🌨️"},
	95: {"Thunderstorm", "⛈️"},
	96: {"Thunderstorm + Hail", "⛈️"},
	99: {"Thunderstorm + Heavy Hail", "⛈️"},
}

// WeatherFromCode maps a WMO code and temperature to a Weather value.
func WeatherFromCode(code int, temp float64) models.Weather {
	c, ok := weatherCodes[code]
	if !ok {
		c = condition{"Unknown", "🌡️"}
	}
	return models.Weather{Temp: math.Round(temp), Condition: c.name, Icon: c.icon}
}

// ManualWeather lists the choices offered when no lookup is possible.
var ManualWeather = []models.Weather{
	{Condition: "Sunny", Icon: "☀️"},
	{Condition: "Partly Cloudy", Icon: "⛅"},
	{Condition: "Cloudy", Icon: "☁️"},
	{Condition: "Rainy", Icon: "🌧️"},
	{Condition: "Stormy", Icon: "⛈️"},
	{Condition: "Snowy", Icon: "❄️"},
	{Condition: "Foggy", Icon: "🌫️"},
	{Condition: "Windy", Icon: "💨"},
}

// OpenMeteo is a WeatherProvider backed by the open-meteo.com forecast API.
type OpenMeteo struct {
	Client  *http.Client
	BaseURL string
}

func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{Client: http.DefaultClient, BaseURL: "https://api.open-meteo.com"}
}

func (o *OpenMeteo) Current(ctx context.Context, lat, lng float64) (*models.Weather, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprint(lat))
	q.Set("longitude", fmt.Sprint(lng))
	q.Set("current_weather", "true")

	var body struct {
		Current struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := getJSON(ctx, o.Client, o.BaseURL+"/v1/forecast?"+q.Encode(), &body); err != nil {
		return nil, err
	}
	w := WeatherFromCode(body.Current.WeatherCode, body.Current.Temperature)
	return &w, nil
}

// Nominatim is a LocationProvider backed by OpenStreetMap reverse geocoding.
type Nominatim struct {
	Client  *http.Client
	BaseURL string
	now     func() time.Time
}

func NewNominatim() *Nominatim {
	return &Nominatim{Client: http.DefaultClient, BaseURL: "https://nominatim.openstreetmap.org", now: time.Now}
}

// Lookup names the coordinate after the nearest city, town, village, suburb
// or county. When the service fails the coordinate itself becomes the name.
func (n *Nominatim) Lookup(ctx context.Context, lat, lng float64) (*models.Location, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprint(lat))
	q.Set("lon", fmt.Sprint(lng))
	q.Set("zoom", "14")

	loc := &models.Location{Lat: &lat, Lng: &lng, CreatedAt: n.now().UnixMilli()}

	var body struct {
		Address map[string]string `json:"address"`
	}
	if err := getJSON(ctx, n.Client, n.BaseURL+"/reverse?"+q.Encode(), &body); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug("Reverse geocoding failed, using coordinates", "error", err)
		loc.Name = fmt.Sprintf("%.4f, %.4f", lat, lng)
		return loc, nil
	}

	loc.Name = "Unknown location"
	for _, k := range []string{"city", "town", "village", "suburb", "county"} {
		if v := body.Address[k]; v != "" {
			loc.Name = v
			break
		}
	}
	return loc, nil
}

func getJSON(ctx context.Context, client *http.Client, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", constants.AppName+"/"+constants.Version)
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", req.URL.Host, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(v)
}
