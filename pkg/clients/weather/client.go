// Package weather reads current conditions and forecasts from OpenWeatherMap.
package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/beeconnect/server/internal/config"
)

const (
	forecastSlot = "12:00:00"
	forecastDays = 5
	dtTxtLayout  = "2006-01-02 15:04:05"
)

// Current holds the conditions shown on the apiary screen.
type Current struct {
	TempC       int `json:"temp_c"`
	WindKmh     int `json:"wind_kmh"`
	HumidityPct int `json:"humidity_pct"`
}

// ForecastDay is the midday forecast of one day.
type ForecastDay struct {
	Date        time.Time `json:"date"`
	TempC       int       `json:"temp_c"`
	Description string    `json:"description"`
}

// APIClient is a resty-backed OpenWeatherMap client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a weather client using the provided configuration values.
func NewClient(cfg config.WeatherConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/data/2.5").
		SetQueryParam("appid", cfg.APIKey).
		SetQueryParam("units", "metric").
		SetQueryParam("lang", cfg.Language).
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity int     `json:"humidity"`
}

type currentResponse struct {
	Main *mainBlock `json:"main"`
	Wind *struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastResponse struct {
	List []struct {
		DtTxt   string    `json:"dt_txt"`
		Main    mainBlock `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// Current returns the conditions at the given coordinates.
func (c *APIClient) Current(ctx context.Context, lat, lon float64) (Current, error) {
	result := new(currentResponse)
	if err := c.get(ctx, "/weather", lat, lon, result); err != nil {
		return Current{}, err
	}
	if result.Main == nil || result.Wind == nil {
		return Current{}, fmt.Errorf("weather response missing main or wind block")
	}

	return Current{
		TempC:       int(result.Main.Temp),
		WindKmh:     int(math.Round(result.Wind.Speed * 3.6)),
		HumidityPct: result.Main.Humidity,
	}, nil
}

// Forecast returns up to five days, one entry per day taken from the midday slot.
func (c *APIClient) Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, error) {
	result := new(forecastResponse)
	if err := c.get(ctx, "/forecast", lat, lon, result); err != nil {
		return nil, err
	}

	out := make([]ForecastDay, 0, forecastDays)
	seen := make(map[string]bool)
	for _, entry := range result.List {
		if !strings.Contains(entry.DtTxt, forecastSlot) {
			continue
		}
		at, err := time.Parse(dtTxtLayout, entry.DtTxt)
		if err != nil {
			continue
		}
		day := at.Format("2006-01-02")
		if seen[day] {
			continue
		}
		seen[day] = true

		description := ""
		if len(entry.Weather) > 0 {
			description = entry.Weather[0].Description
		}
		out = append(out, ForecastDay{Date: at, TempC: int(entry.Main.Temp), Description: description})
		if len(out) == forecastDays {
			break
		}
	}
	return out, nil
}

func (c *APIClient) get(ctx context.Context, path string, lat, lon float64, result any) error {
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("lat", strconv.FormatFloat(lat, 'f', -1, 64)).
		SetQueryParam("lon", strconv.FormatFloat(lon, 'f', -1, 64)).
		SetResult(result).
		SetError(apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("fetch weather %s: %w", path, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("weather api error: code=%d, message=%s", resp.StatusCode(), apiErr.Message)
	}
	return nil
}
