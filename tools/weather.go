package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const weatherLogPrefix = "[weather]"

// Weather argument keys.
const (
	CityKey     = "city"
	FromDateKey = "from_date"
	ToDateKey   = "to_date"
)

const isoDate = "2006-01-02"

// Day is one day of historical weather.
type Day struct {
	Date      string  `json:"date"`
	MaxTempC  float64 `json:"max_temp_c"`
	MinTempC  float64 `json:"min_temp_c"`
	AvgTempC  float64 `json:"avg_temp_c"`
	Condition string  `json:"condition"`
}

// Weather looks up historical weather for a city over a date range.
type Weather struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewWeather creates a weather tool against the API rooted at baseURL.
func NewWeather(baseURL, apiKey string, timeout time.Duration) *Weather {
	return &Weather{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (w *Weather) Name() Name {
	return WeatherName
}

func (w *Weather) Description() string {
	return "Get the daily weather of a city between two dates (inclusive)."
}

func (w *Weather) Parameters() map[string]any {
	return objectSchema(map[string]any{
		CityKey:     stringProperty("Name of the city"),
		FromDateKey: stringProperty("First day, ISO format YYYY-MM-DD"),
		ToDateKey:   stringProperty("Last day, ISO format YYYY-MM-DD"),
	}, CityKey, FromDateKey, ToDateKey)
}

type forecastResponse struct {
	Forecast *struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64 `json:"maxtemp_c"`
				MinTempC  float64 `json:"mintemp_c"`
				AvgTempC  float64 `json:"avgtemp_c"`
				Condition struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// History returns one record per day in the requested range, in the order
// the weather service reports them. Bad arguments and unexpected response
// shapes return a *ValidationError; network and HTTP failures wrap ErrTransport.
func (w *Weather) History(ctx context.Context, args map[string]any) ([]Day, error) {
	city := stringArg(args, CityKey)
	fromDate := stringArg(args, FromDateKey)
	toDate := stringArg(args, ToDateKey)
	if city == "" || fromDate == "" || toDate == "" {
		return nil, validationf("Missing required parameters: city, from_date, or to_date")
	}

	start, err := time.Parse(isoDate, fromDate)
	if err != nil {
		return nil, validationf("Invalid date for %s: %s", FromDateKey, fromDate)
	}
	end, err := time.Parse(isoDate, toDate)
	if err != nil {
		return nil, validationf("Invalid date for %s: %s", ToDateKey, toDate)
	}
	if end.Before(start) {
		return nil, validationf("%s %s is before %s %s", ToDateKey, toDate, FromDateKey, fromDate)
	}

	params := url.Values{}
	params.Set("key", w.apiKey)
	params.Set("q", city)
	params.Set("dt", start.Format(isoDate))
	params.Set("end_dt", end.Format(isoDate))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/history.json?"+params.Encode(), nil)
	if err != nil {
		return nil, transportError("Weather Data Fetching Error", err)
	}

	log.Printf("%s fetching %s %s..%s", weatherLogPrefix, city, fromDate, toDate)
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, transportError("Weather Data Fetching Error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("Weather Data Fetching Error", err)
	}
	if rejectedRequest(resp.StatusCode) {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, validationf("%s", apiErr.Error.Message)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportError("Weather Data Fetching Error", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload forecastResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Forecast == nil {
		log.Printf("%s unexpected response: %s", weatherLogPrefix, body)
		return nil, validationf("No forecast data in response")
	}

	days := make([]Day, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		days = append(days, Day{
			Date:      fd.Date,
			MaxTempC:  fd.Day.MaxTempC,
			MinTempC:  fd.Day.MinTempC,
			AvgTempC:  fd.Day.AvgTempC,
			Condition: fd.Day.Condition.Text,
		})
	}
	return days, nil
}
