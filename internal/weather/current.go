package weather

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reading is the normalized current-weather record. Either every required
// field was present upstream or no reading is returned at all. VisibilityM
// is nil when the upstream omits visibility.
type Reading struct {
	City         string    `json:"city"`
	Country      string    `json:"country"`
	TemperatureC float64   `json:"temperature_c"`
	FeelsLikeC   float64   `json:"feels_like_c"`
	HumidityPct  int       `json:"humidity_pct"`
	PressureHPa  float64   `json:"pressure_hpa"`
	Description  string    `json:"description"`
	WindSpeedMS  float64   `json:"wind_speed_ms"`
	VisibilityM  *float64  `json:"visibility_m"`
	ObservedAt   time.Time `json:"observed_at"`
}

// Current fetches the current weather for a city. Transport errors pass
// through unchanged; a payload missing a required field yields a
// "missing field <path>" error and no reading.
func (c *Client) Current(ctx context.Context, city string) (*Reading, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	tree, err := c.invoker.GetJSON(ctx, c.baseURL, params)
	if err != nil {
		return nil, err
	}
	return projectReading(tree)
}

func projectReading(tree map[string]any) (*Reading, error) {
	city, err := str(tree, "name", "name")
	if err != nil {
		return nil, err
	}

	sys, err := object(tree, "sys", "sys")
	if err != nil {
		return nil, err
	}
	country, err := str(sys, "country", "sys.country")
	if err != nil {
		return nil, err
	}

	main, err := object(tree, "main", "main")
	if err != nil {
		return nil, err
	}
	temp, err := number(main, "temp", "main.temp")
	if err != nil {
		return nil, err
	}
	feelsLike, err := number(main, "feels_like", "main.feels_like")
	if err != nil {
		return nil, err
	}
	humidity, err := number(main, "humidity", "main.humidity")
	if err != nil {
		return nil, err
	}
	pressure, err := number(main, "pressure", "main.pressure")
	if err != nil {
		return nil, err
	}

	description, err := firstDescription(tree)
	if err != nil {
		return nil, err
	}

	wind, err := object(tree, "wind", "wind")
	if err != nil {
		return nil, err
	}
	windSpeed, err := number(wind, "speed", "wind.speed")
	if err != nil {
		return nil, err
	}

	// visibility is the one optional field; absent means unavailable.
	var visibility *float64
	if v, ok := tree["visibility"].(float64); ok {
		visibility = &v
	}

	dt, err := number(tree, "dt", "dt")
	if err != nil {
		return nil, err
	}

	return &Reading{
		City:         city,
		Country:      country,
		TemperatureC: temp,
		FeelsLikeC:   feelsLike,
		HumidityPct:  int(humidity),
		PressureHPa:  pressure,
		Description:  titleCase(description),
		WindSpeedMS:  windSpeed,
		VisibilityM:  visibility,
		ObservedAt:   time.Unix(int64(dt), 0),
	}, nil
}

// titleCase capitalizes the first letter of each word. A cases.Caser is
// stateful, so one is built per call rather than shared.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func firstDescription(tree map[string]any) (string, error) {
	const path = "weather[0].description"
	list, ok := tree["weather"].([]any)
	if !ok || len(list) == 0 {
		return "", missingField(path)
	}
	entry, ok := list[0].(map[string]any)
	if !ok {
		return "", missingField(path)
	}
	return str(entry, "description", path)
}

func object(m map[string]any, key, path string) (map[string]any, error) {
	v, ok := m[key].(map[string]any)
	if !ok {
		return nil, missingField(path)
	}
	return v, nil
}

func str(m map[string]any, key, path string) (string, error) {
	v, ok := m[key].(string)
	if !ok {
		return "", missingField(path)
	}
	return v, nil
}

func number(m map[string]any, key, path string) (float64, error) {
	v, ok := m[key].(float64)
	if !ok {
		return 0, missingField(path)
	}
	return v, nil
}

func missingField(path string) error {
	return fmt.Errorf("missing field %s", path)
}
