package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"skyquote/internal/config"
	"skyquote/internal/crypto"
	"skyquote/internal/fetch"
	"skyquote/internal/httpx"
	"skyquote/internal/weather"
)

func main() {
	var cfgPath string
	var timeoutSec int
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&timeoutSec, "timeout", 0, "request timeout seconds (overrides config)")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeoutSec > 0 {
		cfg.Server.RequestTimeoutSec = timeoutSec
	}
	if cfg.Weather.APIKey == "" {
		log.Println("warning: OPENWEATHER_API_KEY not set; weather requests will be rejected upstream")
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	invoker := fetch.NewInvoker(fetch.WithDoer(httpx.New(timeout)))
	weatherClient := weather.NewClient(
		cfg.Weather.APIKey,
		weather.WithBaseURL(cfg.Weather.Endpoint),
		weather.WithInvoker(invoker),
	)
	cryptoClient := crypto.NewClient(
		crypto.WithBaseURL(cfg.Crypto.Endpoint),
		crypto.WithInvoker(invoker),
	)

	a := &app{
		weather: weatherClient,
		crypto:  cryptoClient,
		timeout: timeout,
		in:      bufio.NewScanner(os.Stdin),
	}
	a.run(cfg.Crypto.DefaultAssets)
}

type app struct {
	weather *weather.Client
	crypto  *crypto.Client
	timeout time.Duration
	in      *bufio.Scanner
	eof     bool
}

func (a *app) run(defaultAssets []string) {
	fmt.Println("skyquote - weather and crypto prices")
	fmt.Println("Fetching data from external APIs...")

	if city := a.prompt("\nEnter city name for weather data (e.g., London, New York): "); city != "" {
		a.showWeather(city)
	}

	fmt.Println("\nFetching cryptocurrency prices...")
	a.showPrices(defaultAssets)

	for {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Println("Choose an option:")
		fmt.Println("1. Check weather for another city")
		fmt.Println("2. Check specific cryptocurrency")
		fmt.Println("3. Exit")

		choice := a.prompt("Enter your choice (1/2/3): ")
		if a.eof {
			return
		}
		switch choice {
		case "1":
			if city := a.prompt("Enter city name: "); city != "" {
				a.showWeather(city)
			}
		case "2":
			if asset := strings.ToLower(a.prompt("Enter cryptocurrency name (e.g., bitcoin, ethereum): ")); asset != "" {
				a.showPrices([]string{asset})
			}
		case "3":
			fmt.Println("Thank you for using skyquote!")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

func (a *app) prompt(label string) string {
	if a.eof {
		return ""
	}
	fmt.Print(label)
	if !a.in.Scan() {
		a.eof = true
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) showWeather(city string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	reading, err := a.weather.Current(ctx, city)
	if err != nil {
		fmt.Println(errorMessage(err))
		return
	}
	renderReading(reading)
}

func (a *app) showPrices(ids []string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	quotes, err := a.crypto.Prices(ctx, ids)
	if err != nil {
		fmt.Println(errorMessage(err))
		return
	}
	renderQuotes(ids, quotes)
}

func renderReading(r *weather.Reading) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("WEATHER INFORMATION")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Location: %s, %s\n", r.City, r.Country)
	fmt.Printf("Temperature: %.1f°C\n", r.TemperatureC)
	fmt.Printf("Feels Like: %.1f°C\n", r.FeelsLikeC)
	fmt.Printf("Description: %s\n", r.Description)
	fmt.Printf("Humidity: %d%%\n", r.HumidityPct)
	fmt.Printf("Pressure: %.0f hPa\n", r.PressureHPa)
	fmt.Printf("Wind Speed: %.1f m/s\n", r.WindSpeedMS)
	if r.VisibilityM != nil {
		fmt.Printf("Visibility: %.0f meters\n", *r.VisibilityM)
	} else {
		fmt.Println("Visibility: unavailable")
	}
	fmt.Printf("Last Updated: %s\n", r.ObservedAt.Format("2006-01-02 15:04:05"))
}

func renderQuotes(ids []string, quotes map[string]crypto.Quote) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("CRYPTOCURRENCY PRICES")
	fmt.Println(strings.Repeat("=", 50))
	shown := 0
	for _, id := range ids {
		quote, ok := quotes[id]
		if !ok {
			continue
		}
		shown++
		fmt.Printf("\n%s:\n", strings.ToUpper(id))
		fmt.Printf("  Price: $%.2f\n", quote.PriceUSD)
		fmt.Printf("  24h Change: %+.2f%%\n", quote.Change24hPct)
		if quote.MarketCapUSD != nil {
			fmt.Printf("  Market Cap: $%.0f\n", *quote.MarketCapUSD)
		}
		if quote.Volume24hUSD != nil {
			fmt.Printf("  24h Volume: $%.0f\n", *quote.Volume24hUSD)
		}
	}
	if shown == 0 {
		fmt.Println("\nNo quotes found for the requested assets.")
	}
}

// errorMessage maps classified errors to the user-facing strings.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, fetch.ErrTimeout):
		return "Error: request timed out. Please check your internet connection."
	case errors.Is(err, fetch.ErrConnection):
		return "Error: failed to connect. Please check your internet connection."
	}
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Error: unable to fetch data (status code: %d)", statusErr.Code)
	}
	return fmt.Sprintf("Error: %v", err)
}
