package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/singleflight"

	"skyquote/internal/config"
	"skyquote/internal/crypto"
	"skyquote/internal/fetch"
	"skyquote/internal/httpx"
	"skyquote/internal/weather"
)

type weatherFetcher interface {
	Current(ctx context.Context, city string) (*weather.Reading, error)
}

type priceFetcher interface {
	Prices(ctx context.Context, ids []string) (map[string]crypto.Quote, error)
}

type weatherResponse struct {
	Reading *weather.Reading `json:"reading"`
}

type pricesResponse struct {
	Quotes map[string]crypto.Quote `json:"quotes"`
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Weather.APIKey == "" {
		log.Println("warning: OPENWEATHER_API_KEY not set; /api/weather will fail upstream")
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	httpClient := httpx.New(timeout)

	// One breaker per upstream so a flapping weather API does not
	// block price requests.
	weatherClient := weather.NewClient(
		cfg.Weather.APIKey,
		weather.WithBaseURL(cfg.Weather.Endpoint),
		weather.WithInvoker(fetch.NewInvoker(fetch.WithDoer(fetch.NewBreakerDoer(httpClient, "openweather")))),
	)
	cryptoClient := crypto.NewClient(
		crypto.WithBaseURL(cfg.Crypto.Endpoint),
		crypto.WithInvoker(fetch.NewInvoker(fetch.WithDoer(fetch.NewBreakerDoer(httpClient, "coingecko")))),
	)

	api := &api{weather: weatherClient, crypto: cryptoClient}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/weather", api.handleWeather)
	mux.HandleFunc("/api/prices", api.handlePrices)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

type api struct {
	weather weatherFetcher
	crypto  priceFetcher

	// coalesce identical in-flight fetches; this is dedup, not caching.
	weatherGroup singleflight.Group
	pricesGroup  singleflight.Group
}

func (a *api) handleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		http.Error(w, "missing city query param", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	v, err, _ := a.weatherGroup.Do(strings.ToLower(city), func() (any, error) {
		return a.weather.Current(ctx, city)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, weatherResponse{Reading: v.(*weather.Reading)})
}

func (a *api) handlePrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ids := splitCSV(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		http.Error(w, "missing ids query param", http.StatusBadRequest)
		return
	}
	if len(ids) > 100 {
		http.Error(w, "too many ids (max 100)", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	v, err, _ := a.pricesGroup.Do(strings.Join(ids, ","), func() (any, error) {
		return a.crypto.Prices(ctx, ids)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, pricesResponse{Quotes: v.(map[string]crypto.Quote)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError maps classified fetch errors onto gateway status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, fetch.ErrTimeout) {
		status = http.StatusGatewayTimeout
	}
	http.Error(w, err.Error(), status)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Basic CORS for browser usage; adjust as needed.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses the response when the client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(gw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
