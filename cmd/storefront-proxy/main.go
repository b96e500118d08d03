// storefront-proxy is a shared caching proxy for the storefront admin API.
//
// Reads (GET) are served through the query cache backed by Redis, so several
// console instances behind the proxy share one warm cache. Writes pass
// through to the admin API and invalidate the affected entity prefix.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/storefront-kit/adminapi/pkg/cache"
	"github.com/storefront-kit/adminapi/pkg/client"
	"github.com/storefront-kit/adminapi/pkg/logging"
	"github.com/storefront-kit/adminapi/pkg/query"
)

type proxyConfig struct {
	Addr        string        `env:"ADDR" envDefault:":8080"`
	RedisURL    string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	APIBaseURL  string        `env:"API_BASE_URL,required"`
	APIToken    string        `env:"API_TOKEN"`
	StoreDomain string        `env:"STORE_DOMAIN,required"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"30m"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg proxyConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.LogLevel)
	logging.Setup(logCfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("Failed to connect to Redis")
	}
	log.Info().Str("redis_url", cfg.RedisURL).Msg("Connected to Redis")

	transport, err := client.New(client.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Domain:  cfg.StoreDomain,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin API client")
	}

	store := cache.NewRedisStore(redisClient, cfg.CacheTTL)
	qc := query.NewCache(store)

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/api/", apiHandler(qc, transport))

	log.Info().
		Str("addr", cfg.Addr).
		Str("store_domain", cfg.StoreDomain).
		Msg("Starting admin API proxy")

	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports 200 only while Redis answers pings.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// apiHandler proxies admin API calls. GETs are answered from the shared
// cache; other methods pass through and invalidate the entity they touch.
func apiHandler(qc *query.Cache, transport *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := strings.TrimPrefix(r.URL.Path, "/api")
		if route == "" || route == "/" {
			http.Error(w, "missing route", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		if r.Method == http.MethodGet {
			serveCachedRead(ctx, w, qc, transport, route, r)
			return
		}
		serveWrite(ctx, w, qc, transport, route, r)
	}
}

func serveCachedRead(ctx context.Context, w http.ResponseWriter, qc *query.Cache, transport *client.Client, route string, r *http.Request) {
	key, ok := cacheKeyFor(route, r.URL.Query())
	if !ok {
		http.Error(w, "unsupported route", http.StatusBadRequest)
		return
	}

	res := qc.Query(ctx, key, func(ctx context.Context) (any, error) {
		raw, err := transport.Get(ctx, route, r.URL.Query())
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}, query.Options{})

	if res.Err != nil {
		writeAPIError(w, res.Err)
		return
	}

	body, _ := res.Value.(string)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache-State", string(res.State))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

func serveWrite(ctx context.Context, w http.ResponseWriter, qc *query.Cache, transport *client.Client, route string, r *http.Request) {
	var body any
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if len(raw) > 0 {
			body = jsonPassthrough(raw)
		}
	}

	raw, err := transport.Do(ctx, r.Method, route, nil, body)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	if entity := entityOf(route); entity != "" {
		if err := qc.Invalidate(ctx, cache.EntityPrefix(entity)); err != nil {
			log.Warn().Err(err).Str("entity", entity).Msg("Failed to invalidate after write")
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// cacheKeyFor derives the cache key of a GET route.
//
//	/products             -> list key with the query filters
//	/products/search      -> search or cursor key depending on params
//	/products/{id}        -> detail key
func cacheKeyFor(route string, params map[string][]string) (cache.Key, bool) {
	parts := strings.Split(strings.Trim(route, "/"), "/")

	filters := cache.Filters{}
	for k, vs := range params {
		if len(vs) > 0 {
			filters = filters.With(k, vs[0])
		}
	}

	switch len(parts) {
	case 1:
		return cache.ListKey(parts[0], filters), true
	case 2:
		if parts[1] == "search" {
			if _, ok := params["cursor"]; ok {
				return cache.CursorKey(parts[0], filters), true
			}
			return cache.SearchKey(parts[0], filters), true
		}
		return cache.DetailKey(parts[0], parts[1]), true
	default:
		return cache.Key{}, false
	}
}

func entityOf(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// writeAPIError maps a transport error back onto an HTTP response.
func writeAPIError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		status = apiErr.StatusCode
	}
	http.Error(w, err.Error(), status)
}

// jsonPassthrough forwards a raw request body without re-encoding it.
type jsonPassthrough []byte

func (j jsonPassthrough) MarshalJSON() ([]byte, error) {
	return j, nil
}
