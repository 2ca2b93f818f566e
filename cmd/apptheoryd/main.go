// Command apptheoryd is a runnable demo binary wiring an HTTP adapter, the
// rate limiter, and observability end to end, serving over h2c for both
// HTTP/1.1 and HTTP/2 clear-text clients.
package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apptheory "github.com/theory-cloud/AppTheory"
	"github.com/theory-cloud/AppTheory/apperr"
	"github.com/theory-cloud/AppTheory/canonical"
	"github.com/theory-cloud/AppTheory/config"
	"github.com/theory-cloud/AppTheory/hooks"
	"github.com/theory-cloud/AppTheory/kvstore"
	"github.com/theory-cloud/AppTheory/observability"
	"github.com/theory-cloud/AppTheory/pipeline"
	"github.com/theory-cloud/AppTheory/ratelimit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	providers, err := observability.NewPrometheusProviders()
	if err != nil {
		log.Fatalf("apptheoryd: failed to build observability providers: %v", err)
	}
	defer providers.Shutdown()

	sink, err := observability.New("apptheoryd", providers.Meter, providers.Tracer, logger)
	if err != nil {
		log.Fatalf("apptheoryd: failed to build observability sink: %v", err)
	}
	observability.SetDefault(sink)

	store := kvstore.NewMemStore()
	var limiter ratelimit.Limiter = &ratelimit.FixedWindow{Store: store, Duration: time.Minute, Limit: 60, FailOpen: true}
	corsConfig := pipeline.CORSConfig{AllowedOrigins: nil}

	if path := os.Getenv("APPTHEORYD_CONFIG"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("apptheoryd: failed to open config %s: %v", path, err)
		}
		cfg, err := config.Load(f)
		f.Close()
		if err != nil {
			log.Fatalf("apptheoryd: failed to parse config %s: %v", path, err)
		}
		corsConfig = cfg.CORSConfig()
		if configured, err := cfg.NewLimiter(store, true); err != nil {
			log.Fatalf("apptheoryd: invalid rate_limit config: %v", err)
		} else if configured != nil {
			limiter = configured
		}
	}

	app := apptheory.New(
		apptheory.WithTier(pipeline.TierP2),
		apptheory.WithObservability(sink),
		apptheory.WithPolicyHook(rateLimitPolicy(limiter)),
		apptheory.WithCORS(corsConfig),
	)

	app.GET("/healthz", func(ctx *apptheory.Context) (*canonical.Response, error) {
		return apptheory.Text(200, "ok"), nil
	})
	app.GET("/ping", func(ctx *apptheory.Context) (*canonical.Response, error) {
		return apptheory.JSON(200, map[string]string{"request_id": ctx.Req.RequestID})
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", providers.Handler)
	mux.Handle("/", httpAdapter(app))

	addr := os.Getenv("APPTHEORYD_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("apptheoryd listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("apptheoryd: serve failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("apptheoryd: graceful shutdown failed", "error", err)
	}
}

// rateLimitPolicy adapts a ratelimit.Limiter into the P2 policy hook shape,
// keyed by the request's X-Forwarded-For header ("anonymous" when absent) —
// a stand-in identity for a demo binary that has no real auth wired in.
func rateLimitPolicy(limiter ratelimit.Limiter) func(ctx *apptheory.Context) (*hooks.PolicyDecision, error) {
	return func(ctx *apptheory.Context) (*hooks.PolicyDecision, error) {
		key := ratelimit.Key{Identifier: ctx.Req.Header("x-forwarded-for"), Resource: ctx.Req.Path, Operation: ctx.Req.Method}
		if key.Identifier == "" {
			key.Identifier = "anonymous"
		}
		decision, err := limiter.CheckAndIncrement(ctx.StdContext(), key, ctx.Now())
		if err != nil {
			return nil, apperr.New(apperr.Internal, "rate limiter unavailable: "+err.Error())
		}
		if !decision.Allowed {
			return &hooks.PolicyDecision{Code: apperr.RateLimited}, nil
		}
		return nil, nil
	}
}

// httpAdapter bridges net/http directly to the canonical request/response
// shape, bypassing the Lambda-event adapters in canonical (those round-trip
// JSON event payloads; a plain HTTP listener already has a parsed request).
func httpAdapter(app *apptheory.App) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &canonical.Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: map[string][]string{},
			Query:   map[string][]string{},
			Cookies: map[string]string{},
		}
		for k, vs := range r.Header {
			req.Headers[strings.ToLower(k)] = vs
		}
		for k, vs := range r.URL.Query() {
			req.Query[k] = vs
		}
		for _, c := range r.Cookies() {
			req.Cookies[c.Name] = c.Value
		}
		if r.Body != nil {
			body, err := io.ReadAll(r.Body)
			if err == nil {
				req.Body = body
			}
		}

		resp := app.Serve(req)

		for _, k := range resp.SortedHeaderKeys() {
			for _, v := range resp.Headers[k] {
				w.Header().Add(k, v)
			}
		}
		for name, value := range resp.Cookies {
			http.SetCookie(w, &http.Cookie{Name: name, Value: value})
		}
		w.WriteHeader(resp.Status)
		if resp.Stream != nil {
			for {
				chunk, ok, err := resp.Stream.Next()
				if len(chunk) > 0 {
					w.Write(chunk)
				}
				if err != nil || !ok {
					break
				}
			}
			return
		}
		w.Write(resp.Body)
	})
}
