package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mediacrush/mediacrush_sdk_go/pkg/crushsdk"
	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush"
	"github.com/mediacrush/mediacrush_sdk_go/pkg/mediacrush/mock"
)

type failConfig struct {
	rate float64
	code int
}

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	seed := flag.String("seed", "", "path to JSON seed for the mock store")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	uploadLimit := flag.Int("upload-limit", 30, "uploads allowed per IP and window (0 disables)")
	uploadWindow := flag.Duration("upload-window", time.Minute, "rate limit window for uploads")
	embedErrors := flag.Bool("embed-errors", false, "report upload failures as 200 with an error member")
	instant := flag.Bool("instant", false, "finish processing uploads immediately")
	processDelay := flag.Duration("process-delay", 3*time.Second, "time before an upload is marked done (ignored with -instant)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		logger.Fatal("parse fail flag", zap.Error(err))
	}

	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	var mockOpts []mock.Option
	mockOpts = append(mockOpts, mock.WithPublicURL("http://"+host))
	if *instant {
		mockOpts = append(mockOpts, mock.WithInstantProcessing())
	}
	store := mock.New(mockOpts...)

	if *seed != "" {
		entries, err := mock.LoadSeed(*seed)
		if err != nil {
			logger.Fatal("load seed", zap.Error(err))
		}
		hashes, err := store.Seed(entries)
		if err != nil {
			logger.Fatal("apply seed", zap.Error(err))
		}
		logger.Info("seeded mock store", zap.Strings("hashes", hashes))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*instant && *processDelay > 0 {
		go completeProcessing(ctx, store, *processDelay, logger)
	}

	server := &http.Server{
		Addr: *addr,
		Handler: newRouter(store, serverOptions{
			latency:      *latency,
			fail:         failCfg,
			uploadLimit:  *uploadLimit,
			uploadWindow: *uploadWindow,
			embedErrors:  *embedErrors,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("mediacrush-sandbox listening", zap.String("addr", *addr))
	fmt.Println()
	fmt.Printf("export %s=%s\n", crushsdk.EnvMode, crushsdk.ModeHTTP)
	fmt.Printf("export %s=http://%s/api/\n", mediacrush.EnvAPIURL, host)
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// completeProcessing marks processing uploads as done once they are older
// than delay, emulating the server-side conversion queue.
func completeProcessing(ctx context.Context, store *mock.Mock, delay time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(max(delay/2, 100*time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, hash := range store.Pending(delay) {
				if err := store.Complete(hash); err == nil {
					logger.Debug("processing finished", zap.String("hash", hash))
				}
			}
		}
	}
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			val, err := strconv.ParseFloat(strings.TrimSpace(keyVal[1]), 64)
			if err != nil {
				return failConfig{}, err
			}
			if val < 0 || val > 1 {
				return failConfig{}, fmt.Errorf("fail rate %v outside [0,1]", val)
			}
			cfg.rate = val
		case "code":
			val, err := strconv.Atoi(strings.TrimSpace(keyVal[1]))
			if err != nil {
				return failConfig{}, err
			}
			cfg.code = val
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}
