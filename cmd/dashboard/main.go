package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"coinboard/configs"
	"coinboard/internal/dashboard"
	"coinboard/internal/exchange"
	"coinboard/internal/market"
)

func main() {
	appConfig := configs.AppLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: appConfig.LogLevel,
	}))

	client := exchange.NewClient(appConfig.RESTBaseURL, appConfig.Symbol, logger)
	openStream := func() dashboard.Streamer {
		return exchange.NewKlineStream(appConfig.WSBaseURL, appConfig.Symbol, logger)
	}

	renderer := newLogRenderer(logger)
	controller := dashboard.NewController(client, openStream, renderer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting dashboard", "symbol", appConfig.Symbol)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		controller.RunPricePoll(ctx, appConfig.PricePollEvery)
	}()
	go func() {
		defer wg.Done()
		controller.RunStatsPoll(ctx, appConfig.StatsPollEvery)
	}()

	controller.SelectInterval(ctx, market.IntervalToday)

	<-ctx.Done()
	logger.Warn("Shutdown signal received, stopping...")

	controller.Shutdown()
	wg.Wait()
	logger.Info("Dashboard stopped")
}
