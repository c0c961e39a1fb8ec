package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"chaski/internal/shared/config"
	"chaski/internal/shared/logger"

	adminboot "chaski/internal/admin/bootstrap"
	deliveryboot "chaski/internal/delivery/bootstrap"
	matchingboot "chaski/internal/matching/bootstrap"
)

func main() {
	svc := flag.String("service", "delivery", "delivery|matching|admin|all")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() { <-quit; cancel() }()

	switch *svc {
	case "delivery":
		log := logger.NewLogger("delivery-service")
		deliveryboot.Run(ctx, cfg, log)

	case "matching":
		log := logger.NewLogger("matching-service")
		matchingboot.Run(ctx, cfg, log)

	case "admin":
		log := logger.NewLogger("admin-service")
		adminboot.Run(ctx, cfg, log)

	case "all":
		deliveryLog := logger.NewLogger("delivery-service")
		matchingLog := logger.NewLogger("matching-service")
		adminLog := logger.NewLogger("admin-service")

		go deliveryboot.Run(ctx, cfg, deliveryLog)
		go matchingboot.Run(ctx, cfg, matchingLog)
		go adminboot.Run(ctx, cfg, adminLog)

	default:
		log := logger.NewLogger("bootstrap")
		log.Fatal(logger.Entry{Action: "invalid_service", Message: *svc})
	}

	<-ctx.Done()
}
