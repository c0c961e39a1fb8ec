package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chaski/internal/matching/adapter/in/transport"
	"chaski/internal/matching/adapter/out/notify"
	"chaski/internal/matching/adapter/out/out_amqp"
	"chaski/internal/matching/adapter/out/repo"
	"chaski/internal/matching/application/ports/in"
	"chaski/internal/matching/application/usecase"
	"chaski/internal/notification/adapter/in/in_amqp"
	notiftransport "chaski/internal/notification/adapter/in/transport"
	"chaski/internal/notification/adapter/out/out_ws"
	notifrepo "chaski/internal/notification/adapter/out/repo"
	notifusecase "chaski/internal/notification/application/usecase"
	"chaski/internal/shared/auth"
	"chaski/internal/shared/config"
	db_conn "chaski/internal/shared/db"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/mq"
	"chaski/internal/shared/user"
	"chaski/internal/shared/ws"
)

// Run запускает Matching Service: маршруты курьеров, периодический
// matching job, deadline sweeper и сервис уведомлений (история,
// WebSocket push, consumer событий посылок).
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "matching_service_starting", Message: "initializing matching service"})

	// Инфраструктура: PostgreSQL, RabbitMQ, JWT
	dbPool, err := db_conn.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer db_conn.Close(dbPool, log)

	if err := db_conn.Migrate(ctx, dbPool); err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_migration_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "rabbitmq_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(ctx, mqConn, log); err != nil {
		log.Fatal(logger.Entry{
			Action:  "rabbitmq_topology_setup_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// Репозитории
	routeRepo := repo.NewRoutePgRepository(dbPool)
	pkgFinder := repo.NewPackageFinderPg(dbPool)
	userRepo := user.NewPgRepository(dbPool)
	notificationRepo := notifrepo.NewNotificationPgRepository(dbPool)

	// WebSocket hub для push-уведомлений
	hub := ws.NewHub(func(token string) (userID, role string, err error) {
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID, claims.Role, nil
	}, log)
	go hub.Run(ctx)

	// Сервис уведомлений
	pushNotifier := out_ws.NewWsPushNotifier(hub)
	dispatchUC := notifusecase.NewDispatchService(notificationRepo, pushNotifier, log)
	listNotificationsUC := notifusecase.NewListNotificationsService(notificationRepo)
	unreadCountUC := notifusecase.NewUnreadCountService(notificationRepo)
	markReadUC := notifusecase.NewMarkReadService(notificationRepo)
	markAllReadUC := notifusecase.NewMarkAllReadService(notificationRepo)

	// Consumer событий посылок из delivery service
	eventsConsumer := in_amqp.NewPackageEventsConsumer(mqConn, dispatchUC, log)
	if err := eventsConsumer.Start(ctx); err != nil {
		log.Fatal(logger.Entry{
			Action:  "package_events_consumer_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	// Use cases матчинга
	matchNotifier := notify.NewDispatcherNotifier(dispatchUC)
	matchPublisher := out_amqp.NewMatchEventPublisher(mqConn, log)

	createRouteUC := usecase.NewCreateRouteService(routeRepo, userRepo, log)
	listRoutesUC := usecase.NewListRoutesService(routeRepo)
	deactivateRouteUC := usecase.NewDeactivateRouteService(routeRepo, log)
	runMatchingJobUC := usecase.NewRunMatchingJobService(routeRepo, pkgFinder, matchNotifier, matchPublisher, log)
	sweepDeadlinesUC := usecase.NewSweepDeadlinesService(
		pkgFinder,
		matchNotifier,
		time.Duration(cfg.Matching.ExtensionHours)*time.Hour,
		cfg.Matching.MaxDeadlineExtensions,
		log,
	)

	// Периодические задания
	go runMatchingLoop(ctx, cfg.Matching, runMatchingJobUC, log)
	go runSweepLoop(ctx, cfg.Matching, sweepDeadlinesUC, log)

	// HTTP сервер: маршруты матчинга + уведомления + WS push
	httpHandler := transport.NewHTTPHandler(
		createRouteUC, listRoutesUC, deactivateRouteUC,
		runMatchingJobUC, sweepDeadlinesUC,
		log,
	)
	notifHandler := notiftransport.NewHTTPHandler(
		listNotificationsUC, unreadCountUC, markReadUC, markAllReadUC,
		log,
	)

	mux := http.NewServeMux()
	httpHandler.RegisterRoutes(mux, transport.JWTMiddleware(jwtService, log))
	notifHandler.RegisterRoutes(mux, notiftransport.JWTMiddleware(jwtService, log))
	mux.HandleFunc("/ws", hub.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Services.MatchingServicePort)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(logger.Entry{
			Action:  "http_server_starting",
			Message: fmt.Sprintf("listening on %s", addr),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(logger.Entry{
				Action:  "http_server_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	<-ctx.Done()
	log.Info(logger.Entry{Action: "matching_service_stopping", Message: "shutting down matching service"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	log.Info(logger.Entry{Action: "matching_service_stopped", Message: "matching service stopped"})
}

// runMatchingLoop периодически запускает matching job
func runMatchingLoop(ctx context.Context, cfg config.MatchingConfig, uc in.RunMatchingJobUseCase, log *logger.Logger) {
	interval := time.Duration(cfg.ScheduleMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lookback := time.Duration(cfg.LookbackHours) * time.Hour

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := uc.Execute(ctx, in.RunMatchingJobInput{Lookback: lookback})
			if err != nil {
				log.Error(logger.Entry{
					Action:  "scheduled_matching_job_failed",
					Message: err.Error(),
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
				continue
			}
			log.Info(logger.Entry{
				Action:  "scheduled_matching_job_done",
				Message: fmt.Sprintf("matches=%d notified=%d", result.MatchesFound, result.NotificationsSent),
			})
		}
	}
}

// runSweepLoop периодически обрабатывает просроченные дедлайны ставок
func runSweepLoop(ctx context.Context, cfg config.MatchingConfig, uc in.SweepDeadlinesUseCase, log *logger.Logger) {
	interval := time.Duration(cfg.SweepMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := uc.Execute(ctx)
			if err != nil {
				log.Error(logger.Entry{
					Action:  "deadline_sweep_failed",
					Message: err.Error(),
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
				continue
			}
			log.Info(logger.Entry{
				Action:  "deadline_sweep_done",
				Message: fmt.Sprintf("extended=%d failed=%d notified=%d", result.Extended, result.Failed, result.Notified),
			})
		}
	}
}
