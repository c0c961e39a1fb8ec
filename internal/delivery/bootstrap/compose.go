package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chaski/internal/delivery/adapter/in/in_ws"
	"chaski/internal/delivery/adapter/in/transport"
	"chaski/internal/delivery/adapter/out/out_amqp"
	"chaski/internal/delivery/adapter/out/out_ws"
	"chaski/internal/delivery/adapter/out/repo"
	"chaski/internal/delivery/application/usecase"
	"chaski/internal/shared/auth"
	"chaski/internal/shared/config"
	db_conn "chaski/internal/shared/db"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/mq"
	"chaski/internal/shared/user"
)

// Run запускает Delivery Service: REST API посылок и ставок,
// WebSocket чат и публикацию событий в RabbitMQ.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "delivery_service_starting", Message: "initializing delivery service"})

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
	pkgRepo := repo.NewPackagePgRepository(dbPool, log)
	bidLedger := repo.NewBidPgLedger(dbPool, log)
	msgRepo := repo.NewMessagePgRepository(dbPool)
	userRepo := user.NewPgRepository(dbPool)

	// Исходящие адаптеры
	eventPublisher := out_amqp.NewPackageEventPublisher(mqConn, log)

	// Use cases. Чатовый notifier пишет в hub WS handler'а, поэтому
	// sendMessage собирается ниже, после создания handler'а.
	createPackageUC := usecase.NewCreatePackageService(pkgRepo, log)
	updatePackageUC := usecase.NewUpdatePackageService(pkgRepo, log)
	publishPackageUC := usecase.NewPublishPackageService(pkgRepo, eventPublisher, log)
	getPackageUC := usecase.NewGetPackageService(pkgRepo)
	listPackagesUC := usecase.NewListPackagesService(pkgRepo)
	advanceStatusUC := usecase.NewAdvanceStatusService(pkgRepo, eventPublisher, log)
	cancelPackageUC := usecase.NewCancelPackageService(pkgRepo, eventPublisher, log)
	acceptPackageUC := usecase.NewAcceptPackageService(pkgRepo, userRepo, eventPublisher, log)
	submitBidUC := usecase.NewSubmitBidService(pkgRepo, bidLedger, userRepo, eventPublisher, log)
	selectBidUC := usecase.NewSelectBidService(pkgRepo, bidLedger, eventPublisher, log)
	listBidsUC := usecase.NewListBidsService(pkgRepo, bidLedger)

	// WebSocket: hub принадлежит chat handler'у, notifier пишет в него же
	chatWS := in_ws.NewChatWSHandler(jwtService, log)
	chatNotifier := out_ws.NewWsChatNotifier(chatWS.GetHub(), log)
	sendMessageUC := usecase.NewSendMessageService(pkgRepo, msgRepo, chatNotifier, log)
	chatWS.SetSendMessageUseCase(sendMessageUC)
	listMessagesUC := usecase.NewListMessagesService(pkgRepo, msgRepo)

	go chatWS.GetHub().Run(ctx)

	// HTTP сервер
	httpHandler := transport.NewHTTPHandler(
		createPackageUC, updatePackageUC, publishPackageUC, getPackageUC, listPackagesUC,
		advanceStatusUC, cancelPackageUC, acceptPackageUC,
		submitBidUC, selectBidUC, listBidsUC,
		sendMessageUC, listMessagesUC,
		log,
	)

	mux := http.NewServeMux()
	authMiddleware := transport.JWTMiddleware(jwtService, log)
	httpHandler.RegisterRoutes(mux, authMiddleware)
	mux.HandleFunc("/ws", chatWS.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Services.DeliveryServicePort)
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
	log.Info(logger.Entry{Action: "delivery_service_stopping", Message: "shutting down delivery service"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	log.Info(logger.Entry{Action: "delivery_service_stopped", Message: "delivery service stopped"})
}
