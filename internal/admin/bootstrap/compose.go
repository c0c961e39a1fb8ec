package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chaski/internal/admin/adapter/in/transport"
	"chaski/internal/admin/adapter/out/matchingclient"
	"chaski/internal/admin/adapter/out/repo"
	"chaski/internal/admin/application/usecase"
	matchingrepo "chaski/internal/matching/adapter/out/repo"
	matchingusecase "chaski/internal/matching/application/usecase"
	"chaski/internal/shared/auth"
	"chaski/internal/shared/config"
	db_conn "chaski/internal/shared/db"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
)

// Run запускает Admin Service: управление пользователями, статистика
// платформы и ручной запуск matching job.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "admin_service_starting", Message: "initializing admin service"})

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

	jwtService := auth.NewJWTService(cfg.JWT)

	// Репозитории и внешние клиенты
	userRepo := repo.NewUserAdminPgRepository(dbPool)
	statsReader := repo.NewStatsPgReader(dbPool)
	matchingTrigger := matchingclient.NewClient(cfg.Services.MatchingServiceURL, jwtService, log)
	routeRepo := matchingrepo.NewRoutePgRepository(dbPool)
	courierRepo := user.NewPgRepository(dbPool)

	// Use cases
	createUserUC := usecase.NewCreateUserService(userRepo, log)
	loginUC := usecase.NewLoginService(userRepo, jwtService, log)
	listUsersUC := usecase.NewListUsersService(userRepo)
	updateRoleUC := usecase.NewUpdateRoleService(userRepo, log)
	toggleActiveUC := usecase.NewToggleActiveService(userRepo, log)
	toggleVerificationUC := usecase.NewToggleVerificationService(userRepo, log)
	statsUC := usecase.NewPlatformStatsService(statsReader)
	listPackagesUC := usecase.NewListPackagesService(statsReader)
	listRoutesUC := usecase.NewListRoutesService(statsReader)
	createRouteUC := matchingusecase.NewCreateRouteService(routeRepo, courierRepo, log)
	triggerMatchingUC := usecase.NewTriggerMatchingService(matchingTrigger)

	// HTTP сервер
	httpHandler := transport.NewHTTPHandler(
		createUserUC, loginUC, listUsersUC,
		updateRoleUC, toggleActiveUC, toggleVerificationUC,
		statsUC, listPackagesUC, listRoutesUC, createRouteUC, triggerMatchingUC,
		log,
	)

	mux := http.NewServeMux()
	httpHandler.RegisterRoutes(mux, transport.JWTMiddleware(jwtService, log))

	addr := fmt.Sprintf(":%d", cfg.Services.AdminServicePort)
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
	log.Info(logger.Entry{Action: "admin_service_stopping", Message: "shutting down admin service"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	log.Info(logger.Entry{Action: "admin_service_stopped", Message: "admin service stopped"})
}
