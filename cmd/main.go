package main

import (
	"auth-session-server/config"
	_ "auth-session-server/docs"
	"auth-session-server/internal/handler"
	"auth-session-server/internal/repository"
	"auth-session-server/internal/security"
	"auth-session-server/internal/service"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title auth-session-server
// @version 1.0
// @description REST API аутентификации и управления сессиями устройств

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка загрузки ключей подписи токенов: %v", err)
	}

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	historyRepo := repository.NewLoginHistoryRepository(db)
	sessionStore := repository.NewSessionStore(redisClient)

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	authService := service.NewAuthenticationService(userRepo, deviceRepo, historyRepo, jwtService, sessionStore, cfg.Webhook.URL)
	userService := service.NewUserService(userRepo, deviceRepo, sessionStore, s3Service)
	deviceService := service.NewDeviceService(deviceRepo, sessionStore)

	authHandler := handler.NewAuthenticationHandler(authService, jwtService)
	userHandler := handler.NewUserHandler(userService)
	deviceHandler := handler.NewDeviceHandler(deviceService)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/health", healthHandler)

	setupAuthRoutes(router, authHandler, jwtService, sessionStore)
	setupUserRoutes(router, userHandler, deviceHandler, jwtService, sessionStore)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, jwtService *security.JWTService, sessionStore *repository.SessionStore) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshTokens)
		})
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService, sessionStore))
			r.Post("/logout", h.Logout)
			r.Post("/logout/all", h.LogoutAll)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, dh *handler.DeviceHandler, jwtService *security.JWTService, sessionStore *repository.SessionStore) {
	r.Route("/api/users/me", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService, sessionStore))

		r.Get("/", h.GetMe)
		r.Patch("/", h.UpdateMe)
		r.Put("/password", h.ChangePassword)
		r.Delete("/", h.DeleteAccount)
		r.Post("/avatar", h.UploadAvatar)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", dh.ListDevices)
			r.Delete("/{device_id}", dh.ForceLogoutDevice)
		})
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
