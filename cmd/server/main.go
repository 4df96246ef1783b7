package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sternwerk/internal/config"
	"sternwerk/internal/database"
	"sternwerk/internal/handlers"
	"sternwerk/internal/repository"
	"sternwerk/internal/security"
	"sternwerk/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	wishRepo := repository.NewWishRepository(db)
	eventRepo := repository.NewEventRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	pairingRepo := repository.NewPairingRepository(db)
	debugLogRepo := repository.NewDebugLogRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if emailService.Enabled() {
		log.Printf("Email notifications enabled (from: %s)", cfg.SESFromEmail)
	} else {
		log.Println("Email notifications disabled (SES_FROM_EMAIL not set)")
	}

	debugLogService := service.NewDebugLogService(debugLogRepo, cfg.MaxDebugLogEntries)
	ledgerService := service.NewLedgerService(db, childRepo, ledgerRepo)
	authService := service.NewAuthService(userRepo, emailService, cfg.SessionDuration)
	childAuthService := service.NewChildAuthService(pairingRepo, childRepo, cfg.TokenSecret, cfg.TokenDuration, cfg.PairingCodeTTL)
	childService := service.NewChildService(childRepo, taskRepo, wishRepo)
	taskService := service.NewTaskService(db, taskRepo, childRepo, ledgerService, debugLogService)
	noteService := service.NewNoteService(db, noteRepo, childRepo, ledgerService, debugLogService)
	wishService := service.NewWishService(db, wishRepo, settingsRepo, userRepo, ledgerService, emailService, debugLogService)
	eventService := service.NewEventService(eventRepo)
	backupService := service.NewBackupService(db)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	middleware := handlers.NewMiddleware(authService, childAuthService, childService, csrf)
	authHandler := handlers.NewAuthHandler(authService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL)
	childHandler := handlers.NewChildHandler(childAuthService, childService, ledgerService, taskService, noteService, wishService, eventService)
	parentHandler := handlers.NewParentHandler(childService, childAuthService, ledgerService, taskService, noteService, wishService, eventService, settingsRepo, backupService)
	debugHandler := handlers.NewDebugHandler(debugLogService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)
	mux.HandleFunc("POST /child/pair", middleware.RateLimit(childHandler.Pair))

	// Child routes (device token auth)
	mux.HandleFunc("GET /child/profile", middleware.RequireChild(childHandler.Profile))
	mux.HandleFunc("PUT /child/theme", middleware.RequireChild(childHandler.SetTheme))
	mux.HandleFunc("GET /child/balance", middleware.RequireChild(childHandler.Balance))
	mux.HandleFunc("GET /child/ledger", middleware.RequireChild(childHandler.Ledger))
	mux.HandleFunc("GET /child/tasks", middleware.RequireChild(childHandler.ListTasks))
	mux.HandleFunc("POST /child/tasks", middleware.RequireChild(childHandler.CreateTask))
	mux.HandleFunc("POST /child/tasks/{id}/toggle", middleware.RequireChild(childHandler.ToggleTask))
	mux.HandleFunc("DELETE /child/tasks/{id}", middleware.RequireChild(childHandler.DeleteTask))
	mux.HandleFunc("GET /child/notes", middleware.RequireChild(childHandler.ListNotes))
	mux.HandleFunc("POST /child/notes", middleware.RequireChild(childHandler.CreateNote))
	mux.HandleFunc("POST /child/notes/{id}/toggle", middleware.RequireChild(childHandler.ToggleNote))
	mux.HandleFunc("GET /child/wishes", middleware.RequireChild(childHandler.ListWishes))
	mux.HandleFunc("POST /child/wishes", middleware.RequireChild(childHandler.CreateWish))
	mux.HandleFunc("POST /child/wishes/{id}/redeem", middleware.RequireChild(childHandler.RedeemWish))
	mux.HandleFunc("DELETE /child/wishes/{id}", middleware.RequireChild(childHandler.DeleteWish))
	mux.HandleFunc("GET /child/events", middleware.RequireChild(childHandler.ListEvents))
	mux.HandleFunc("POST /child/events", middleware.RequireChild(childHandler.CreateEvent))

	// Protected parent routes
	mux.HandleFunc("GET /parent/me", middleware.RequireParent(authHandler.Me))
	mux.HandleFunc("GET /parent/children", middleware.RequireParent(parentHandler.ListChildren))
	mux.HandleFunc("POST /parent/children", middleware.RequireParent(middleware.CSRFProtect(parentHandler.CreateChild)))
	mux.HandleFunc("GET /parent/children/{id}", middleware.RequireParent(parentHandler.GetChild))
	mux.HandleFunc("PUT /parent/children/{id}", middleware.RequireParent(middleware.CSRFProtect(parentHandler.UpdateChild)))
	mux.HandleFunc("DELETE /parent/children/{id}", middleware.RequireParent(middleware.CSRFProtect(parentHandler.DeleteChild)))
	mux.HandleFunc("GET /parent/children/{id}/stats", middleware.RequireParent(parentHandler.GetChildStats))
	mux.HandleFunc("GET /parent/children/{id}/ledger", middleware.RequireParent(parentHandler.GetChildLedger))
	mux.HandleFunc("GET /parent/children/{id}/tasks", middleware.RequireParent(parentHandler.ListChildTasks))
	mux.HandleFunc("GET /parent/children/{id}/notes", middleware.RequireParent(parentHandler.ListChildNotes))
	mux.HandleFunc("GET /parent/children/{id}/events", middleware.RequireParent(parentHandler.ListChildEvents))
	mux.HandleFunc("POST /parent/children/{id}/pairing-code", middleware.RequireParent(middleware.CSRFProtect(parentHandler.IssuePairingCode)))
	mux.HandleFunc("POST /parent/children/{id}/stars", middleware.RequireParent(middleware.CSRFProtect(parentHandler.AdjustStars)))

	// Task routes
	mux.HandleFunc("POST /parent/tasks", middleware.RequireParent(middleware.CSRFProtect(parentHandler.CreateTask)))
	mux.HandleFunc("PUT /parent/tasks/{id}", middleware.RequireParent(middleware.CSRFProtect(parentHandler.UpdateTask)))
	mux.HandleFunc("POST /parent/tasks/{id}/toggle", middleware.RequireParent(middleware.CSRFProtect(parentHandler.ToggleTask)))
	mux.HandleFunc("DELETE /parent/tasks/{id}", middleware.RequireParent(middleware.CSRFProtect(parentHandler.DeleteTask)))

	// Note routes
	mux.HandleFunc("PUT /parent/notes/{id}/note", middleware.RequireParent(middleware.CSRFProtect(parentHandler.SetNoteParentNote)))

	// Wish review routes
	mux.HandleFunc("GET /parent/wishes", middleware.RequireParent(parentHandler.ListWishQueue))
	mux.HandleFunc("POST /parent/wishes/{id}/approve", middleware.RequireParent(middleware.CSRFProtect(parentHandler.ApproveWish)))
	mux.HandleFunc("POST /parent/wishes/{id}/reject", middleware.RequireParent(middleware.CSRFProtect(parentHandler.RejectWish)))
	mux.HandleFunc("POST /parent/wishes/{id}/fulfill", middleware.RequireParent(middleware.CSRFProtect(parentHandler.FulfillWish)))

	// Event routes
	mux.HandleFunc("POST /parent/events", middleware.RequireParent(middleware.CSRFProtect(parentHandler.CreateEvent)))
	mux.HandleFunc("PUT /parent/events/{id}", middleware.RequireParent(middleware.CSRFProtect(parentHandler.UpdateEvent)))
	mux.HandleFunc("DELETE /parent/events/{id}", middleware.RequireParent(middleware.CSRFProtect(parentHandler.DeleteEvent)))

	// Settings and backup
	mux.HandleFunc("GET /parent/settings", middleware.RequireParent(parentHandler.GetSettings))
	mux.HandleFunc("PUT /parent/settings", middleware.RequireParent(middleware.CSRFProtect(parentHandler.UpdateSettings)))
	mux.HandleFunc("GET /parent/backup", middleware.RequireParent(parentHandler.ExportBackup))

	// Debug log routes
	mux.HandleFunc("GET /parent/debug/logs", middleware.RequireParent(debugHandler.ListLogs))
	mux.HandleFunc("GET /parent/debug/logs/stats", middleware.RequireParent(debugHandler.GetLogStats))
	mux.HandleFunc("DELETE /parent/debug/logs", middleware.RequireParent(middleware.CSRFProtect(debugHandler.ClearLogs)))
	mux.HandleFunc("GET /parent/debug/logs/export", middleware.RequireParent(debugHandler.ExportLogs))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background cleanup of expired sessions and pairing codes
	go cleanupExpired(authService, childAuthService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// cleanupExpired periodically removes expired sessions and pairing codes
func cleanupExpired(authService *service.AuthService, childAuthService *service.ChildAuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		// Cleanup parent sessions
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired parent sessions cleaned up")
		}

		// Cleanup unused pairing codes
		if err := childAuthService.CleanupExpiredCodes(); err != nil {
			log.Printf("Error cleaning up expired pairing codes: %v", err)
		} else {
			log.Println("Expired pairing codes cleaned up")
		}
	}
}
