package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	_ "tasktracker/docs"
	"tasktracker/internal/config"
	"tasktracker/internal/db"
	"tasktracker/internal/files"
	"tasktracker/internal/handlers"
	"tasktracker/internal/pdf"
	"tasktracker/internal/realtime"
	"tasktracker/internal/repositories"
	"tasktracker/internal/routes"
	"tasktracker/internal/services"
)

// Run wires the whole application together and starts the HTTP server.
func Run() {
	cfg := config.LoadConfig()

	conn, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("[app][db] open: %v", err)
	}
	if err := conn.Ping(); err != nil {
		log.Fatalf("[app][db] ping: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("[app][db] migrate: %v", err)
	}

	userRepo := repositories.NewUserRepository(conn)
	taskRepo := repositories.NewTaskRepository(conn)
	teamRepo := repositories.NewTeamRepository(conn)
	commentRepo := repositories.NewCommentRepository(conn)
	attachmentRepo := repositories.NewAttachmentRepository(conn)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry)

	var sink realtime.Sink
	if cfg.Telegram.Enabled {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, userRepo)
		if err != nil {
			log.Printf("[app][telegram] disabled: %v", err)
		} else {
			sink = tg
		}
	}
	notifier := realtime.NewRouter(registry, hub, sink)

	blobStore, err := files.NewStore(cfg.Files.RootDir)
	if err != nil {
		log.Fatalf("[app][files] %v", err)
	}

	var emailSvc services.EmailService
	if cfg.Email.Enabled {
		emailSvc = services.NewEmailService(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPUser, cfg.Email.SMTPPassword, cfg.Email.FromEmail,
		)
	}

	authSvc := services.NewAuthService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	userSvc := services.NewUserService(userRepo, authSvc, emailSvc)
	taskSvc := services.NewTaskService(taskRepo, userRepo, teamRepo, commentRepo, attachmentRepo, notifier)
	teamSvc := services.NewTeamService(teamRepo, userRepo, taskRepo, notifier)
	collabSvc := services.NewCollaborationService(taskRepo, userRepo, teamRepo, commentRepo, attachmentRepo, blobStore, notifier)
	reportSvc := services.NewReportService(teamRepo, userRepo, taskRepo, pdf.NewReportGenerator())

	r := gin.Default()
	r.Use(corsMiddleware())
	r.MaxMultipartMemory = cfg.Files.MaxUploadBytes

	routes.Register(r, routes.Handlers{
		Auth:    handlers.NewAuthHandler(userSvc, authSvc),
		Users:   handlers.NewUserHandler(userSvc),
		Tasks:   handlers.NewTaskHandler(taskSvc),
		Teams:   handlers.NewTeamHandler(teamSvc),
		Collab:  handlers.NewCollaborationHandler(collabSvc, cfg.Files.MaxUploadBytes),
		Reports: handlers.NewReportHandler(reportSvc),
		Hub:     hub,
	}, []byte(cfg.Auth.JWTSecret))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[app] listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("[app] server: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
