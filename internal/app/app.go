package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/announcement"
	"github.com/notashwinii/kucms-backend/internal/assignment"
	"github.com/notashwinii/kucms-backend/internal/attendance"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/config"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/db"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/grade"
	"github.com/notashwinii/kucms-backend/internal/health"
	"github.com/notashwinii/kucms-backend/internal/httputil"
	"github.com/notashwinii/kucms-backend/internal/kafka"
	"github.com/notashwinii/kucms-backend/internal/logger"
	"github.com/notashwinii/kucms-backend/internal/messaging"
	"github.com/notashwinii/kucms-backend/internal/metrics"
	"github.com/notashwinii/kucms-backend/internal/middleware"
	"github.com/notashwinii/kucms-backend/internal/note"
	"github.com/notashwinii/kucms-backend/internal/storage"
	"github.com/notashwinii/kucms-backend/internal/student"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type App struct {
	config       *config.Config
	router       chi.Router
	server       *http.Server
	logger       *slog.Logger
	natsProducer *messaging.Producer
	auditLog     *kafka.Producer
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	database := db.New(cfg.Database)

	// Parents before children; foreign keys require it.
	ctx := context.Background()
	if err := db.RunMigrations(ctx, database,
		(*user.User)(nil),
		(*auth.RefreshToken)(nil),
		(*academic.School)(nil),
		(*academic.Department)(nil),
		(*academic.Program)(nil),
		(*academic.Class)(nil),
		(*faculty.Faculty)(nil),
		(*student.Student)(nil),
		(*course.Course)(nil),
		(*assignment.Assignment)(nil),
		(*assignment.Comment)(nil),
		(*attendance.Attendance)(nil),
		(*grade.Grade)(nil),
		(*note.Note)(nil),
		(*announcement.Announcement)(nil),
		(*announcement.Comment)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Uploaded attachments are served straight off disk.
	files, err := storage.New(cfg.Media.Root, cfg.Media.BaseURL)
	if err != nil {
		log.Fatal("failed to initialize media storage:", err)
	}
	app.router.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(files.Root()))))

	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		slogLogger.Warn("failed to initialize metrics", "error", err)
		m = nil
	}

	// Kafka carries the admin audit trail; NATS carries course activity
	// events. Both are optional at startup.
	app.auditLog, err = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize Kafka producer", "error", err)
		app.auditLog = nil
	}
	app.natsProducer, err = messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS producer", "error", err)
		app.natsProducer = nil
	}
	var audit student.AuditPublisher
	if app.auditLog != nil {
		audit = app.auditLog
	}
	var activity assignment.ActivityPublisher
	if app.natsProducer != nil {
		activity = app.natsProducer
	}

	// Repositories
	userRepo := user.NewRepository(database)
	academicRepo := academic.NewRepository(database)
	facultyRepo := faculty.NewRepository(database)
	studentRepo := student.NewRepository(database)
	courseRepo := course.NewRepository(database)
	assignmentRepo := assignment.NewRepository(database)
	attendanceRepo := attendance.NewRepository(database)
	gradeRepo := grade.NewRepository(database)
	noteRepo := note.NewRepository(database)
	announcementRepo := announcement.NewRepository(database)

	resolver := access.NewResolver(facultyRepo, studentRepo)
	owners := course.NewAuthorizer(courseRepo, facultyRepo)

	// Auth
	authRepo := auth.NewRepository(database)
	authService := auth.NewService(authRepo, userRepo)
	authHandler := auth.NewHandler(authService, slogLogger)
	authHandler.RegisterRoutes(app.router)

	// Handlers
	userHandler := user.NewHandler(user.NewService(userRepo), slogLogger)
	academicHandler := academic.NewHandler(academicRepo, slogLogger)
	facultyHandler := faculty.NewHandler(facultyRepo, slogLogger)
	studentService := student.NewService(studentRepo, academicRepo, audit, slogLogger)
	studentHandler := student.NewHandler(studentService, slogLogger, m)
	courseHandler := course.NewHandler(courseRepo, resolver, studentRepo, slogLogger)
	assignmentService := assignment.NewService(assignmentRepo, owners, files, activity, slogLogger)
	assignmentHandler := assignment.NewHandler(assignmentService, resolver, slogLogger, m)
	attendanceService := attendance.NewService(attendanceRepo, owners, slogLogger)
	attendanceHandler := attendance.NewHandler(attendanceService, resolver, slogLogger, m)
	gradeService := grade.NewService(gradeRepo, owners, slogLogger)
	gradeHandler := grade.NewHandler(gradeService, resolver, slogLogger, m)
	noteHandler := note.NewHandler(noteRepo, owners, files, resolver, slogLogger, m)
	announcementService := announcement.NewService(announcementRepo, owners, activity, slogLogger)
	announcementHandler := announcement.NewHandler(announcementService, resolver, slogLogger, m)

	// Everything below requires a valid access token.
	app.router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(slogLogger))

		academicHandler.RegisterReadRoutes(r)
		facultyHandler.RegisterRoutes(r)
		studentHandler.RegisterRoutes(r)
		courseHandler.RegisterRoutes(r)
		assignmentHandler.RegisterRoutes(r)
		attendanceHandler.RegisterRoutes(r)
		gradeHandler.RegisterRoutes(r)
		noteHandler.RegisterRoutes(r)
		announcementHandler.RegisterRoutes(r)

		r.Group(func(admin chi.Router) {
			admin.Use(auth.RequireAdmin)

			userHandler.RegisterRoutes(admin)
			academicHandler.RegisterAdminRoutes(admin)
			facultyHandler.RegisterAdminRoutes(admin)
			studentHandler.RegisterAdminRoutes(admin)
			courseHandler.RegisterAdminRoutes(admin)
		})
	})

	app.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondWithError(w, http.StatusNotFound, "not found")
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	if a.natsProducer != nil {
		a.natsProducer.Close()
	}
	if a.auditLog != nil {
		a.auditLog.Close()
	}
	return a.server.Shutdown(ctx)
}
