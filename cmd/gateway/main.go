package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"

	"github.com/hirevox/hirevox/internal/ai"
	api "github.com/hirevox/hirevox/internal/api/http"
	"github.com/hirevox/hirevox/internal/audit"
	auth "github.com/hirevox/hirevox/internal/auth/middleware"
	"github.com/hirevox/hirevox/internal/config"
	"github.com/hirevox/hirevox/internal/db"
	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/live"
	"github.com/hirevox/hirevox/internal/rbac"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/session"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := hiring.NewSQLStore(dbh, cfg.DBDriver)
	events := audit.NewEventRepo(dbh)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	seedAdmin(ctx, dbh, cfg)

	// --- AI (optional; interview scoring and question generation) ---
	var analyzer *ai.Analyzer
	var generator *ai.Generator
	if cfg.AIAPIKey != "" {
		prompts, err := loadPrompts(cfg.PromptsPath)
		if err != nil {
			log.Fatalf("prompts: %v", err)
		}
		client := ai.NewClient(cfg.AIAPIKey).WithModel(cfg.AIModel).WithBaseURL(cfg.AIBaseURL)
		analyzer = ai.NewAnalyzer(client, prompts)
		generator = ai.NewGenerator(client, prompts)
	} else {
		log.Printf("AI_API_KEY not set: interview scoring and question generation disabled")
	}

	// --- Session plumbing ---
	mirror, err := session.NewFileMirror(cfg.MirrorPath)
	if err != nil {
		log.Fatalf("mirror: %v", err)
	}
	var responseAnalyzer scoring.ResponseAnalyzer
	if analyzer != nil {
		responseAnalyzer = analyzer
	}
	scorer := scoring.NewService(store, responseAnalyzer, events, cfg.PassThresholdPct, nil)
	hub := live.NewHub(store, scorer, mirror, cfg.ReadingSeconds, cfg.PauseSeconds, nil)
	go hub.Run(context.Background())

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", auth.RegisterHandler(authSvc, dbh))
	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRole(dbh))

		// Recruiter: job and round management
		pr.With(rbac.Require("job:create")).
			Post("/api/jobs", api.CreateJobHandler(store))
		pr.With(rbac.Require("job:view")).
			Get("/api/jobs", api.ListJobsHandler(store))
		pr.With(rbac.Require("job:view")).
			Get("/api/jobs/{jobID}", api.GetJobHandler(store))
		pr.With(rbac.RequireAny("job:delete_own", "job:delete")).
			Delete("/api/jobs/{jobID}", api.DeleteJobHandler(store))

		pr.With(rbac.Require("round:create")).
			Post("/api/jobs/{jobID}/rounds", api.CreateRoundHandler(store))
		pr.With(rbac.Require("round:view")).
			Get("/api/jobs/{jobID}/rounds", api.ListRoundsHandler(store))
		pr.With(rbac.Require("round:view")).
			Get("/api/rounds/{roundID}", api.GetRoundHandler(store))

		pr.With(rbac.Require("question:create")).
			Post("/api/rounds/{roundID}/questions", api.PutQuestionsHandler(store))
		pr.With(rbac.Require("round:view")).
			Get("/api/rounds/{roundID}/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require("question:generate")).
			Post("/api/rounds/{roundID}/questions/generate", api.GenerateQuestionsHandler(store, generator))

		// Candidate flow
		pr.With(rbac.Require("application:create")).
			Post("/api/applications", api.ApplyHandler(store))
		pr.With(rbac.Require("application:view-own")).
			Get("/api/applications/my", api.ListMyApplicationsHandler(store))
		pr.With(rbac.Require("report:view-own")).
			Get("/api/reports/my", api.GetMyReportHandler(store))

		// Users (admin provisioning)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/api/users/bulk", api.OnboardUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/api/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/api/users/change-password", api.ChangePasswordHandler(dbh))

		// Recruiter: results
		pr.With(rbac.Require("report:view-all")).
			Get("/api/reports", api.ListReportsHandler(store))
		pr.With(rbac.Require("audit:view")).
			Get("/api/audit/events", api.AuditEventsHandler(events))

		// Live assessment session
		pr.With(rbac.Require("session:run")).
			Get("/ws/session", live.Handler(hub))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func loadPrompts(path string) (*ai.Prompts, error) {
	if path == "" {
		return ai.DefaultPrompts()
	}
	return ai.LoadPrompts(path)
}

// seedAdmin upserts the bootstrap admin account when a bcrypt hash is
// configured.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) {
	if cfg.AdminPassHash == "" {
		return
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at)
		 VALUES ($1,$2,$3,'admin',$4)
		 ON CONFLICT (username) DO UPDATE SET password_hash=EXCLUDED.password_hash, role='admin'`,
		"u-"+cfg.AdminUser, cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix())
	if err != nil {
		log.Printf("admin seed failed: %v", err)
	}
}
