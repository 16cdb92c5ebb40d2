package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/config"
	"github.com/jkemta/soutenance-api/database"
	"github.com/jkemta/soutenance-api/handlers"
	auth_handlers "github.com/jkemta/soutenance-api/handlers/auth"
	departement_handlers "github.com/jkemta/soutenance-api/handlers/departements"
	document_handlers "github.com/jkemta/soutenance-api/handlers/documents"
	dossier_handlers "github.com/jkemta/soutenance-api/handlers/dossiers"
	jury_handlers "github.com/jkemta/soutenance-api/handlers/jurys"
	notification_handlers "github.com/jkemta/soutenance-api/handlers/notifications"
	salle_handlers "github.com/jkemta/soutenance-api/handlers/salles"
	session_handlers "github.com/jkemta/soutenance-api/handlers/sessions"
	soutenance_handlers "github.com/jkemta/soutenance-api/handlers/soutenances"
	user_handlers "github.com/jkemta/soutenance-api/handlers/users"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/services/storage"
	"github.com/jkemta/soutenance-api/utils/auth"
	"github.com/jkemta/soutenance-api/utils/cache"
	"github.com/jkemta/soutenance-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store *database.GORMStore) {
	env, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration")
	}

	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "soutenance-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	})

	db := store.DB()

	// Redis backs the brute force protection on login; without it the
	// endpoint still works, just unprotected.
	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// S3-compatible object storage for dossier documents
	var spacesClient *storage.SpacesClient
	if env.SPACES_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_KEY,
			SecretKey: env.SPACES_SECRET,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Document uploads will fail.", err)
		}
	} else {
		log.Println("Warning: SPACES_KEY not set, document uploads will fail.")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	notificationService := services.NewNotificationService(db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, spacesClient)
	userHandler := user_handlers.NewHandler(db)
	departementHandler := departement_handlers.NewHandler(db)
	sessionHandler := session_handlers.NewHandler(db)
	salleHandler := salle_handlers.NewHandler(db)
	dossierHandler := dossier_handlers.NewHandler(db, notificationService, spacesClient)
	documentHandler := document_handlers.NewHandler(db, spacesClient)
	juryHandler := jury_handlers.NewHandler(db, notificationService)
	soutenanceHandler := soutenance_handlers.NewHandler(db, notificationService)
	notificationHandler := notification_handlers.NewHandler(notificationService)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	requireAdmin := authMiddleware.RequireAdmin()
	requireStaff := authMiddleware.RequireRole(model.RoleAdmin, model.RoleEnseignant)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)
	profileGroup.Post("/photo", authHandler.UploadPhoto)

	// User administration (admin only)
	users := api.Group("/users", requireAdmin)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Post("/:id/set-password", userHandler.SetPassword)
	users.Delete("/:id", userHandler.Delete)

	// Departments
	departements := api.Group("/departements", authMiddleware.Required())
	departements.Get("/", departementHandler.List)
	departements.Get("/:id", departementHandler.Get)
	departements.Post("/", requireAdmin, departementHandler.Create)
	departements.Put("/:id", requireAdmin, departementHandler.Update)
	departements.Delete("/:id", requireAdmin, departementHandler.Delete)

	// Defense sessions
	sessions := api.Group("/sessions", authMiddleware.Required())
	sessions.Get("/", sessionHandler.List)
	sessions.Get("/active", sessionHandler.Active)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Post("/", requireAdmin, sessionHandler.Create)
	sessions.Put("/:id", requireAdmin, sessionHandler.Update)
	sessions.Post("/:id/fermer", requireAdmin, sessionHandler.Close)
	sessions.Delete("/:id", requireAdmin, sessionHandler.Delete)

	// Rooms
	salles := api.Group("/salles", authMiddleware.Required())
	salles.Get("/", salleHandler.List)
	salles.Get("/disponibles", salleHandler.Disponibles)
	salles.Get("/:id", salleHandler.Get)
	salles.Post("/", requireAdmin, salleHandler.Create)
	salles.Put("/:id", requireAdmin, salleHandler.Update)
	salles.Delete("/:id", requireAdmin, salleHandler.Delete)

	// Dossiers and their validation / deletion-request workflows
	dossiers := api.Group("/dossiers", authMiddleware.Required())
	dossiers.Post("/", dossierHandler.Create)
	dossiers.Get("/", dossierHandler.List)
	dossiers.Get("/mes-dossiers", dossierHandler.MesDossiers)
	dossiers.Get("/:id", dossierHandler.Get)
	dossiers.Put("/:id", dossierHandler.Update)
	dossiers.Post("/:id/valider", requireAdmin, dossierHandler.Valider)
	dossiers.Post("/:id/rejeter", requireAdmin, dossierHandler.Rejeter)
	dossiers.Post("/:id/demander-suppression", dossierHandler.DemanderSuppression)
	dossiers.Post("/:id/accepter-suppression", requireAdmin, dossierHandler.AccepterSuppression)
	dossiers.Post("/:id/rejeter-suppression", requireAdmin, dossierHandler.RejeterSuppression)

	// Dossier attachments
	dossiers.Post("/:id/documents", documentHandler.Upload)
	dossiers.Get("/:id/documents", documentHandler.List)

	// Dossier remarks
	dossiers.Post("/:id/commentaires", dossierHandler.CreateCommentaire)
	dossiers.Get("/:id/commentaires", dossierHandler.ListCommentaires)
	dossiers.Delete("/:id/commentaires/:commentId", dossierHandler.DeleteCommentaire)

	// Standalone document access
	documents := api.Group("/documents", authMiddleware.Required())
	documents.Get("/:id", documentHandler.Get)
	documents.Delete("/:id", documentHandler.Delete)

	// Juries
	jurys := api.Group("/jurys", authMiddleware.Required())
	jurys.Get("/", requireStaff, juryHandler.List)
	jurys.Get("/:id", requireStaff, juryHandler.Get)
	jurys.Post("/", requireAdmin, juryHandler.Create)
	jurys.Post("/:id/membres", requireAdmin, juryHandler.AddMembre)
	jurys.Delete("/:id/membres/:membreId", requireAdmin, juryHandler.RemoveMembre)
	jurys.Post("/:id/valider", requireAdmin, juryHandler.Valider)
	jurys.Post("/:id/activer", requireAdmin, juryHandler.Activer)
	jurys.Delete("/:id", requireAdmin, juryHandler.Delete)

	// Defenses
	soutenances := api.Group("/soutenances", authMiddleware.Required())
	soutenances.Get("/", soutenanceHandler.List)
	soutenances.Get("/calendrier", soutenanceHandler.Calendrier)
	soutenances.Get("/mes-soutenances", soutenanceHandler.MesSoutenances)
	soutenances.Get("/:id", soutenanceHandler.Get)
	soutenances.Post("/", requireAdmin, soutenanceHandler.Planifier)
	soutenances.Put("/:id", requireAdmin, soutenanceHandler.Replanifier)
	soutenances.Post("/:id/demarrer", requireAdmin, soutenanceHandler.Demarrer)
	soutenances.Post("/:id/terminer", requireAdmin, soutenanceHandler.Terminer)
	soutenances.Post("/:id/annuler", requireAdmin, soutenanceHandler.Annuler)

	// Gradings and the proces-verbal
	soutenances.Post("/:id/evaluations", soutenanceHandler.CreateEvaluation)
	soutenances.Get("/:id/evaluations", soutenanceHandler.ListEvaluations)
	soutenances.Get("/:id/proces-verbal", soutenanceHandler.GetProcesVerbal)

	// Notifications
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/non-lues", notificationHandler.UnreadCount)
	notifications.Post("/:id/marquer-lu", notificationHandler.MarquerLu)
	notifications.Post("/marquer-tout-lu", notificationHandler.MarquerToutLu)
	notifications.Delete("/:id", notificationHandler.Delete)
	notifications.Delete("/", notificationHandler.DeleteAll)
}
