package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/devfolio/portfolio-backend/config"
	httpapi "github.com/devfolio/portfolio-backend/internal/api/http"
	"github.com/devfolio/portfolio-backend/internal/auth"
	"github.com/devfolio/portfolio-backend/internal/contacts"
	"github.com/devfolio/portfolio-backend/internal/images"
	"github.com/devfolio/portfolio-backend/internal/projects"
)

const serviceName = "portfolio-backend"

// contactRateLimit allows a slow trickle of public contact submissions.
const (
	contactRatePerSecond = 1
	contactBurst         = 5
)

type RouterDeps struct {
	Cfg   *config.Config
	DB    *pgxpool.Pool
	Cache *redis.Client
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	healthHandler := httpapi.NewHealthHandler(serviceName, dep.Cfg.App.Version, dep.DB, dep.Cache)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")

	jwtService := auth.NewJWTService([]byte(dep.Cfg.Auth.Secret), dep.Cfg.Auth.Expire)
	userRepo := auth.NewRepo(dep.DB)
	authHandler := auth.NewHandler(userRepo, jwtService, dep.Cfg.IsProduction())
	authHandler.Register(api.Group("/auth"))

	requireAuth := auth.RequireAuth(jwtService)
	exposeErrs := !dep.Cfg.IsProduction()

	var cache projects.Cache
	if dep.Cache != nil {
		cache = projects.NewRedisCache(dep.Cache, dep.Cfg.Cache.TTL)
	}

	projectRepo := projects.NewRepo(dep.DB)
	projectService := projects.NewService(projectRepo, cache, images.NewTranscoder())
	projectHandler := projects.NewHandler(projectService, dep.Cfg.Upload.MaxBytes, exposeErrs)
	projects.Register(api.Group("/projects"), projectHandler, requireAuth)

	contactRepo := contacts.NewRepo(dep.DB)
	contactHandler := contacts.NewHandler(contactRepo, exposeErrs)
	contacts.Register(api.Group("/contact"), contactHandler, requireAuth, RateLimit(contactRatePerSecond, contactBurst))

	return r
}
