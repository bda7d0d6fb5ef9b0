package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cv-tracker-backend/config"
	"cv-tracker-backend/internal/delivery/http/middleware"
	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/security"
	"cv-tracker-backend/pkg/validation"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	CurriculumUC domain.CurriculumUsecase
	ListaUC      domain.ListaUsecase
	MembershipUC domain.MembershipUsecase
	HealthUC     domain.HealthUsecase
	Tokens       *security.TokenIssuer
	SecLogger    *security.SecurityLogger
	// FilesDir is served under /files when attachments are stored locally
	FilesDir string
	Config   *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Configure(v)
	}

	r := gin.New()
	// attachments travel in the body; keep multipart parts in memory up to this
	r.MaxMultipartMemory = int64(cfg.MaxAttachmentMB+1) << 20

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsRelease())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsRelease(), cfg.StoragePublicURL))
	r.Use(middleware.ErrorHandler())

	if deps.FilesDir != "" {
		r.Static("/files", deps.FilesDir)
	}

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window, deps.SecLogger)))

	NewHealthHandler(api, deps.HealthUC)
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC, deps.SecLogger))

	signInLimiter := middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window, deps.SecLogger))
	NewAuthHandler(api, protected, deps.AuthUC, deps.SecLogger, signInLimiter)
	// base64 inflates attachments by a third
	maxUpload := int64(cfg.MaxAttachmentMB)<<20*4/3 + 1<<20
	NewCurriculumHandler(protected, deps.CurriculumUC, deps.MembershipUC, maxUpload)
	NewListaHandler(protected, deps.ListaUC, deps.MembershipUC)

	return r
}
