package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/jobs"
	"anoa.com/communityforum/internal/middleware"
	"anoa.com/communityforum/internal/web"
	"anoa.com/communityforum/pkg/apperror"
	"anoa.com/communityforum/pkg/csrf"
	"anoa.com/communityforum/pkg/mailer"
	"anoa.com/communityforum/pkg/pwned"
	"anoa.com/communityforum/pkg/ratelimiter"
	"anoa.com/communityforum/pkg/response"
	"anoa.com/communityforum/pkg/session"
	formValidator "anoa.com/communityforum/pkg/validator"

	adminHttp "anoa.com/communityforum/internal/modules/admin/delivery/http"
	adminService "anoa.com/communityforum/internal/modules/admin/service"

	categoryHttp "anoa.com/communityforum/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/communityforum/internal/modules/category/repository"
	categoryService "anoa.com/communityforum/internal/modules/category/service"

	commentHttp "anoa.com/communityforum/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/communityforum/internal/modules/comment/repository"
	commentService "anoa.com/communityforum/internal/modules/comment/service"

	homeHttp "anoa.com/communityforum/internal/modules/home/delivery/http"
	homeService "anoa.com/communityforum/internal/modules/home/service"

	profileHttp "anoa.com/communityforum/internal/modules/profile/delivery/http"
	profileService "anoa.com/communityforum/internal/modules/profile/service"

	resetHttp "anoa.com/communityforum/internal/modules/resetpassword/delivery/http"
	resetRepo "anoa.com/communityforum/internal/modules/resetpassword/repository"
	resetService "anoa.com/communityforum/internal/modules/resetpassword/service"

	searchService "anoa.com/communityforum/internal/modules/search/service"

	statService "anoa.com/communityforum/internal/modules/stat/service"

	sujetHttp "anoa.com/communityforum/internal/modules/sujet/delivery/http"
	sujetRepo "anoa.com/communityforum/internal/modules/sujet/repository"
	sujetService "anoa.com/communityforum/internal/modules/sujet/service"

	userHttp "anoa.com/communityforum/internal/modules/user/delivery/http"
	userRepo "anoa.com/communityforum/internal/modules/user/repository"
	userService "anoa.com/communityforum/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the server is built from. Index, Redis
// and Pwned are optional.
type Dependencies struct {
	Users         userRepo.UserRepository
	Categories    categoryRepo.CategoryRepository
	Sujets        sujetRepo.SujetRepository
	Comments      commentRepo.CommentRepository
	ResetRequests resetRepo.ResetPasswordRequestRepository

	Redis  *redis.Client
	Index  searchService.SujetIndex
	Mailer mailer.Mailer
	Pwned  pwned.Checker
}

// RepositoriesFromDB fills the repositories of a Dependencies with the gorm ones.
func RepositoriesFromDB(db *gorm.DB) Dependencies {
	return Dependencies{
		Users:         userRepo.NewUserRepository(db),
		Categories:    categoryRepo.NewCategoryRepository(db),
		Sujets:        sujetRepo.NewSujetRepository(db),
		Comments:      commentRepo.NewCommentRepository(db),
		ResetRequests: resetRepo.NewResetPasswordRequestRepository(db),
	}
}

type Server struct {
	engine    *gin.Engine
	mu        sync.Mutex
	http      *http.Server
	scheduler *jobs.Scheduler
	log       zerolog.Logger
}

func NewServer(cfg *config.Config, deps Dependencies, log zerolog.Logger) (*Server, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := formValidator.Register(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	if deps.Mailer == nil {
		deps.Mailer = mailer.NewLogMailer(log)
	}

	guard := csrf.NewGuard(cfg.CSRFSecret)
	limiter := ratelimiter.New(deps.Redis)

	// Core services
	verifier := userService.NewEmailVerifier(deps.Mailer, cfg.MailerFrom, cfg.BaseURL, log)
	statSvc := statService.NewStatService(deps.Users, deps.Redis, cfg.MemberCountTTL, log)
	userSvc := userService.NewUserService(deps.Users, verifier, statSvc, log)

	categorySvc := categoryService.NewCategoryService(deps.Categories)
	sujetSvc := sujetService.NewSujetService(deps.Sujets, deps.Categories, deps.Index, log)
	commentSvc := commentService.NewCommentService(deps.Comments, deps.Sujets, deps.Users, limiter, cfg.RateLimitComment, log)

	resetSvc := resetService.NewResetPasswordService(deps.ResetRequests, deps.Users, deps.Mailer, deps.Pwned, resetService.Config{
		From:       cfg.MailerFrom,
		BaseURL:    cfg.BaseURL,
		SigningKey: cfg.ResetSigningKey,
		Lifetime:   cfg.ResetLifetime,
		Throttle:   cfg.ResetThrottle,
	}, log)

	adminSvc := adminService.NewAdminService(deps.Users, deps.Categories, deps.Sujets, deps.Comments, userSvc, statSvc, log)
	profileSvc := profileService.NewProfileService(userSvc, deps.Comments)
	homeSvc := homeService.NewHomeService(deps.Sujets, deps.Users)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(userSvc)
	authenticator := middleware.NewAuthenticator(userSvc)

	userHandler := userHttp.NewUserHandler(userSvc, authenticator)
	resetHandler := resetHttp.NewResetPasswordHandler(resetSvc)
	homeHandler := homeHttp.NewHomeHandler(homeSvc)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)
	sujetHandler := sujetHttp.NewSujetHandler(sujetSvc, categorySvc, commentSvc, guard)
	commentHandler := commentHttp.NewCommentHandler(commentSvc, sujetSvc, adminSvc, guard)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc, guard)
	adminHandler := adminHttp.NewAdminHandler(adminSvc, guard)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	if err := scheduler.Register(jobs.NewPurgeResetRequests(resetSvc, cfg.ResetPurgeSchedule, log)); err != nil {
		return nil, err
	}

	router := gin.New()
	router.HTMLRender = renderer

	setupCORS(router, cfg.AllowedOrigins)

	sessions := session.NewStore(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	router.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		sessions.Middleware(),
		authMiddleware.LoadUser(),
		middleware.Globals(statSvc),
	)

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, apperror.ErrNotFound)
	})

	getPost := []string{http.MethodGet, http.MethodPost}

	// Public routes
	router.GET("/", homeHandler.Index)
	router.GET("/footer", homeHandler.Footer)

	router.Match(getPost, "/register", userHandler.Register)
	router.GET("/register/confirmation", userHandler.RegisterConfirmation)
	router.GET("/verify/email", userHandler.VerifyEmail)

	router.GET("/login", userHandler.Login)
	router.POST("/login", authenticator.LoginCheck)
	router.GET("/logout", authenticator.Logout)

	reset := router.Group("/reset-password")
	{
		reset.Match(getPost, "/password", resetHandler.Request)
		reset.GET("/check-email", resetHandler.CheckEmail)
		reset.GET("/reset/:token", resetHandler.StoreToken)
		reset.Match(getPost, "/reset", resetHandler.Reset)
	}

	forum := router.Group("/forum")
	{
		forum.Match(getPost, "", sujetHandler.Index)
		forum.GET("/search", sujetHandler.Search)
		forum.Match(getPost, "/subject/:id", sujetHandler.Show)
	}

	// Member routes
	member := router.Group("")
	member.Use(authMiddleware.RequireAuth())
	{
		member.GET("/profil", profileHandler.GetCurrentProfile)
		member.Match(getPost, "/profil/edit", profileHandler.UpdateProfile)
		member.Match(getPost, "/comment/:id/edit", commentHandler.Edit)
	}

	// Admin routes
	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.GET("", adminHandler.Dashboard)

		admin.GET("/members", adminHandler.GetAllUsers)
		admin.Match(getPost, "/members/new", adminHandler.CreateUser)
		admin.Match(getPost, "/members/:id/edit", adminHandler.UpdateUser)
		admin.POST("/members/:id/delete", adminHandler.DeleteUser)

		admin.GET("/categories", categoryHandler.GetAllCategories)
		admin.Match(getPost, "/categories/new", categoryHandler.CreateCategory)
		admin.Match(getPost, "/categories/:id/edit", categoryHandler.UpdateCategory)
		admin.POST("/categories/:id/delete", categoryHandler.DeleteCategory)

		admin.GET("/sujets", sujetHandler.AdminList)
		admin.Match(getPost, "/sujets/new", sujetHandler.AdminNew)
		admin.Match(getPost, "/sujets/:id/edit", sujetHandler.AdminEdit)
		admin.POST("/sujets/:id/delete", sujetHandler.AdminDelete)

		admin.GET("/comments", commentHandler.AdminList)
		admin.Match(getPost, "/comments/new", commentHandler.AdminNew)
		admin.Match(getPost, "/comments/:id/edit", commentHandler.AdminEdit)
		admin.POST("/comments/:id/delete", commentHandler.AdminDelete)
	}

	return &Server{
		engine:    router,
		scheduler: scheduler,
		log:       log,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Scheduler() *jobs.Scheduler {
	return s.scheduler
}

// Run starts the background jobs and serves HTTP until Shutdown is called.
func (s *Server) Run(addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = httpServer
	s.mu.Unlock()

	s.scheduler.Start()

	s.log.Info().Str("addr", addr).Msg("http server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop(ctx)

	s.mu.Lock()
	httpServer := s.http
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}
	return httpServer.Shutdown(ctx)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:8080"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
