package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"backend/internal/authority"
	"backend/internal/config"
	"backend/internal/handler"
	"backend/internal/matching"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/scoring"
	"backend/internal/service"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	requestLog := logrus.New()
	requestLog.SetFormatter(&logrus.JSONFormatter{})
	router.Use(middleware.RequestLogger(requestLog))

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Repositories
	politicianRepo := repository.NewPoliticianRepository(s.db, s.logger)
	promiseRepo := repository.NewPromiseRepository(s.db, s.logger)
	actionRepo := repository.NewActionRecordRepository(s.db, s.logger)
	matchRepo := repository.NewMatchRepository(s.db, s.logger)
	scoreRepo := repository.NewConsistencyScoreRepository(s.db, s.logger)
	profileRepo := repository.NewValueProfileRepository(s.db, s.logger)
	eventRepo := repository.NewCredibilityEventRepository(s.db, s.logger)

	// Engines
	scoringCfg := s.cfg.Scoring
	matcher := matching.NewMatcher(scoringCfg)
	processor := matching.NewProcessor(matcher, promiseRepo, actionRepo, matchRepo, scoringCfg, s.logger)
	calculator := scoring.NewCalculator(promiseRepo, matchRepo, actionRepo, scoreRepo, scoringCfg, s.logger)
	profiler := scoring.NewProfiler(promiseRepo, matchRepo, actionRepo, profileRepo, scoringCfg, s.logger)
	credibility := scoring.NewCredibilityScorer(politicianRepo, eventRepo, scoringCfg, s.logger)

	// Services share one lock set so a politician is never recomputed twice
	// concurrently, whatever the entry point.
	locks := service.NewPoliticianLocks()
	matchingService := service.NewMatchingService(processor, politicianRepo, locks, scoringCfg, s.logger)
	scoringService := service.NewScoringService(calculator, profiler, credibility,
		politicianRepo, promiseRepo, matchRepo, actionRepo, scoreRepo, profileRepo,
		locks, scoringCfg, s.logger)

	// Upstream authority collaborator
	authorityClient := authority.NewClient(
		s.cfg.Authority.VotesURL,
		s.cfg.Authority.ActivitiesURL,
		s.cfg.Authority.RequestsPerSec,
		time.Duration(s.cfg.Authority.TimeoutSeconds)*time.Second,
		s.logger,
	)
	syncer := authority.NewSyncer(authorityClient, actionRepo, politicianRepo, s.logger)

	// Handlers
	matchingHandler := handler.NewMatchingHandler(matchingService, s.logger)
	scoringHandler := handler.NewScoringHandler(scoringService, s.logger)
	authorityHandler := handler.NewAuthorityHandler(syncer, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := s.router.Group("/api")
	{
		api.POST("/matching/politicians/:id/run", matchingHandler.RunForPolitician)
		api.POST("/matching/run", matchingHandler.RunAll)
		api.POST("/scores/run", scoringHandler.RunScores)
		api.POST("/profiles/run", scoringHandler.RunProfiles)
		api.POST("/credibility/events", scoringHandler.ApplyVerification)
		api.GET("/politicians/:id/score", scoringHandler.GetScore)
		api.GET("/politicians/:id/profile", scoringHandler.GetProfile)
		api.POST("/authority/politicians/:id/sync", authorityHandler.Sync)
	}
}

func (s *Server) Run(addr string) error {
	s.logger.Info("Server starting", zap.String("port", addr))
	return s.router.Run(addr)
}
