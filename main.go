package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"assessment-service/internal/adaptive"
	"assessment-service/internal/config"
	"assessment-service/internal/db"
	"assessment-service/internal/evaluation"
	"assessment-service/internal/event"
	"assessment-service/internal/handlers"
	"assessment-service/internal/repository"
	"assessment-service/internal/scoring"
	"assessment-service/internal/selection"
	"assessment-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	gin.SetMode(cfg.GinMode)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db.InitMongo(cfg.MongoURI)
	database := db.Client.Database(cfg.MongoDatabase)

	// RabbitMQ event publisher, optional.
	var publisher service.Publisher
	if cfg.RabbitMQURI != "" && cfg.EventExchange != "" {
		ep, err := event.NewEventPublisher(cfg.RabbitMQURI, cfg.EventExchange, logger)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer ep.Close()
		publisher = ep
	} else {
		log.Println("RabbitMQ not configured, engine events will not be published")
	}

	// Repositories.
	questionRepo := repository.NewQuestionRepository(database)
	progressionRepo := repository.NewProgressionRepository(database)
	answerRepo := repository.NewAnswerRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := progressionRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create progression indexes: %v", err)
	}
	cancel()

	// Scoring configuration must be sane before anything is graded.
	scoringCfg := scoring.DefaultConfig()
	if err := scoringCfg.Validate(); err != nil {
		log.Fatalf("Invalid scoring config: %v", err)
	}

	// Engine wiring.
	selector := selection.NewSelector(questionRepo)
	composer := selection.NewComposer(questionRepo, nil)
	manager := adaptive.NewManager(nil)
	evaluator := evaluation.NewHTTPEvaluator(cfg.EvalBaseURL, cfg.EvalAPIKey, cfg.EvalModel, cfg.EvalTimeout)
	pipeline := evaluation.NewPipeline(evaluator, logger, cfg.EvalTimeout)
	aggregator := scoring.NewAggregator(scoringCfg)

	practiceService := service.NewPracticeService(questionRepo, progressionRepo, answerRepo, selector, manager, publisher, logger)
	examService := service.NewExamService(questionRepo, attemptRepo, composer, pipeline, aggregator, publisher, logger)

	practiceHandler := handlers.NewPracticeHandler(practiceService)
	examHandler := handlers.NewExamHandler(examService)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-User-ID", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	practice := r.Group("/practice")
	{
		practice.POST("/sessions", practiceHandler.StartPractice)
		practice.GET("/sessions/:id/next", practiceHandler.NextQuestion)
		practice.POST("/sessions/:id/answers", practiceHandler.SubmitAnswer)
		practice.DELETE("/sessions/:id", practiceHandler.EndSession)
		practice.GET("/progress", practiceHandler.Progress)
		practice.GET("/reviews/due", practiceHandler.DueReviews)
	}

	exams := r.Group("/exams")
	{
		exams.POST("/attempts", examHandler.StartExam)
		exams.GET("/attempts", examHandler.ListAttempts)
		exams.POST("/attempts/:id/objective", examHandler.SubmitObjectiveAnswer)
		exams.POST("/attempts/:id/free-response", examHandler.SubmitFreeResponse)
		exams.POST("/attempts/:id/submit", examHandler.SubmitExam)
		exams.GET("/attempts/:id/results", examHandler.GetResults)
		exams.GET("/pool", examHandler.PoolReport)
	}

	log.Printf("%s %s listening on :%s", cfg.ServiceName, cfg.ServiceVersion, cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
