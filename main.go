package main

import (
	"os"

	"finboard/controllers"
	"finboard/core"
	"finboard/fetcher"
	"finboard/internal"
	"finboard/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	godotenv.Load()

	logger, err := internal.NewLogger()
	if err != nil {
		panic(err)
	}

	// connect to the database
	db, err := core.InitDB()
	if err != nil {
		panic(err)
	}

	// auto migrate the database
	err = db.AutoMigrate(
		&models.User{},
		&models.AccessToken{},
		&models.FinancialMetric{},
		&models.PriceBar{},
		&models.ValuationSnapshot{},
		&models.Feed{},
		&models.FeedItem{},
	)
	if err != nil {
		panic(err)
	}

	runServer(db, logger)
}

func runServer(db *gorm.DB, logger *zap.SugaredLogger) {
	engine := gin.Default()
	err := engine.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "https://"+os.Getenv("UI_DOMAIN"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-User-Token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router := controllers.Router{
		DB:                   db,
		HealthController:     &controllers.HealthController{DB: db},
		AuthController:       &controllers.AuthController{DB: db, Logger: logger},
		UsersController:      &controllers.UsersController{DB: db, Logger: logger},
		ValuationController:  &controllers.ValuationController{DB: db, Logger: logger},
		IndicatorsController: &controllers.IndicatorsController{DB: db, Logger: logger},
		FeedsController: &controllers.FeedsController{
			DB:      db,
			Logger:  logger,
			Fetcher: fetcher.NewFeedFetcher(logger),
		},
	}

	router.RegisterRoutes(engine)

	if err := engine.Run(); err != nil {
		logger.Errorf("Server stopped: %v", err)
	}
}
