package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"finboard/fetcher"
	"finboard/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupServer wires a full router against a private in-memory database.
func setupServer(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AccessToken{},
		&models.FinancialMetric{},
		&models.PriceBar{},
		&models.ValuationSnapshot{},
		&models.Feed{},
		&models.FeedItem{},
	))

	log := zap.NewNop().Sugar()

	engine := gin.New()
	router := Router{
		DB:                   db,
		HealthController:     &HealthController{DB: db},
		AuthController:       &AuthController{DB: db, Logger: log},
		UsersController:      &UsersController{DB: db, Logger: log},
		ValuationController:  &ValuationController{DB: db, Logger: log},
		IndicatorsController: &IndicatorsController{DB: db, Logger: log},
		FeedsController: &FeedsController{
			DB:      db,
			Logger:  log,
			Fetcher: fetcher.NewFeedFetcher(log),
		},
	}
	router.RegisterRoutes(engine)

	return db, engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

// seedUser creates a user with a working password and a live token.
func seedUser(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Email: email, PasswordHash: string(hash), FullName: "Test User"}
	require.NoError(t, db.Create(&user).Error)

	token := uuid.NewString()
	_, err = models.CreateAccessToken(db, user.ID, token)
	require.NoError(t, err)

	return user, token
}

// seedMarketData stores bars and pivoted metrics for a ticker.
func seedMarketData(t *testing.T, db *gorm.DB, ticker string, closes []float64, metrics map[string]float64) {
	t.Helper()

	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Ticker:    ticker,
			TradeDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Close:     c,
		}
	}
	require.NoError(t, db.Create(&bars).Error)

	for name, value := range metrics {
		require.NoError(t, db.Create(&models.FinancialMetric{
			Ticker:      ticker,
			MetricName:  name,
			MetricValue: value,
		}).Error)
	}
}
