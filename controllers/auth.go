package controllers

import (
	"strings"

	"finboard/api"
	"finboard/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthController struct {
	DB     *gorm.DB
	Logger *zap.SugaredLogger
}

type signUpParams struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginParams struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a AuthController) SignUp(c *gin.Context) {
	var payload signUpParams
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.BadRequest(c, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if !strings.Contains(email, "@") {
		api.BadRequest(c, "email is not valid")
		return
	}
	if len(payload.Password) < minPasswordLength {
		api.BadRequest(c, "password must be at least 8 characters")
		return
	}

	existing, err := models.GetUserByEmail(a.DB, email)
	if err != nil {
		a.Logger.Errorf("Error looking up user %v: %v", email, err)
		api.Internal(c)
		return
	}
	if existing != nil {
		api.Conflict(c, "email is already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		a.Logger.Errorf("Error hashing password: %v", err)
		api.Internal(c)
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(payload.Name),
	}
	if err := a.DB.Create(&user).Error; err != nil {
		// A concurrent signup can slip past the lookup; the unique index
		// still rejects it.
		if models.IsDuplicateKey(err) {
			api.Conflict(c, "email is already registered")
			return
		}
		a.Logger.Errorf("Error creating user %v: %v", email, err)
		api.Internal(c)
		return
	}

	api.Created(c, user)
}

func (a AuthController) Login(c *gin.Context) {
	var payload loginParams
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.BadRequest(c, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	user, err := models.GetUserByEmail(a.DB, email)
	if err != nil {
		a.Logger.Errorf("Error looking up user %v: %v", email, err)
		api.Internal(c)
		return
	}
	if user == nil {
		api.Unauthorized(c, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		api.Unauthorized(c, "invalid email or password")
		return
	}

	accessToken, err := models.CreateAccessToken(a.DB, user.ID, uuid.NewString())
	if err != nil {
		a.Logger.Errorf("Error creating access token for user %d: %v", user.ID, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"token": accessToken.Token,
		"user":  user,
	})
}
