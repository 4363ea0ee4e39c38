package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/config"
	"github.com/pothole-patrol/api-go/session"
	"github.com/pothole-patrol/api-go/utils"
	"go.uber.org/zap"
)

type AuthController struct {
	Sessions *session.Manager
	Log      *zap.Logger
}

func NewAuthController(sessions *session.Manager, log *zap.Logger) *AuthController {
	return &AuthController{Sessions: sessions, Log: log}
}

type credentialsInput struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

func (ac *AuthController) respondSignedIn(c *gin.Context, status int, store *session.Store, message string) {
	c.JSON(status, StandardResponse{
		Success: true,
		Message: message,
		Data: AuthResponse{
			TokenType:   "Bearer",
			AccessToken: store.Token(),
			User:        store.User(),
		},
	})
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: err.Error()})
		return
	}

	store := ac.Sessions.NewStore()
	if err := store.SignUp(c.Request.Context(), input.Email, input.Password); err != nil {
		respondError(c, ac.Log, err)
		return
	}
	ac.respondSignedIn(c, http.StatusCreated, store, "User registered successfully")
}

func (ac *AuthController) SignIn(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: err.Error()})
		return
	}

	store := ac.Sessions.NewStore()
	if err := store.SignIn(c.Request.Context(), input.Email, input.Password); err != nil {
		respondError(c, ac.Log, err)
		return
	}
	ac.respondSignedIn(c, http.StatusOK, store, "Signed in successfully")
}

// SignInAnonymous replaces the caller's session, if any, with a fresh
// anonymous account.
func (ac *AuthController) SignInAnonymous(c *gin.Context) {
	store := utils.GetSession(c)
	if store == nil {
		store = ac.Sessions.NewStore()
	}
	if err := store.SignInAnonymous(c.Request.Context()); err != nil {
		respondError(c, ac.Log, err)
		return
	}
	ac.respondSignedIn(c, http.StatusCreated, store, "Signed in anonymously")
}

func (ac *AuthController) SignInWithGoogle(c *gin.Context) {
	var input config.GoogleCredential
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Error: err.Error()})
		return
	}

	store := ac.Sessions.NewStore()
	if err := store.SignInWithGoogle(c.Request.Context(), input); err != nil {
		respondError(c, ac.Log, err)
		return
	}
	ac.respondSignedIn(c, http.StatusOK, store, "Signed in with Google")
}

func (ac *AuthController) SignOut(c *gin.Context) {
	store := utils.GetSession(c)
	if store == nil {
		respondError(c, ac.Log, session.ErrNotSignedIn)
		return
	}
	if err := store.SignOut(c.Request.Context()); err != nil {
		respondError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Signed out successfully"})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Error: "User not found in context"})
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: user})
}
