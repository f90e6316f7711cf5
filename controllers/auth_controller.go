package controllers

import (
	"net/http"

	"ebanking/services"
	"ebanking/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// SignInRequest учетные данные оператора
type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse выданный токен
type SignInResponse struct {
	Token string `json:"token"`
}

type AuthController struct {
	auth     *services.AuthService
	validate *validator.Validate
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{
		auth:     auth,
		validate: newValidator(),
	}
}

// SignIn выдает JWT по логину и паролю оператора
func (ctl *AuthController) SignIn(c *gin.Context) {
	var req SignInRequest
	if !bindRequest(c, ctl.validate, &req) {
		return
	}

	token, err := ctl.auth.SignIn(req.Username, req.Password)
	if err != nil {
		utils.Log.WithField("username", req.Username).Warn("sign in rejected")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SignInResponse{Token: token})
}
