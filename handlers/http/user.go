package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harumaki2000/medication-app/usecases"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	useCase *usecases.UserUseCase
	log     logrus.FieldLogger
}

func NewUserHandler(useCase *usecases.UserUseCase, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{useCase: useCase, log: log}
}

// CreateUser handles POST /users/
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	user, err := h.useCase.RegisterUser(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Options handles OPTIONS /users/
func (h *UserHandler) Options(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
