package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/harumaki2000/medication-app/metrics"
	"github.com/harumaki2000/medication-app/usecases"
	"github.com/sirupsen/logrus"
)

type LoginHandler struct {
	useCase *usecases.UserUseCase
	log     logrus.FieldLogger
}

func NewLoginHandler(useCase *usecases.UserUseCase, log logrus.FieldLogger) *LoginHandler {
	return &LoginHandler{useCase: useCase, log: log}
}

// Login handles POST /token with a form-encoded username (email) and password.
func (h *LoginHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		respondInvalidBody(c, err)
		return
	}

	result, err := h.useCase.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		metrics.ObserveLogin("failure")
		respondError(c, h.log, err)
		return
	}
	metrics.ObserveLogin("success")

	c.JSON(http.StatusOK, result)
}
