package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
)

// respondError maps the error taxonomy onto HTTP statuses. Business-rule
// messages go out verbatim; Internal causes are logged with the correlation
// id and replaced by a generic retry message.
func respondError(c *gin.Context, module, funcName string, err error) {
	switch utils.KindOf(err) {
	case utils.ErrorKindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case utils.ErrorKindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.ErrorKindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), module, funcName, correlationId, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
	}
}

func respondBindError(c *gin.Context, err error) {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
