package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/athletelink/athletelink-backend/internal/platform/apierr"
)

// respondData and respondError emit the uniform envelope: {"data": ...} on
// success, {"error": {"code", "message"}} on failure. Only apierr kinds and
// messages cross the boundary; storage and gateway internals never do.
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func respondError(c *gin.Context, err error) {
	kind := apierr.KindOf(err)
	c.JSON(apierr.HTTPStatus(kind), gin.H{
		"error": gin.H{"code": string(kind), "message": err.Error()},
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"code": string(apierr.KindInvalidArgument), "message": message},
	})
}
