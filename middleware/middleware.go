package middleware

import (
	"net/http"
	"time"

	C "cellscope/config"
	U "cellscope/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"
)

// scope constants.
const SCOPE_REQ_ID = "reqId"

// CustomCors for customised cors configuration based on environment.
func CustomCors() gin.HandlerFunc {
	return func(c *gin.Context) {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowCredentials = true

		if C.IsDevelopment() {
			corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
		} else {
			corsConfig.AllowOrigins = []string{C.GetConfig().APPDomain}
		}

		cors.New(corsConfig)(c)
		c.Next()
	}
}

// RequestIdGenerator sets a unique id on the request scope for log
// correlation.
func RequestIdGenerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		U.SetScope(c, SCOPE_REQ_ID, xid.New().String())
		c.Next()
	}
}

// Logger logs one line per request with method, path, status and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"reqId":   U.GetScopeByKeyAsString(c, SCOPE_REQ_ID),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("Request processed.")
	}
}

// Recovery turns panics into a JSON 500 instead of dropping the connection.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithFields(log.Fields{
			"reqId": U.GetScopeByKeyAsString(c, SCOPE_REQ_ID),
			"panic": recovered,
		}).Error("Recovered from panic on request.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"message": "Internal server error"})
	})
}
