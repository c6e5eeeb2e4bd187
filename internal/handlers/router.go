package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with every route of the server.
func NewRouter(ctx *Context) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), ctx.requestLogger())

	corsConfig := cors.Config{
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}
	if len(ctx.Config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = ctx.Config.AllowedOrigins
	} else {
		corsConfig.AllowCredentials = false
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	api.GET("/health", ctx.HandleHealth)
	api.GET("/ruleset/classic", ctx.HandleRuleset)
	api.POST("/rooms", ctx.HandleCreateRoom)
	api.GET("/rooms/:code", ctx.HandleRoom)
	api.GET("/rooms/:code/invite.png", ctx.HandleInvite)

	r.GET("/ws", ctx.HandleSocket)
	return r
}

func (ctx *Context) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		ctx.Log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}
