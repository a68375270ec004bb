package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silasdani/bandaid/internal/handler"
	"github.com/silasdani/bandaid/pkg/constants"
)

// New builds the local HTTP router.
func New(
	sessionHandler *handler.SessionHandler,
	cueHandler *handler.CueHandler,
	settingsHandler *handler.SettingsHandler,
	stateWS *handler.StateWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)
	r.GET(constants.PathState, sessionHandler.State)

	// Session lifecycle
	sess := r.Group("/session")
	{
		sess.POST("", sessionHandler.Create)
		sess.POST("/join", sessionHandler.Join)
		sess.POST("/leave", sessionHandler.Leave)
		sess.POST("/end", sessionHandler.End)
		sess.POST("/logout", sessionHandler.Logout)

		tiles := sess.Group("/tiles")
		{
			tiles.GET("", sessionHandler.Tiles)
			tiles.GET("/active", sessionHandler.ActiveTiles)
			tiles.POST("", sessionHandler.AddTile)
			tiles.PATCH("/:id", sessionHandler.UpdateTile)
			tiles.DELETE("/:id", sessionHandler.RemoveTile)
		}
	}
	// Live relay
	r.POST("/cue", cueHandler.SendCue)
	r.POST("/cue/clear", cueHandler.ClearCue)
	r.POST("/actions", cueHandler.SendAction)

	// Device-local settings
	settings := r.Group("/settings")
	{
		settings.GET("", settingsHandler.Get)
		settings.PUT("", settingsHandler.Update)
		settings.POST("/reset", settingsHandler.Reset)

		tiles := settings.Group("/tiles")
		{
			tiles.GET("", settingsHandler.Tiles)
			tiles.GET("/active", settingsHandler.ActiveTiles)
			tiles.POST("", settingsHandler.AddTile)
			tiles.PATCH("/:id", settingsHandler.UpdateTile)
			tiles.DELETE("/:id", settingsHandler.RemoveTile)
		}
	}

	// WebSocket: state push to the UI
	r.GET(constants.PathWS, stateWS.ServeWS)

	return r
}
