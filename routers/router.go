package routers

import (
	"LinguaReel-server/routers/api"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRouter() *gin.Engine {
	r := gin.Default()
	v1 := r.Group("/v1/api")
	{
		v1.GET("/sections", api.ListSections)
		v1.GET("/sections/:section_id", api.GetSection)
		v1.PUT("/sections/:section_id/translations", api.UpsertTranslation)

		v1.GET("/sections/:section_id/audio", api.ListSectionAudio)
		v1.GET("/sections/:section_id/frames", api.ListSectionFrames)
		v1.GET("/sections/:section_id/videos", api.ListSectionVideos)

		v1.POST("/sections/:section_id/audio", api.GenerateSectionAudio)
		v1.POST("/sections/:section_id/frames", api.GenerateSectionFrames)
		v1.POST("/sections/:section_id/video", api.GenerateSectionVideo)

		v1.GET("/tasks/:task_id", api.GetTaskStatus)
	}
	r.GET("/tasks/:task_id/wss", api.TaskProgressWebSocket)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
