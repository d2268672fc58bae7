package handlers

import (
	"github.com/gin-gonic/gin"
)

// Routes bundles everything mounted by RegisterRoutes. Metrics may be nil.
type Routes struct {
	Analytics *AnalyticsHandlers
	Auth      *AuthHandlers
	Content   *ContentHandlers
	Health    *HealthHandlers
	Admin     gin.HandlerFunc
	Metrics   gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, rt Routes) {
	if rt.Metrics != nil {
		r.GET("/metrics", rt.Metrics)
	}

	// The bare paths match the wire contract used by older clients.
	r.POST("/analytics/track", rt.Analytics.TrackEvent)
	r.GET("/analytics", rt.Admin, rt.Analytics.GetAnalytics)

	api := r.Group("/api")
	{
		api.GET("/health", rt.Health.HealthCheck)

		api.POST("/analytics/track", rt.Analytics.TrackEvent)

		api.POST("/auth/login", rt.Auth.Login)
		api.POST("/auth/logout", rt.Auth.Logout)

		api.GET("/content", rt.Content.GetAll)
		api.GET("/content/about", rt.Content.GetAbout)
		api.GET("/content/projects", rt.Content.GetProjects)
		api.GET("/content/skills", rt.Content.GetSkills)
		api.GET("/content/contacts", rt.Content.GetContacts)

		protected := api.Group("/")
		protected.Use(rt.Admin)
		{
			protected.GET("/analytics", rt.Analytics.GetAnalytics)

			protected.PUT("/content/about", rt.Content.UpdateAbout)
			protected.PUT("/content/projects", rt.Content.UpdateProjects)
			protected.PUT("/content/skills", rt.Content.UpdateSkills)
			protected.PUT("/content/contacts", rt.Content.UpdateContacts)
		}
	}
}
