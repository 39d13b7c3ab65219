package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the full HTTP surface on the gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	r.GET("/ws", h.ServeWebSocket)

	authed := r.Group("/", h.RequireAuth)
	{
		authed.POST("/uploads", h.Upload)

		authed.POST("/reports", h.CreateReport)
		authed.GET("/reports", h.ListReports)
		authed.GET("/reports/:id", h.GetReport)
		authed.PATCH("/reports/:id", h.UpdateReport)
		authed.DELETE("/reports/:id", h.DeleteReport)
		authed.POST("/reports/:id/comments", h.AddComment)

		authed.GET("/notifications", h.ListNotifications)
		authed.GET("/notifications/unread-count", h.UnreadNotificationCount)
		authed.PATCH("/notifications/:id/read", h.MarkNotificationRead)

		authed.POST("/messages/send/:id", h.SendMessage)
		authed.GET("/messages", h.ListConversations)
		authed.GET("/messages/:id", h.GetConversation)
	}

	admin := r.Group("/", h.RequireAuth, h.RequireAdmin)
	{
		admin.POST("/reports/:id/accept", h.AcceptReport)
		admin.PATCH("/reports/:id/status", h.UpdateReportStatus)

		admin.GET("/tasks", h.ListTasks)
		admin.GET("/tasks/:id", h.GetTask)
		admin.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
		admin.POST("/tasks/:id/notes", h.AddTaskNote)
	}
}
