package http

import "github.com/gin-gonic/gin"

func (s *Server) RegisterAdminRoutes() {
	adminGroup := s.Group(PREFIX+"/admin", s.authCheck(), s.adminCheck())

	adminGroup.GET("/users", s.listUsers())
	adminGroup.DELETE("/user/:id", s.deleteUser())
	adminGroup.POST("/promote", s.promote())

	adminGroup.GET("/requests", s.listPendingRequests())
	adminGroup.POST("/request/:id/approve", s.approveRequest())
	adminGroup.POST("/request/:id/reject", s.rejectRequest())

	adminGroup.GET("/registrations", s.listPendingRegistrations())
	adminGroup.GET("/registrations/awaiting", s.listAwaitingActivation())
	adminGroup.POST("/registration/:id/approve", s.approveRegistration())
	adminGroup.POST("/registration/:id/reject", s.rejectRegistration())
}

func (s *Server) listUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.admin.ListUsers(c.Request.Context(), currentSession(c).ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, users)
	}
}

func (s *Server) deleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.admin.DeleteUser(c.Request.Context(), currentSession(c).ID, c.Param("id")); err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, nil)
	}
}

type promoteForm struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *Server) promote() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form promoteForm
		if err := c.ShouldBindJSON(&form); err != nil {
			WriteBadRequest(c.JSON, "invalid email address or missing field")
			return
		}
		if err := s.admin.PromoteToSystemAdmin(c.Request.Context(), currentSession(c).ID, form.Email); err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, nil)
	}
}

func (s *Server) listPendingRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := s.admin.PendingRequests(c.Request.Context(), currentSession(c).ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, requests)
	}
}

func (s *Server) approveRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.admin.ApproveRequest(c.Request.Context(), currentSession(c).ID, c.Param("id")); err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, nil)
	}
}

func (s *Server) rejectRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.admin.RejectRequest(c.Request.Context(), currentSession(c).ID, c.Param("id")); err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, nil)
	}
}

func (s *Server) listPendingRegistrations() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := s.admin.PendingRegistrations(c.Request.Context(), currentSession(c).ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, requests)
	}
}

func (s *Server) listAwaitingActivation() gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := s.admin.AwaitingActivation(c.Request.Context(), currentSession(c).ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, requests)
	}
}

func (s *Server) approveRegistration() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := s.admin.ApproveRegistration(c.Request.Context(), currentSession(c).ID, c.Param("id"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		// result carries the mail outcome; the approval itself committed
		WriteOK(c.JSON, result)
	}
}

func (s *Server) rejectRegistration() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.admin.RejectRegistration(c.Request.Context(), currentSession(c).ID, c.Param("id")); err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, nil)
	}
}
