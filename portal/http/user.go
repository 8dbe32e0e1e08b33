package http

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) RegisterUserRoutes() {
	userGroup := s.Group(PREFIX + "/user")
	userGroup.POST("/register", s.register())
	userGroup.POST("/login", s.login())
	userGroup.GET("/activate", s.activate())
	userGroup.GET("/session", s.authCheck(), s.session())

	// permission requests
	userGroup.POST("/request", s.authCheck(), s.submitRequest())
	userGroup.GET("/requests", s.authCheck(), s.listOwnRequests())
}

type registerForm struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form registerForm
		if err := c.ShouldBindJSON(&form); err != nil {
			WriteBadRequest(c.JSON, "invalid email address or missing field")
			return
		}

		request, err := s.registrations.Submit(c.Request.Context(), form.Name, form.Email, form.Password)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, gin.H{"id": request.ID, "status": request.Status})
	}
}

type loginForm struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form loginForm
		if err := c.ShouldBindJSON(&form); err != nil {
			WriteBadRequest(c.JSON, "invalid email address or missing field")
			return
		}

		result, err := s.auth.Login(c.Request.Context(), form.Email, form.Password)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, result)
	}
}

func (s *Server) activate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		user, err := s.registrations.Activate(c.Request.Context(), token)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, gin.H{"id": user.ID, "email": user.Email})
	}
}

func (s *Server) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		WriteOK(c.JSON, currentSession(c))
	}
}

type requestForm struct {
	ServiceID    string  `json:"service_id" binding:"required"`
	RoleID       string  `json:"role_id" binding:"required"`
	DepartmentID *string `json:"department_id"`
}

func (s *Server) submitRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form requestForm
		if err := c.ShouldBindJSON(&form); err != nil {
			WriteBadRequest(c.JSON, "invalid request: "+err.Error())
			return
		}

		session := currentSession(c)
		request, err := s.requests.Submit(c.Request.Context(), session.ID, form.ServiceID, form.RoleID, form.DepartmentID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, request)
	}
}

func (s *Server) listOwnRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		requests, err := s.requests.ListPendingFor(c.Request.Context(), session.ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, requests)
	}
}
