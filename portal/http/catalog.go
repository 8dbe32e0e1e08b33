package http

import "github.com/gin-gonic/gin"

func (s *Server) RegisterCatalogRoutes() {
	catalogGroup := s.Group(PREFIX+"/catalog", s.authCheck())
	catalogGroup.GET("/services", s.listServices())
	catalogGroup.GET("/roles", s.listRoles())
	catalogGroup.GET("/departments", s.departmentTree())
}

func (s *Server) listServices() gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := s.directory.ListServices(c.Request.Context())
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, services)
	}
}

func (s *Server) listRoles() gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, err := s.directory.ListRoles(c.Request.Context())
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, roles)
	}
}

func (s *Server) departmentTree() gin.HandlerFunc {
	return func(c *gin.Context) {
		tree, err := s.directory.DepartmentTree(c.Request.Context())
		if err != nil {
			writeServiceError(c, err)
			return
		}
		WriteOK(c.JSON, tree)
	}
}
