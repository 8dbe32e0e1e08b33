// Copyright 2026 The AccessHub Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"fmt"

	"accesshub/internal/config"
	"accesshub/pkg/log"
	"accesshub/pkg/redis"
	"accesshub/portal/oidc"
	"accesshub/portal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const PREFIX = "/api/v1"

// Server is the portal HTTP surface.
type Server struct {
	*gin.Engine
	logger *log.Logger
	listen string

	auth          service.AuthService
	directory     service.DirectoryService
	registrations service.RegistrationService
	requests      service.RequestService
	admin         service.AdminService
	federated     *oidc.Gate
}

// ServerConfig is the server wiring.
type ServerConfig struct {
	Listen    string
	DB        *gorm.DB
	Rdb       *redis.Client
	Mail      service.MailSender
	BaseURL   string
	AdminRole string
	OIDC      *config.OIDCConfig
}

// NewServer builds the service graph and registers the routes.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.Mail == nil {
		cfg.Mail = service.NewMailSender(nil)
	}
	directory := service.NewDirectoryService(cfg.DB, cfg.Rdb, cfg.AdminRole)
	auth := service.NewAuthService(cfg.DB, directory)
	registrations := service.NewRegistrationService(cfg.DB, cfg.Mail, cfg.BaseURL)
	requests := service.NewRequestService(cfg.DB, directory)

	s := &Server{
		Engine:        gin.Default(),
		logger:        log.NewLogger(log.Loglevel, fmt.Sprintf("[%s]", "portal-server")),
		listen:        cfg.Listen,
		auth:          auth,
		directory:     directory,
		registrations: registrations,
		requests:      requests,
		admin:         service.NewAdminService(cfg.DB, directory, registrations, requests),
	}

	if cfg.OIDC != nil && cfg.OIDC.Issuer != "" {
		gate, err := oidc.NewGate(cfg.OIDC, auth, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		s.federated = gate
	}

	s.initRoute()
	return s, nil
}

func (s *Server) initRoute() {
	s.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	s.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.RegisterUserRoutes()
	s.RegisterCatalogRoutes()
	s.RegisterAdminRoutes()

	if s.federated != nil {
		s.GET("/auth/callback", s.federated.Callback)
	}
}

func (s *Server) Start() error {
	s.logger.Infof("portal listening on %s", s.listen)
	return s.Run(s.listen)
}
