package oidc

import (
	"context"
	"net/http"

	appconfig "accesshub/internal/config"
	"accesshub/pkg/log"
	"accesshub/portal/service"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// Gate is the federated half of the identity gate: it turns a verified
// OIDC assertion into a portal session. The provider's claims are
// trusted as-is once the ID token verifies.
type Gate struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	auth         service.AuthService
	baseURL      string
	logger       *log.Logger
}

type idClaims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// NewGate discovers the provider and prepares the verifier. The issuer
// must serve its openid-configuration at construction time.
func NewGate(cfg *appconfig.OIDCConfig, auth service.AuthService, baseURL string) (*Gate, error) {
	provider, err := oidc.NewProvider(context.Background(), cfg.Issuer)
	if err != nil {
		return nil, err
	}

	return &Gate{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		auth:    auth,
		baseURL: baseURL,
		logger:  log.NewLogger(log.Loglevel, "oidc-gate"),
	}, nil
}

// Callback handles the provider redirect: exchange the code, verify the
// ID token, sync the user and hand the browser a session token.
func (g *Gate) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	oauth2Token, err := g.oauth2Config.Exchange(ctx, code)
	if err != nil {
		g.logger.Errorf("code exchange failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to exchange token"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no id_token in response"})
		return
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		g.logger.Errorf("id token verification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify id token"})
		return
	}

	var claims idClaims
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse claims"})
		return
	}

	result, err := g.auth.LoginFederated(ctx, &service.FederatedClaims{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Avatar:  claims.Picture,
	})
	if err != nil {
		g.logger.Errorf("federated login for %s failed: %v", claims.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in user"})
		return
	}

	c.Redirect(http.StatusFound, g.baseURL+"/login/success?token="+result.Token)
}
