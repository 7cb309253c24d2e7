package auth

import (
	"fmt"
	"log"
	"net/http"

	"github.com/cuesoftinc/cuelabs-backend/internal/config"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/logto-io/go/v2/client"
)

// Session keys owned by this handler. The user's remote record ID is resolved
// once at sign-in and cached in the cookie session.
const (
	sessionKeyUserID = "cuelabs:user_id"
	sessionKeyEmail  = "cuelabs:email"
)

type LogtoHandler struct {
	config      *config.LogtoConfig
	userService *services.UserService
}

func NewLogtoHandler(cfg *config.LogtoConfig, userService *services.UserService) *LogtoHandler {
	return &LogtoHandler{config: cfg, userService: userService}
}

func (h *LogtoHandler) CreateLogtoClient(ctx *gin.Context) *client.LogtoClient {
	session := sessions.Default(ctx)
	logtoConfig := &client.LogtoConfig{
		Endpoint:  h.config.Endpoint,
		AppId:     h.config.AppID,
		AppSecret: h.config.AppSecret,
		Scopes:    []string{"openid", "profile", "email"},
	}
	return client.NewLogtoClient(logtoConfig, NewSessionStorage(session))
}

func (h *LogtoHandler) Login(ctx *gin.Context) {
	logtoClient := h.CreateLogtoClient(ctx)

	signInUri, err := logtoClient.SignIn(&client.SignInOptions{
		RedirectUri: h.config.RedirectURI,
	})
	if err != nil {
		ctx.String(http.StatusInternalServerError, fmt.Sprintf("Failed to initiate sign-in: %v", err))
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, signInUri)
}

// Callback completes the OAuth handshake, then resolves the signed-in email
// to a Users record in the remote base, creating one on first sign-in, and
// stores the record ID in the session.
func (h *LogtoHandler) Callback(ctx *gin.Context) {
	log.Println("[LogtoHandler] Callback started")
	logtoClient := h.CreateLogtoClient(ctx)

	if err := logtoClient.HandleSignInCallback(ctx.Request); err != nil {
		log.Printf("[LogtoHandler] Callback error: %v", err)
		ctx.String(http.StatusInternalServerError, fmt.Sprintf("Failed to handle callback: %v", err))
		return
	}

	claims, err := logtoClient.GetIdTokenClaims()
	if err != nil {
		log.Printf("[LogtoHandler] Failed to get ID token claims: %v", err)
		ctx.String(http.StatusInternalServerError, "Failed to read identity claims")
		return
	}
	if claims.Email == "" {
		ctx.String(http.StatusInternalServerError, "Identity provider returned no email claim")
		return
	}

	name := claims.Name
	if name == "" {
		name = claims.Username
	}

	user, err := h.userService.GetOrCreateByEmail(ctx.Request.Context(), claims.Email, name)
	if err != nil {
		log.Printf("[LogtoHandler] Failed to resolve user %s: %v", claims.Email, err)
		ctx.String(http.StatusInternalServerError, "Failed to resolve user account")
		return
	}

	session := sessions.Default(ctx)
	session.Set(sessionKeyUserID, user.ID)
	session.Set(sessionKeyEmail, user.Email)
	if err := session.Save(); err != nil {
		log.Printf("[LogtoHandler] Failed to save session: %v", err)
	}

	log.Printf("[LogtoHandler] Signed in %s as %s", claims.Email, user.ID)
	ctx.Redirect(http.StatusFound, "/")
}

func (h *LogtoHandler) Logout(ctx *gin.Context) {
	session := sessions.Default(ctx)
	session.Delete(sessionKeyUserID)
	session.Delete(sessionKeyEmail)
	session.Save()

	logtoClient := h.CreateLogtoClient(ctx)
	signOutUri, err := logtoClient.SignOut(h.config.PostLogoutURI)
	if err != nil {
		ctx.String(http.StatusInternalServerError, fmt.Sprintf("Failed to initiate sign-out: %v", err))
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, signOutUri)
}

// RequireAuth guards browser routes with the cookie session. The remote
// record ID cached at sign-in is set on the request context for handlers.
func (h *LogtoHandler) RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logtoClient := h.CreateLogtoClient(ctx)

		if !logtoClient.IsAuthenticated() {
			ctx.Redirect(http.StatusFound, "/auth/login")
			ctx.Abort()
			return
		}

		session := sessions.Default(ctx)
		userID, _ := session.Get(sessionKeyUserID).(string)
		email, _ := session.Get(sessionKeyEmail).(string)
		if userID == "" {
			// Session predates the user-record cache; resolve again.
			claims, err := logtoClient.GetIdTokenClaims()
			if err != nil || claims.Email == "" {
				ctx.Redirect(http.StatusFound, "/auth/login")
				ctx.Abort()
				return
			}
			user, err := h.userService.GetOrCreateByEmail(ctx.Request.Context(), claims.Email, claims.Name)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user account"})
				ctx.Abort()
				return
			}
			userID = user.ID
			email = user.Email
			session.Set(sessionKeyUserID, userID)
			session.Set(sessionKeyEmail, email)
			session.Save()
		}

		ctx.Set("userID", userID)
		ctx.Set("email", email)
		ctx.Next()
	}
}
