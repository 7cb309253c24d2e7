package handlers

import (
	"net/http"

	"github.com/cuesoftinc/cuelabs-backend/internal/middleware"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   *services.UserService
	exportService *services.ExportService
}

func NewUserHandler(userService *services.UserService, exportService *services.ExportService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		exportService: exportService,
	}
}

type UserResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email,omitempty"`
	WalletBalance     int      `json:"wallet_balance"`
	TotalEarnings     int      `json:"total_earnings"`
	ActiveBounties    []string `json:"active_bounties"`
	SubmittedBounties []string `json:"submitted_bounties"`
	CompletedBounties []string `json:"completed_bounties"`
	Status            string   `json:"status,omitempty"`
}

type EarningResponse struct {
	ID       string `json:"id"`
	BountyID string `json:"bounty_id,omitempty"`
	Amount   int    `json:"amount"`
}

// GetUser godoc
// @Summary Get a user
// @Description Get one user record by ID
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User record ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == services.ErrUserNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetMe godoc
// @Summary Get the authenticated user
// @Description Get the signed-in user's profile and wallet
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if err == services.ErrUserNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetMyEarnings godoc
// @Summary Get earnings history
// @Description Get the signed-in user's earning records
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} EarningResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /me/earnings [get]
func (h *UserHandler) GetMyEarnings(c *gin.Context) {
	earnings, err := h.userService.GetEarnings(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := make([]EarningResponse, len(earnings))
	for i, e := range earnings {
		response[i] = EarningResponse{ID: e.ID, Amount: e.Amount}
		if len(e.Bounties) > 0 {
			response[i].BountyID = e.Bounties[0]
		}
	}

	c.JSON(http.StatusOK, response)
}

// ExportEarnings godoc
// @Summary Export a signed earnings statement
// @Description Get a signed JSON statement of the signed-in user's earnings
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.EarningsExport
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /me/export [get]
func (h *UserHandler) ExportEarnings(c *gin.Context) {
	export, err := h.exportService.ExportEarnings(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, export)
}

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		WalletBalance:     u.WalletBalance,
		TotalEarnings:     u.TotalEarnings,
		ActiveBounties:    u.ActiveBounties,
		SubmittedBounties: u.SubmittedBounties,
		CompletedBounties: u.CompletedBounties,
		Status:            u.Status,
	}
	if resp.ActiveBounties == nil {
		resp.ActiveBounties = []string{}
	}
	if resp.SubmittedBounties == nil {
		resp.SubmittedBounties = []string{}
	}
	if resp.CompletedBounties == nil {
		resp.CompletedBounties = []string{}
	}
	return resp
}
