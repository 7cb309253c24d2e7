package handlers

import (
	"net/http"

	"github.com/cuesoftinc/cuelabs-backend/internal/middleware"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type BountyHandler struct {
	bountyService *services.BountyService
}

func NewBountyHandler(bountyService *services.BountyService) *BountyHandler {
	return &BountyHandler{bountyService: bountyService}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type BountyResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status"`
	Reward       int      `json:"reward"`
	Participants []string `json:"participants"`
	Winner       string   `json:"winner,omitempty"`
}

type BountyListResponse struct {
	Bounties []BountyResponse `json:"bounties"`
	Total    int              `json:"total"`
}

type CreateSubmissionRequest struct {
	URL     string `json:"url" binding:"required"`
	Comment string `json:"comment"`
}

type SubmissionResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Comment  string `json:"comment,omitempty"`
	Status   string `json:"status"`
	UserID   string `json:"user_id"`
	BountyID string `json:"bounty_id"`
}

// ListBounties godoc
// @Summary List bounties
// @Description Get all bounties, optionally filtered by status
// @Tags bounties
// @Accept json
// @Produce json
// @Param status query string false "Bounty status (New, Todo, In progress, Done)"
// @Success 200 {object} BountyListResponse
// @Failure 500 {object} ErrorResponse
// @Router /bounties [get]
func (h *BountyHandler) ListBounties(c *gin.Context) {
	bounties, err := h.bountyService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := BountyListResponse{
		Bounties: make([]BountyResponse, len(bounties)),
		Total:    len(bounties),
	}
	for i := range bounties {
		response.Bounties[i] = toBountyResponse(&bounties[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetBounty godoc
// @Summary Get a bounty
// @Description Get one bounty by record ID
// @Tags bounties
// @Accept json
// @Produce json
// @Param id path string true "Bounty record ID"
// @Success 200 {object} BountyResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /bounties/{id} [get]
func (h *BountyHandler) GetBounty(c *gin.Context) {
	bounty, err := h.bountyService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == services.ErrBountyNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "bounty not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toBountyResponse(bounty))
}

// ClaimBounty godoc
// @Summary Claim a bounty
// @Description Register the authenticated user as a participant on a bounty
// @Tags bounties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bounty record ID"
// @Success 200 {object} BountyResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /bounties/{id}/claim [post]
func (h *BountyHandler) ClaimBounty(c *gin.Context) {
	userID := middleware.GetUserID(c)

	bounty, err := h.bountyService.Claim(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrBountyNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "bounty not found"})
		case services.ErrBountyClosed:
			c.JSON(http.StatusConflict, ErrorResponse{Error: "bounty is closed"})
		case services.ErrBountyFull:
			c.JSON(http.StatusConflict, ErrorResponse{Error: "bounty has reached its participant limit"})
		case services.ErrAlreadyClaimed:
			c.JSON(http.StatusConflict, ErrorResponse{Error: "bounty already claimed"})
		case repository.ErrConflict:
			c.JSON(http.StatusConflict, ErrorResponse{Error: "bounty was modified concurrently, retry"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, toBountyResponse(bounty))
}

// CreateSubmission godoc
// @Summary Submit work for a bounty
// @Description Create a submission linking the authenticated user, the bounty, and a URL
// @Tags bounties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bounty record ID"
// @Param request body CreateSubmissionRequest true "Submission details"
// @Success 201 {object} SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /bounties/{id}/submissions [post]
func (h *BountyHandler) CreateSubmission(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	submission, err := h.bountyService.Submit(c.Request.Context(), userID, c.Param("id"), req.URL, req.Comment)
	if err != nil {
		switch err {
		case services.ErrInvalidSubmissionURL:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "submission URL must be a valid http or https URL"})
		case services.ErrCommentTooLong:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "comment must be 500 characters or fewer"})
		case services.ErrBountyNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "bounty not found"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, toSubmissionResponse(submission))
}

func toBountyResponse(b *models.Bounty) BountyResponse {
	resp := BountyResponse{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		Status:       b.Status,
		Reward:       b.Reward,
		Participants: b.Participants,
	}
	if resp.Participants == nil {
		resp.Participants = []string{}
	}
	if len(b.Winner) > 0 {
		resp.Winner = b.Winner[0]
	}
	return resp
}

func toSubmissionResponse(s *models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:       s.ID,
		URL:      s.URL,
		Comment:  s.Comment,
		Status:   s.Status,
		UserID:   s.UserID(),
		BountyID: s.BountyID(),
	}
}
