package handlers

import (
	"net/http"

	"github.com/cuesoftinc/cuelabs-backend/internal/saga"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	reviewService *services.ReviewService
	userService   *services.UserService
}

func NewAdminHandler(reviewService *services.ReviewService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{
		reviewService: reviewService,
		userService:   userService,
	}
}

type ApprovalResponse struct {
	ApprovalID   string `json:"approval_id"`
	SubmissionID string `json:"submission_id"`
	BountyID     string `json:"bounty_id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Reward       int    `json:"reward"`
	Step         int    `json:"step"`
	State        string `json:"state"`
	LastError    string `json:"last_error,omitempty"`
}

// ListSubmissions godoc
// @Summary List submissions
// @Description Get all submissions, optionally filtered by status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Submission status (New, Pending, Accepted, Declined)"
// @Success 200 {array} SubmissionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.reviewService.ListSubmissions(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := make([]SubmissionResponse, len(submissions))
	for i := range submissions {
		response[i] = toSubmissionResponse(&submissions[i])
	}

	c.JSON(http.StatusOK, response)
}

// AcceptSubmission godoc
// @Summary Accept a submission
// @Description Run the approval sequence for a submission. On a partial
// @Description failure the response reports the recorded state so the run can
// @Description be retried.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission record ID"
// @Success 200 {object} ApprovalResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ApprovalResponse
// @Router /admin/submissions/{id}/accept [post]
func (h *AdminHandler) AcceptSubmission(c *gin.Context) {
	intent, err := h.reviewService.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrSubmissionNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "submission not found"})
		case services.ErrSubmissionClosed:
			c.JSON(http.StatusConflict, ErrorResponse{Error: "submission already reviewed"})
		default:
			if intent != nil {
				c.JSON(http.StatusBadGateway, toApprovalResponse(intent))
				return
			}
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, toApprovalResponse(intent))
}

// DeclineSubmission godoc
// @Summary Decline a submission
// @Description Mark a submission declined without touching bounty or user state
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission record ID"
// @Success 200 {object} SubmissionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/submissions/{id}/decline [post]
func (h *AdminHandler) DeclineSubmission(c *gin.Context) {
	submission, err := h.reviewService.Decline(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrSubmissionNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "submission not found"})
		case services.ErrSubmissionClosed:
			c.JSON(http.StatusConflict, ErrorResponse{Error: "submission already reviewed"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, toSubmissionResponse(submission))
}

// ListApprovals godoc
// @Summary List approval runs
// @Description Get every recorded approval run and its state
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ApprovalResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/approvals [get]
func (h *AdminHandler) ListApprovals(c *gin.Context) {
	intents, err := h.reviewService.ListApprovals()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := make([]ApprovalResponse, len(intents))
	for i := range intents {
		response[i] = toApprovalResponse(&intents[i])
	}

	c.JSON(http.StatusOK, response)
}

// RetryApproval godoc
// @Summary Retry an approval run
// @Description Resume a failed approval from its last completed step
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Approval external ID"
// @Success 200 {object} ApprovalResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ApprovalResponse
// @Router /admin/approvals/{id}/retry [post]
func (h *AdminHandler) RetryApproval(c *gin.Context) {
	intent, err := h.reviewService.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == saga.ErrIntentNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "approval not found"})
			return
		}
		if intent != nil {
			c.JSON(http.StatusBadGateway, toApprovalResponse(intent))
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toApprovalResponse(intent))
}

// ListUsers godoc
// @Summary List users
// @Description Get all user records
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	response := make([]UserResponse, len(users))
	for i := range users {
		response[i] = toUserResponse(&users[i])
	}

	c.JSON(http.StatusOK, response)
}

func toApprovalResponse(intent *saga.ApprovalIntent) ApprovalResponse {
	return ApprovalResponse{
		ApprovalID:   intent.ExternalID,
		SubmissionID: intent.SubmissionID,
		BountyID:     intent.BountyID,
		UserID:       intent.UserID,
		Reward:       intent.Reward,
		Step:         intent.Step,
		State:        intent.State,
		LastError:    intent.LastError,
	}
}
