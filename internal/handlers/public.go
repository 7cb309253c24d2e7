package handlers

import (
	"net/http"

	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	bountyService *services.BountyService
}

func NewPublicHandler(bountyService *services.BountyService) *PublicHandler {
	return &PublicHandler{bountyService: bountyService}
}

type StatsResponse struct {
	OpenBounties     int `json:"open_bounties"`
	ClosedBounties   int `json:"closed_bounties"`
	TotalRewardsPaid int `json:"total_rewards_paid"`
}

// GetStats godoc
// @Summary Platform statistics
// @Description Get open bounty count and the total rewards paid out so far
// @Tags public
// @Accept json
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} ErrorResponse
// @Router /stats [get]
func (h *PublicHandler) GetStats(c *gin.Context) {
	bounties, err := h.bountyService.List(c.Request.Context(), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	var stats StatsResponse
	for i := range bounties {
		if bounties[i].Status == models.BountyStatusDone {
			stats.ClosedBounties++
			stats.TotalRewardsPaid += bounties[i].Reward
		} else {
			stats.OpenBounties++
		}
	}

	c.JSON(http.StatusOK, stats)
}

// Health godoc
// @Summary Health check
// @Tags public
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *PublicHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
