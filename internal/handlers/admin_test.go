package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable/airtabletest"
	"github.com/cuesoftinc/cuelabs-backend/internal/database"
	"github.com/cuesoftinc/cuelabs-backend/internal/middleware"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/cuesoftinc/cuelabs-backend/internal/saga"
	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const adminEmail = "admin@cuesoft.io"

func setupAdminRouter(t *testing.T) (*airtabletest.Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	srv := airtabletest.NewServer()
	t.Cleanup(srv.Close)

	db, err := database.Connect(":memory:")
	assert.NoError(t, err)
	assert.NoError(t, database.Migrate(db))

	base := srv.Client()
	userRepo := repository.NewUserRepository(base)
	earningRepo := repository.NewEarningRepository(base)
	reviewService := services.NewReviewService(
		repository.NewSubmissionRepository(base),
		repository.NewBountyRepository(base),
		userRepo,
		earningRepo,
		saga.NewStore(db),
	)
	userService := services.NewUserService(userRepo, earningRepo)
	handler := NewAdminHandler(reviewService, userService)

	authMiddleware := middleware.NewAuthMiddleware(nil, true)
	adminMiddleware := middleware.NewAdminMiddleware([]string{adminEmail})

	router := gin.New()
	admin := router.Group("/api/v1/admin",
		authMiddleware.RequireAuth(), adminMiddleware.RequireAdmin())
	admin.GET("/users", handler.ListUsers)
	admin.GET("/submissions", handler.ListSubmissions)
	admin.POST("/submissions/:id/accept", handler.AcceptSubmission)
	admin.POST("/submissions/:id/decline", handler.DeclineSubmission)
	admin.GET("/approvals", handler.ListApprovals)
	admin.POST("/approvals/:id/retry", handler.RetryApproval)

	return srv, router
}

func adminRequest(router *gin.Engine, method, path, email string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Test-User-ID", "recADMIN000000001")
	req.Header.Set("X-Test-Email", email)
	router.ServeHTTP(w, req)
	return w
}

func seedReviewScenario(srv *airtabletest.Server) (bountyID, userID, submissionID string) {
	userID = srv.Seed(repository.TableUsers, map[string]any{
		"Name": "alice", "Email": "alice@example.com",
		"Wallet Balance": 0, "Total Earnings": 0, "Version": 1,
	})
	bountyID = srv.Seed(repository.TableBounties, map[string]any{
		"Name": "Fix login flow", "Reward": 100,
		"Status": models.BountyStatusInProgress, "Participants": []string{userID}, "Version": 1,
	})
	srv.SetFields(repository.TableUsers, userID, map[string]any{
		"Active Bounties":    []string{bountyID},
		"Submitted Bounties": []string{bountyID},
	})
	submissionID = srv.Seed(repository.TableSubmissions, map[string]any{
		"URL": "https://github.com/org/repo/pull/1", "Status": models.SubmissionStatusNew,
		"User": []string{userID}, "Bounties": []string{bountyID}, "Version": 1,
	})
	return
}

func TestAdminHandler_RequiresAdminEmail(t *testing.T) {
	_, router := setupAdminRouter(t)

	w := adminRequest(router, http.MethodGet, "/api/v1/admin/submissions", "dev@example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = adminRequest(router, http.MethodGet, "/api/v1/admin/submissions", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_AcceptSubmission(t *testing.T) {
	srv, router := setupAdminRouter(t)

	bountyID, userID, submissionID := seedReviewScenario(srv)

	w := adminRequest(router, http.MethodPost,
		"/api/v1/admin/submissions/"+submissionID+"/accept", adminEmail)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp ApprovalResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, saga.StateCompleted, resp.State)
	assert.Equal(t, saga.FinalStep, resp.Step)
	assert.Equal(t, submissionID, resp.SubmissionID)
	assert.Equal(t, bountyID, resp.BountyID)
	assert.Equal(t, 100, resp.Reward)
	assert.NotEmpty(t, resp.ApprovalID)

	assert.Equal(t, float64(100),
		srv.Fields(repository.TableUsers, userID)["Wallet Balance"])

	// Accepting the same submission again returns the completed run.
	w = adminRequest(router, http.MethodPost,
		"/api/v1/admin/submissions/"+submissionID+"/accept", adminEmail)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminHandler_AcceptPartialFailureReportsState(t *testing.T) {
	srv, router := setupAdminRouter(t)

	_, userID, submissionID := seedReviewScenario(srv)

	srv.SetHook(func(method, tbl, id string) int {
		if method == http.MethodPatch && tbl == repository.TableUsers && id == userID {
			return http.StatusServiceUnavailable
		}
		return 0
	})

	w := adminRequest(router, http.MethodPost,
		"/api/v1/admin/submissions/"+submissionID+"/accept", adminEmail)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp ApprovalResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, saga.StateFailed, resp.State)
	assert.Equal(t, saga.StepCloseBounty, resp.Step)
	assert.NotEmpty(t, resp.LastError)

	srv.SetHook(nil)

	w = adminRequest(router, http.MethodPost,
		"/api/v1/admin/approvals/"+resp.ApprovalID+"/retry", adminEmail)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, saga.StateCompleted, resp.State)
}

func TestAdminHandler_DeclineSubmission(t *testing.T) {
	srv, router := setupAdminRouter(t)

	_, _, submissionID := seedReviewScenario(srv)

	w := adminRequest(router, http.MethodPost,
		"/api/v1/admin/submissions/"+submissionID+"/decline", adminEmail)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp SubmissionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.SubmissionStatusDeclined, resp.Status)

	w = adminRequest(router, http.MethodPost,
		"/api/v1/admin/submissions/"+submissionID+"/decline", adminEmail)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminHandler_RetryUnknownApproval(t *testing.T) {
	_, router := setupAdminRouter(t)

	w := adminRequest(router, http.MethodPost,
		"/api/v1/admin/approvals/no-such-id/retry", adminEmail)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
