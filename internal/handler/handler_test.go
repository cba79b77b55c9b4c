package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"festboard/internal/domain"
	"festboard/internal/repository"
	"festboard/internal/service"
)

type staticClock struct{ now time.Time }

func (c staticClock) Now() time.Time { return c.now }

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()

	snapshot := &domain.Snapshot{
		Teams: []domain.Team{
			{Name: "Japan", Flag: "🇯🇵"},
			{Name: "Malaysia", Flag: "🇲🇾"},
		},
		Activities: []domain.Activity{
			{
				ID:   "main-performance",
				Name: "Main Performance",
				Type: domain.ActivityJudged,
				Criteria: []domain.Criterion{
					{ID: "c1", Name: "Creativity", MaxPoints: 50},
					{ID: "c2", Name: "Synchronization", MaxPoints: 50},
				},
			},
		},
		VotingSettings: domain.VotingSettings{Mode: domain.VotingPublic},
	}

	repo := repository.NewMemorySnapshotRepository()
	require.NoError(t, repo.Save(context.Background(), snapshot))

	store := service.NewSnapshotStore(repo)
	clock := staticClock{now: time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)}
	scoreboard := service.NewScoreboardService(store, nil, clock, zap.NewNop())
	voting := service.NewVotingService(store, nil, clock, time.Second, zap.NewNop())

	r := chi.NewRouter()
	scoreboardHandler := NewScoreboardHandler(scoreboard)
	bonusHandler := NewAdjustmentHandler(scoreboard, domain.KindBonus)
	votingHandler := NewVotingHandler(voting)

	r.Get("/api/v1/leaderboard", scoreboardHandler.GetLeaderboard)
	r.Get("/api/v1/teams", scoreboardHandler.GetTeams)
	r.Post("/api/v1/scores", scoreboardHandler.SubmitScore)
	r.Get("/api/v1/snapshot", scoreboardHandler.ExportSnapshot)
	r.Put("/api/v1/snapshot", scoreboardHandler.ImportSnapshot)

	r.Route("/api/v1/bonuses", func(r chi.Router) {
		r.Get("/", bonusHandler.List)
		r.Post("/", bonusHandler.Submit)
		r.Put("/{id}/status", bonusHandler.SetStatus)
		r.Delete("/{id}", bonusHandler.Delete)
	})

	r.Route("/api/v1/voting", func(r chi.Router) {
		r.Get("/status", votingHandler.GetStatus)
		r.Post("/open", votingHandler.OpenSession)
		r.Post("/close", votingHandler.CloseSession)
		r.Post("/vote", votingHandler.SubmitVote)
		r.Get("/awards", votingHandler.ListAwards)
	})

	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLeaderboardEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/scores", map[string]interface{}{
		"activity_id": "main-performance",
		"judge_name":  "Abdullah",
		"team_name":   "Japan",
		"points":      map[string]int{"c1": 45, "c2": 50},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []domain.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "Japan", results[0].TeamName)
	assert.Equal(t, 95.0, results[0].TotalPoints)

	// A matching If-None-Match short-circuits with 304.
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	router.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
}

func TestSubmitScoreValidation(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
		wantType string
	}{
		{
			name: "missing judge",
			body: map[string]interface{}{
				"activity_id": "main-performance",
				"team_name":   "Japan",
				"points":      map[string]int{"c1": 10},
			},
			wantCode: http.StatusBadRequest,
			wantType: "validation",
		},
		{
			name: "unknown team",
			body: map[string]interface{}{
				"activity_id": "main-performance",
				"judge_name":  "Abdullah",
				"team_name":   "Atlantis",
				"points":      map[string]int{"c1": 10},
			},
			wantCode: http.StatusNotFound,
			wantType: "not_found",
		},
		{
			name: "points over criterion max",
			body: map[string]interface{}{
				"activity_id": "main-performance",
				"judge_name":  "Abdullah",
				"team_name":   "Japan",
				"points":      map[string]int{"c1": 51},
			},
			wantCode: http.StatusBadRequest,
			wantType: "validation",
		},
		{
			name: "unknown criterion",
			body: map[string]interface{}{
				"activity_id": "main-performance",
				"judge_name":  "Abdullah",
				"team_name":   "Japan",
				"points":      map[string]int{"c9": 10},
			},
			wantCode: http.StatusNotFound,
			wantType: "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/scores", tt.body)
			require.Equal(t, tt.wantCode, rec.Code)

			var resp struct {
				Error struct {
					Type    string `json:"type"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestBonusEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/bonuses/", map[string]interface{}{
		"team_name":  "Malaysia",
		"points":     13,
		"reason":     "Best cleanup crew",
		"awarded_by": "director",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var adjustment domain.Adjustment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adjustment))
	assert.Equal(t, domain.StatusPending, adjustment.Status)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/bonuses/"+adjustment.ID+"/status",
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Approving twice conflicts.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/bonuses/"+adjustment.ID+"/status",
		map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var results []domain.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Equal(t, "Malaysia", results[0].TeamName)
	assert.Equal(t, 13.0, results[0].TotalPoints)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/bonuses/"+adjustment.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/bonuses/"+adjustment.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVotingEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/voting/open", map[string]interface{}{
		"name":          "Crowd Favorite",
		"mode":          "public",
		"deadline":      time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC),
		"winner_points": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A second open conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/voting/open", map[string]interface{}{
		"name":          "Another",
		"deadline":      time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC),
		"winner_points": 50,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	for i := 0; i < 3; i++ {
		rec = doJSON(t, router, http.MethodPost, "/api/v1/voting/vote", map[string]string{
			"team_name":        "Japan",
			"voter_identifier": fmt.Sprintf("voter-%d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/voting/vote", map[string]string{
		"team_name":        "Malaysia",
		"voter_identifier": "voter-0",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/voting/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.VotingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Settings.IsOpen)
	assert.Equal(t, 3, status.TotalVotes)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/voting/close", map[string]string{
		"closed_by": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/voting/awards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var awards []domain.VotingAward
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &awards))
	require.Len(t, awards, 1)
	assert.Equal(t, "Japan", awards[0].TeamName)
	assert.Equal(t, 100, awards[0].Points)

	// Closing with nothing open conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/voting/close", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSnapshotRoundTrip(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/scores", map[string]interface{}{
		"activity_id": "main-performance",
		"judge_name":  "Abdullah",
		"team_name":   "Japan",
		"points":      map[string]int{"c1": 30, "c2": 30},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.ScoreEntries, 1)

	// Import the export back and verify the leaderboard survives.
	req := httptest.NewRequest(http.MethodPut, "/api/v1/snapshot", bytes.NewReader(rec.Body.Bytes()))
	imported := httptest.NewRecorder()
	router.ServeHTTP(imported, req)
	require.Equal(t, http.StatusOK, imported.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/leaderboard", nil)
	var results []domain.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Equal(t, 60.0, results[0].TotalPoints)
}
