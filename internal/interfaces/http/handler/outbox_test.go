package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storeops/backend/internal/application/event"
	"github.com/storeops/backend/internal/domain/shared"
)

// fakeOutboxRepository is a minimal in-memory OutboxRepository for
// exercising the outbox endpoints.
type fakeOutboxRepository struct {
	entries map[uuid.UUID]*shared.OutboxEntry
	updated []*shared.OutboxEntry
}

func newFakeOutboxRepository(entries ...*shared.OutboxEntry) *fakeOutboxRepository {
	repo := &fakeOutboxRepository{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
	for _, e := range entries {
		repo.entries[e.ID] = e
	}
	return repo
}

func (r *fakeOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *fakeOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			dead = append(dead, e)
		}
	}
	if page > 1 {
		return nil, int64(len(dead)), nil
	}
	return dead, int64(len(dead)), nil
}

func (r *fakeOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	return r.entries[id], nil
}

func (r *fakeOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.entries[entry.ID] = entry
	r.updated = append(r.updated, entry)
	return nil
}

func (r *fakeOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func deadOutboxEntry() *shared.OutboxEntry {
	now := time.Now()
	return &shared.OutboxEntry{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		EventID:       uuid.New(),
		EventType:     "cash_session.opened",
		EventVersion:  1,
		AggregateID:   uuid.New(),
		AggregateType: "cash_session",
		Payload:       []byte(`{}`),
		Status:        shared.OutboxStatusDead,
		RetryCount:    5,
		MaxRetries:    5,
		LastError:     "connection refused",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func setupOutboxRouter(repo shared.OutboxRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOutboxHandler(event.NewOutboxService(repo, zap.NewNop()))
	r := gin.New()
	r.GET("/outbox/dead", h.GetDeadLetterEntries)
	r.GET("/outbox/stats", h.GetStats)
	r.GET("/outbox/:id", h.GetEntry)
	r.POST("/outbox/dead/retry", h.RetryAllDeadEntries)
	r.POST("/outbox/:id/retry", h.RetryDeadEntry)
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOutboxHandler_GetDeadLetterEntries(t *testing.T) {
	entry := deadOutboxEntry()
	r := setupOutboxRouter(newFakeOutboxRepository(entry))

	w := doRequest(r, http.MethodGet, "/outbox/dead")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    OutboxListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Data.Total)
	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, entry.ID.String(), resp.Data.Entries[0].ID)
	assert.Equal(t, "DEAD", resp.Data.Entries[0].Status)
	assert.Equal(t, "connection refused", resp.Data.Entries[0].LastError)
}

func TestOutboxHandler_GetDeadLetterEntries_InvalidQuery(t *testing.T) {
	r := setupOutboxRouter(newFakeOutboxRepository())

	w := doRequest(r, http.MethodGet, "/outbox/dead?page=0")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")
}

func TestOutboxHandler_GetEntry(t *testing.T) {
	entry := deadOutboxEntry()
	r := setupOutboxRouter(newFakeOutboxRepository(entry))

	w := doRequest(r, http.MethodGet, "/outbox/"+entry.ID.String())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data OutboxEntryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entry.EventType, resp.Data.EventType)
	assert.Equal(t, 5, resp.Data.RetryCount)
}

func TestOutboxHandler_GetEntry_InvalidID(t *testing.T) {
	r := setupOutboxRouter(newFakeOutboxRepository())

	w := doRequest(r, http.MethodGet, "/outbox/not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOutboxHandler_GetEntry_NotFound(t *testing.T) {
	r := setupOutboxRouter(newFakeOutboxRepository())

	w := doRequest(r, http.MethodGet, "/outbox/"+uuid.NewString())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ENTRY_NOT_FOUND")
}

func TestOutboxHandler_RetryDeadEntry(t *testing.T) {
	entry := deadOutboxEntry()
	repo := newFakeOutboxRepository(entry)
	r := setupOutboxRouter(repo)

	w := doRequest(r, http.MethodPost, "/outbox/"+entry.ID.String()+"/retry")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data OutboxEntryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PENDING", resp.Data.Status)
	assert.Equal(t, 0, resp.Data.RetryCount)
	assert.Len(t, repo.updated, 1)
}

func TestOutboxHandler_RetryDeadEntry_NotDead(t *testing.T) {
	entry := deadOutboxEntry()
	entry.Status = shared.OutboxStatusSent
	r := setupOutboxRouter(newFakeOutboxRepository(entry))

	w := doRequest(r, http.MethodPost, "/outbox/"+entry.ID.String()+"/retry")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS")
}

func TestOutboxHandler_RetryAllDeadEntries(t *testing.T) {
	repo := newFakeOutboxRepository(deadOutboxEntry(), deadOutboxEntry(), deadOutboxEntry())
	r := setupOutboxRouter(repo)

	w := doRequest(r, http.MethodPost, "/outbox/dead/retry")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data RetryAllResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Data.Count)
	assert.Len(t, repo.updated, 3)
}

func TestOutboxHandler_GetStats(t *testing.T) {
	sent := deadOutboxEntry()
	sent.Status = shared.OutboxStatusSent
	pending := deadOutboxEntry()
	pending.Status = shared.OutboxStatusPending
	r := setupOutboxRouter(newFakeOutboxRepository(deadOutboxEntry(), sent, pending))

	w := doRequest(r, http.MethodGet, "/outbox/stats")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data OutboxStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Dead)
	assert.Equal(t, int64(1), resp.Data.Sent)
	assert.Equal(t, int64(1), resp.Data.Pending)
	assert.Equal(t, int64(3), resp.Data.Total)
}
