package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recaudo/internal/core/id"
	"recaudo/internal/infrastructure/storage/postgres"
)

type fakeHistorySource struct {
	entityType string
	entityID   id.ID
	limit      int
	entries    []postgres.AuditEntry
}

func (f *fakeHistorySource) GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error) {
	f.entityType = entityType
	f.entityID = entityID
	f.limit = limit
	return f.entries, nil
}

func historyContext(t *testing.T, entityType string, entityID id.ID, query string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("GET", "/"+query, nil)
	c.Params = gin.Params{
		{Key: "type", Value: entityType},
		{Key: "id", Value: entityID.String()},
	}
	return c, rec
}

func TestAuditHistoryPassesParamsThrough(t *testing.T) {
	source := &fakeHistorySource{
		entries: []postgres.AuditEntry{{Action: "update"}},
	}
	h := NewAuditHandler(source)
	entityID := id.New()

	c, rec := historyContext(t, "debt", entityID, "?limit=5")
	h.History(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "debt", source.entityType)
	assert.Equal(t, entityID, source.entityID)
	assert.Equal(t, 5, source.limit)
}

func TestAuditHistoryDefaultsTheLimit(t *testing.T) {
	source := &fakeHistorySource{}
	h := NewAuditHandler(source)

	c, rec := historyContext(t, "payment", id.New(), "")
	h.History(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultHistoryLimit, source.limit)
}

func TestAuditHistoryRejectsBadLimit(t *testing.T) {
	source := &fakeHistorySource{}
	h := NewAuditHandler(source)

	for _, raw := range []string{"0", "-3", "9999", "abc"} {
		c, _ := historyContext(t, "debt", id.New(), "?limit="+raw)
		h.History(c)
		assert.True(t, c.IsAborted(), "limit %q accepted", raw)
	}
}
