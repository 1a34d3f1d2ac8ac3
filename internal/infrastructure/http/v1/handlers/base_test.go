package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "recaudo/internal/core/context"
	"recaudo/internal/core/id"
)

func testContext(t *testing.T, user *appctx.UserContext) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("POST", "/", nil)
	if user != nil {
		req = req.WithContext(appctx.WithUser(req.Context(), user))
	}
	c.Request = req
	return c
}

func TestOwnerScopeBodyPinsProviderToOwnID(t *testing.T) {
	h := NewBaseHandler()
	providerID := id.New()
	otherID := id.New().String()

	c := testContext(t, &appctx.UserContext{
		UserID: providerID.String(),
		Role:   "provider",
	})

	// A provider naming another owner in the body still gets scoped to
	// itself.
	ownerID, ok := h.OwnerScopeBody(c, &otherID, "ownerId")
	require.True(t, ok)
	require.NotNil(t, ownerID)
	assert.Equal(t, providerID, *ownerID)

	// Same when the body omits the field entirely.
	ownerID, ok = h.OwnerScopeBody(c, nil, "ownerId")
	require.True(t, ok)
	require.NotNil(t, ownerID)
	assert.Equal(t, providerID, *ownerID)
}

func TestOwnerScopeBodyHonorsBodyForOperators(t *testing.T) {
	h := NewBaseHandler()
	target := id.New()
	raw := target.String()

	c := testContext(t, &appctx.UserContext{
		UserID: id.New().String(),
		Role:   "operator",
	})

	ownerID, ok := h.OwnerScopeBody(c, &raw, "ownerId")
	require.True(t, ok)
	require.NotNil(t, ownerID)
	assert.Equal(t, target, *ownerID)

	ownerID, ok = h.OwnerScopeBody(c, nil, "ownerId")
	require.True(t, ok)
	assert.Nil(t, ownerID)
}

func TestOwnerScopeBodyRejectsMalformedID(t *testing.T) {
	h := NewBaseHandler()
	raw := "not-a-uuid"

	c := testContext(t, &appctx.UserContext{
		UserID: id.New().String(),
		Role:   "operator",
	})

	_, ok := h.OwnerScopeBody(c, &raw, "ownerId")
	assert.False(t, ok)
	assert.True(t, c.IsAborted())
}
