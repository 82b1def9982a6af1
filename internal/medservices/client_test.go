package medservices

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medcare-portal/internal/resource"
	"github.com/wolfman30/medcare-portal/internal/resource/resourcetest"
)

func TestServiceClient(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/api/v1/service/active", `{"code":200,"data":[{"_id":"s1","name":"Blood test","price":25,"isActive":true}],"msg":"ok"}`).
		JSON(http.MethodGet, "/api/v1/service/package/p1", `{"data":[{"_id":"s1","name":"Blood test","price":25}],"pagination":{"total":3,"page":1,"limit":1,"totalPages":3}}`).
		JSON(http.MethodPatch, "/api/v1/service/s1/toggle", `{"code":200,"data":{"_id":"s1","isActive":false},"msg":"ok"}`)
	client := NewClient(stub)
	ctx := context.Background()

	active, err := client.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Blood test", active[0].Name)

	page, err := client.GetByPackage(ctx, "p1", resource.PageParams(1, 1))
	require.NoError(t, err)
	assert.True(t, page.Pagination.HasNext())

	state, err := client.ToggleActive(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.IsActive)
}

func TestServiceClient_NotFoundPropagates(t *testing.T) {
	client := NewClient(resourcetest.New())
	_, err := client.GetByID(context.Background(), "nope")
	assert.True(t, resource.IsNotFound(err))
}
