package users

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medcare-portal/internal/resource"
	"github.com/wolfman30/medcare-portal/internal/resource/resourcetest"
	"github.com/wolfman30/medcare-portal/internal/transport"
)

const emptyPage = `{"data":[],"pagination":{"total":0,"page":1,"limit":10,"totalPages":0}}`

func TestGetByRole_AddsRoleFilter(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/user/many",
		`{"data":[{"_id":"u1","fullName":"Ann","email":"ann@example.com","role":"doctor"}],"pagination":{"total":1,"page":1,"limit":10,"totalPages":1}}`)
	client := NewClient(stub, 0)

	page, err := client.GetByRole(context.Background(), RoleDoctor, resource.Options{
		Filter: map[string]any{"isActive": true},
		Sort:   resource.Desc("createdAt"),
	})
	require.NoError(t, err)
	assert.Equal(t, "doctor", page.Data[0].Role)

	opts := stub.LastCall().Options()
	assert.Equal(t, map[string]any{"role": "doctor", "isActive": true}, opts["filter"])
	assert.Equal(t, map[string]any{"createdAt": -1.0}, opts["sort"])
}

func TestGetByRole_DoesNotMutateCallerFilter(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/user/many", emptyPage)
	client := NewClient(stub, 0)

	filter := map[string]any{"isActive": true}
	_, err := client.GetByRole(context.Background(), RoleAdmin, resource.Options{Filter: filter})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"isActive": true}, filter)
}

func TestPatients(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/user/many", emptyPage)
	client := NewClient(stub, 0)

	page, err := client.Patients(context.Background(), 3, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	call := stub.LastCall()
	assert.Equal(t, "3", call.Query.Get("page"))
	assert.Equal(t, "20", call.Query.Get("limit"))
	assert.Equal(t, map[string]any{"role": "patient"}, call.Options()["filter"])
}

func TestGetByIDs_OrderAndMissing(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/api/v1/user/u2", `{"code":200,"data":{"_id":"u2","fullName":"Bo","email":"bo@example.com"},"msg":"ok"}`).
		JSON(http.MethodGet, "/api/v1/user/u1", `{"code":200,"data":{"_id":"u1","fullName":"Al","email":"al@example.com"},"msg":"ok"}`)
	client := NewClient(stub, 1)

	got, err := client.GetByIDs(context.Background(), []string{"u2", "gone", "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].ID)
	assert.Equal(t, "u1", got[1].ID)
}

func TestGetByIDs_PartialResultWithError(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/api/v1/user/u1", `{"code":200,"data":{"_id":"u1","fullName":"Al","email":"al@example.com"},"msg":"ok"}`).
		Fail(http.MethodGet, "/api/v1/user/u2", http.StatusForbidden)
	client := NewClient(stub, 0)

	got, err := client.GetByIDs(context.Background(), []string{"u1", "u2"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, transport.StatusCode(err))
	assert.ErrorContains(t, err, `"u2"`)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].ID)
}

func TestDetailsAndToggle(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/api/v1/user/u1/details", `{"code":200,"data":{"_id":"u1","fullName":"Al","email":"al@example.com","totalSchedules":4,"totalSpent":310.5},"msg":"ok"}`).
		JSON(http.MethodPatch, "/api/v1/user/u1/toggle", `{"code":200,"data":{"_id":"u1","isActive":true},"msg":"ok"}`)
	client := NewClient(stub, 0)

	details, err := client.GetDetails(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, details.TotalSchedules)
	assert.Equal(t, 310.5, details.TotalSpent)
	assert.Equal(t, "Al", details.FullName)

	state, err := client.ToggleActive(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, state.IsActive)
}
