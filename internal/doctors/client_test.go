package doctors

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

func TestGetByIDSafe_NilOnNotFound(t *testing.T) {
	stub := resourcetest.New().Fail(http.MethodGet, "/api/v1/doctor/missing", http.StatusNotFound)
	client := NewClient(stub)

	doc, err := client.GetByIDSafe(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestGetByIDSafe_RethrowsOtherErrors(t *testing.T) {
	serverErr := &transport.StatusError{StatusCode: http.StatusInternalServerError, Method: http.MethodGet, Path: "/api/v1/doctor/d1"}
	stub := resourcetest.New().Error(http.MethodGet, "/api/v1/doctor/d1", serverErr)
	client := NewClient(stub)

	doc, err := client.GetByIDSafe(context.Background(), "d1")
	assert.Nil(t, doc)
	assert.Same(t, serverErr, err)
}

func TestGetByIDs_SkipsMissingRecords(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/api/v1/doctor/a", `{"code":200,"data":{"_id":"a","fullName":"Dr. Ada"},"msg":"ok"}`).
		Fail(http.MethodGet, "/api/v1/doctor/b", http.StatusNotFound).
		JSON(http.MethodGet, "/api/v1/doctor/c", `{"code":200,"data":{"_id":"c","fullName":"Dr. Cy"},"msg":"ok"}`)
	client := NewClient(stub, WithBatchLimit(2))

	docs, err := client.GetByIDs(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	ids := []string{docs[0].ID, docs[1].ID}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
	assert.Len(t, stub.Calls(), 3)
}

func TestGetByIDs_PartialResultWithError(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/api/v1/doctor/a", `{"code":200,"data":{"_id":"a","fullName":"Dr. Ada"},"msg":"ok"}`).
		Fail(http.MethodGet, "/api/v1/doctor/b", http.StatusInternalServerError).
		JSON(http.MethodGet, "/api/v1/doctor/c", `{"code":200,"data":{"_id":"c","fullName":"Dr. Cy"},"msg":"ok"}`)
	client := NewClient(stub)

	docs, err := client.GetByIDs(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, transport.StatusCode(err))
	assert.ErrorContains(t, err, `"b"`)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "c", docs[1].ID)
}

func TestGetBySpecialization(t *testing.T) {
	body := `{"data":[{"_id":"d1","fullName":"Dr. Heart","specialization":"s1"}],"pagination":{"total":1,"page":1,"limit":5,"totalPages":1}}`
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/doctor/specialization/s1", body)
	client := NewClient(stub)

	params := resource.Merge(resource.PageParams(1, 5), map[string][]string{"sort": {"experience"}})
	page, err := client.GetBySpecialization(context.Background(), "s1", params)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "s1", page.Data[0].Specialization.ID)
	assert.Equal(t, 5, page.Pagination.Limit)
	assert.Equal(t, "experience", stub.LastCall().Query.Get("sort"))
}

func TestGetWithSpecialization_RequestsPopulation(t *testing.T) {
	body := `{"data":[{"_id":"d1","fullName":"Dr. Heart","specialization":{"_id":"s1","name":"Cardiology"}}],"pagination":{"total":1,"page":1,"limit":10,"totalPages":1}}`
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/doctor/many", body)
	client := NewClient(stub)

	page, err := client.GetWithSpecialization(context.Background(), resource.Options{
		Filter:     map[string]any{"isActive": true},
		Pagination: &resource.Pagination{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.True(t, page.Data[0].Specialization.Populated())
	assert.Equal(t, "Cardiology", page.Data[0].Specialization.Value.Name)

	opts := stub.LastCall().Options()
	assert.Equal(t, map[string]any{"path": "specialization", "select": "name description"}, opts["populateOptions"])
	assert.Equal(t, map[string]any{"isActive": true}, opts["filter"])
}

func TestToggleActiveAndDetails(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodPatch, "/api/v1/doctor/d1/toggle", `{"code":200,"data":{"_id":"d1","isActive":false},"msg":"ok"}`).
		JSON(http.MethodGet, "/api/v1/doctor/d1/details", `{"code":200,"data":{"_id":"d1","fullName":"Dr. Heart","totalPatients":12,"rating":4.5},"msg":"ok"}`)
	client := NewClient(stub)

	state, err := client.ToggleActive(context.Background(), "d1")
	require.NoError(t, err)
	assert.False(t, state.IsActive)

	details, err := client.GetDetails(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Heart", details.FullName)
	assert.Equal(t, 12, details.TotalPatients)
	assert.Equal(t, 4.5, details.Rating)
}

func TestSpecializationsUsePlainCRUD(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/specialization", `{"code":200,"data":[{"_id":"s1","name":"Dermatology","isActive":true}],"msg":"ok"}`)
	client := NewClient(stub)

	specs, err := client.Specializations.GetAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Specialization{{ID: "s1", Name: "Dermatology", IsActive: true}}, specs)
}
