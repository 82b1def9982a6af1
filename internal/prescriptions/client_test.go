package prescriptions

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medcare-portal/internal/resource"
	"github.com/wolfman30/medcare-portal/internal/resource/resourcetest"
)

func TestGetByPatient_FiltersAndPopulatesDoctor(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/prescription/many",
		`{"data":[{"_id":"rx1","doctor":{"_id":"d1","fullName":"Dr. Heart"},"patient":"u1","medications":[{"name":"Amoxicillin","dosage":"500mg"}]}],"pagination":{"total":1,"page":1,"limit":10,"totalPages":1}}`)
	client := NewClient(stub)

	page, err := client.GetByPatient(context.Background(), "u1", resource.PageParams(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	rx := page.Data[0]
	assert.Equal(t, "Dr. Heart", rx.Doctor.Value.FullName)
	assert.Equal(t, "u1", rx.Patient.ID)
	assert.Equal(t, "Amoxicillin", rx.Medications[0].Name)

	call := stub.LastCall()
	assert.Equal(t, "1", call.Query.Get("page"))
	opts := call.Options()
	assert.Equal(t, map[string]any{"patient": "u1"}, opts["filter"])
	assert.Equal(t, map[string]any{"createdAt": -1.0}, opts["sort"])
	assert.Equal(t, map[string]any{"path": "doctor", "select": "fullName email"}, opts["populateOptions"])
}

func TestGetByPatient_KeepsCallerOptions(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/prescription/many",
		`{"data":[],"pagination":{"total":0,"page":1,"limit":5,"totalPages":0}}`)
	client := NewClient(stub)

	caller, err := resource.Options{
		Filter: map[string]any{"diagnosis": resource.Regex("flu"), "patient": "someone-else"},
		Sort:   resource.Asc("followUpDate").Then("createdAt", true),
	}.Values()
	require.NoError(t, err)

	_, err = client.GetByPatient(context.Background(), "u1", resource.Merge(caller, resource.PageParams(1, 5)))
	require.NoError(t, err)

	call := stub.LastCall()
	assert.Equal(t, "5", call.Query.Get("limit"))
	assert.Contains(t, call.Query.Get("options"), `"sort":{"followUpDate":1,"createdAt":-1}`)
	opts := call.Options()
	assert.Equal(t, map[string]any{
		"patient":   "u1",
		"diagnosis": map[string]any{"$regex": "flu", "$options": "i"},
	}, opts["filter"])
	assert.Equal(t, map[string]any{"path": "doctor", "select": "fullName email"}, opts["populateOptions"])
}

func TestGetByPatient_RejectsMalformedOptions(t *testing.T) {
	client := NewClient(resourcetest.New())

	_, err := client.GetByPatient(context.Background(), "u1", url.Values{"options": {"{"}})
	assert.Error(t, err)
}

func TestGetByDoctorAndDetails(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodGet, "/api/v1/prescription/doctor/d1", `{"code":200,"data":[{"_id":"rx1","doctor":"d1","patient":"u1"}],"msg":"ok"}`).
		JSON(http.MethodGet, "/api/v1/prescription/rx1/details", `{"code":200,"data":{"_id":"rx1","doctor":{"_id":"d1","fullName":"Dr. Heart"},"patient":{"_id":"u1","fullName":"Al"},"diagnosis":"flu"},"msg":"ok"}`)
	client := NewClient(stub)
	ctx := context.Background()

	// Plain list envelopes come back as a single synthetic page.
	page, err := client.GetByDoctor(ctx, "d1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.False(t, page.Pagination.HasNext())

	details, err := client.GetDetails(ctx, "rx1")
	require.NoError(t, err)
	assert.Equal(t, "flu", details.Diagnosis)
	assert.True(t, details.Patient.Populated())
}
