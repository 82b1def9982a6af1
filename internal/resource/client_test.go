package resource

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/medcare-portal/internal/resource/resourcetest"
)

type room struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

type healthPackage struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

func TestGetByID_UnwrapsEnvelope(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room/1", `{"code":200,"data":{"id":"1"},"msg":"ok"}`)
	c := New[room](stub, "/api/v1/room")

	got, err := c.GetByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, &room{ID: "1"}, got)
}

func TestGetByID_NullDataIsError(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room/1", `{"code":200,"data":null,"msg":"ok"}`)
	c := New[room](stub, "/api/v1/room")

	_, err := c.GetByID(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGetByID_PropagatesTransportErrorUnchanged(t *testing.T) {
	stub := resourcetest.New().Fail(http.MethodGet, "/api/v1/room/missing", http.StatusNotFound)
	c := New[room](stub, "api/v1/room/")

	_, err := c.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "/api/v1/room", c.BasePath())
}

func TestGetPaginated_ReturnsWholeEnvelope(t *testing.T) {
	body := `{"data":[{"id":"1"}],"pagination":{"total":1,"page":1,"limit":10,"totalPages":1}}`
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room/many", body)
	c := New[room](stub, "/api/v1/room")

	page, err := c.GetPaginated(context.Background(), PageParams(1, 10))
	require.NoError(t, err)
	assert.Equal(t, []room{{ID: "1"}}, page.Data)
	assert.Equal(t, PaginationInfo{Total: 1, Page: 1, Limit: 10, TotalPages: 1}, page.Pagination)
	assert.False(t, page.Pagination.HasNext())

	call := stub.LastCall()
	assert.Equal(t, "1", call.Query.Get("page"))
	assert.Equal(t, "10", call.Query.Get("limit"))
}

func TestGetPaginated_NoDefaultsInjected(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room/many", `{"data":[],"pagination":{"total":0,"page":1,"limit":10,"totalPages":0}}`)
	c := New[room](stub, "/api/v1/room")

	_, err := c.GetPaginated(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stub.LastCall().Query)
}

func TestGetMany_PaginatedShape(t *testing.T) {
	body := `{"data":[{"id":"1"}],"pagination":{"total":1,"page":1,"limit":10,"totalPages":1}}`
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room/many", body)
	c := New[room](stub, "/api/v1/room")

	got, err := c.GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []room{{ID: "1"}}, got)
}

func TestGetMany_PlainShape(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room/many", `{"code":200,"data":[{"id":"1"},{"id":"2"}],"msg":"ok"}`)
	c := New[room](stub, "/api/v1/room")

	got, err := c.GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []room{{ID: "1"}, {ID: "2"}}, got)
}

func TestGetAll_UsesBasePathAndParams(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room", `{"code":200,"data":[{"id":"9"}],"msg":"ok"}`)
	c := New[room](stub, "/api/v1/room")

	got, err := c.GetAll(context.Background(), url.Values{"floor": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, []room{{ID: "9"}}, got)
	assert.Equal(t, "2", stub.LastCall().Query.Get("floor"))
}

func TestCreateThenFetchRoundTrip(t *testing.T) {
	record := `{"code":200,"data":{"_id":"p1","title":"Basic Checkup"},"msg":"created"}`
	stub := resourcetest.New().
		JSON(http.MethodPost, "/api/v1/package", record).
		JSON(http.MethodGet, "/api/v1/package/p1", record)
	c := New[healthPackage](stub, "/api/v1/package")

	created, err := c.Create(context.Background(), map[string]string{"title": "Basic Checkup"})
	require.NoError(t, err)
	assert.Equal(t, &healthPackage{ID: "p1", Title: "Basic Checkup"}, created)
	assert.JSONEq(t, `{"title":"Basic Checkup"}`, string(stub.Calls()[0].Body))

	fetched, err := c.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestCreateMany_AcceptsEnvelopeOrBareArray(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodPost, "/api/v1/room/createMany", `[{"id":"a"},{"id":"b"}]`)
	c := New[room](stub, "/api/v1/room")

	got, err := c.CreateMany(context.Background(), []any{room{Title: "A"}, room{Title: "B"}})
	require.NoError(t, err)
	assert.Equal(t, []room{{ID: "a"}, {ID: "b"}}, got)

	stub.JSON(http.MethodPost, "/api/v1/room/createMany", `{"code":201,"data":[{"id":"c"}],"msg":"ok"}`)
	got, err = c.CreateMany(context.Background(), []any{room{Title: "C"}})
	require.NoError(t, err)
	assert.Equal(t, []room{{ID: "c"}}, got)
}

func TestUpdateAndUpdateMany(t *testing.T) {
	stub := resourcetest.New().
		JSON(http.MethodPut, "/api/v1/room/1", `{"code":200,"data":{"id":"1","title":"New"},"msg":"ok"}`).
		JSON(http.MethodPatch, "/api/v1/room/many", `{"code":200,"data":[{"id":"1"},{"id":"2"}],"msg":"ok"}`)
	c := New[room](stub, "/api/v1/room")

	updated, err := c.Update(context.Background(), "1", map[string]string{"title": "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	many, err := c.UpdateMany(context.Background(), []string{"1", "2"}, map[string]bool{"isActive": false})
	require.NoError(t, err)
	assert.Len(t, many, 2)
	assert.JSONEq(t, `{"ids":["1","2"],"data":{"isActive":false}}`, string(stub.LastCall().Body))
}

func TestDelete_ReturnsOpaqueData(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodDelete, "/api/v1/room/1", `{"code":200,"data":{"deletedCount":1},"msg":"deleted"}`)
	c := New[room](stub, "/api/v1/room")

	raw, err := c.Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deletedCount":1}`, string(raw))
}

func TestPathEscapesSegments(t *testing.T) {
	c := New[room](resourcetest.New(), "/api/v1/room")
	assert.Equal(t, "/api/v1/room/a%2Fb/toggle", c.Path("a/b", "toggle"))
}

func TestFullResponse(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodPatch, "/api/v1/room/1/toggle", `{"code":200,"data":{"isActive":true},"msg":"ok"}`)
	c := New[room](stub, "/api/v1/room")

	type toggled struct {
		IsActive bool `json:"isActive"`
	}
	got, err := FullResponse[toggled](context.Background(), c, http.MethodPatch, c.Path("1", "toggle"), nil, nil)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = FullResponse[toggled](context.Background(), c, "TRACE", c.Path("1"), nil, nil)
	assert.Error(t, err)
}

func TestDecodeErrorsAreReported(t *testing.T) {
	stub := resourcetest.New().JSON(http.MethodGet, "/api/v1/room/many", `{"data":[`)
	c := New[room](stub, "/api/v1/room")

	_, err := c.GetMany(context.Background(), nil)
	require.Error(t, err)
}

func TestNetworkErrorPropagatedAsIs(t *testing.T) {
	boom := errors.New("connection reset")
	stub := resourcetest.New().Error(http.MethodGet, "/api/v1/room", boom)
	c := New[room](stub, "/api/v1/room")

	_, err := c.GetAll(context.Background(), nil)
	assert.Same(t, boom, err)
}
