package handler

import (
	"context"
	"net/http"
	"testing"

	appclient "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/dto"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientRoutes(env *testEnv, caller *client.Client) *gin.Engine {
	r := newEngine(caller)
	h := NewClientHandler(env.clients, env.profiles)
	r.GET("/clients", h.List)
	r.POST("/clients", h.Create)
	r.GET("/clients/:id", h.GetByID)
	r.PUT("/clients/:id", h.Update)
	r.DELETE("/clients/:id", h.Delete)
	r.POST("/clients/:id/credits", h.AddCredits)
	r.GET("/clients/:id/profile", h.GetProfile)
	r.PUT("/clients/:id/profile", h.UpdateProfile)
	return r
}

func newClientRequest() appclient.CreateClientRequest {
	return appclient.CreateClientRequest{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     uuid.NewString()[:8] + "@example.com",
		Password:  "long-enough-password",
	}
}

func TestClientHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedClient(t, true, false)
	super := env.seedClient(t, true, true)

	t.Run("admin creates client", func(t *testing.T) {
		req := newClientRequest()
		req.Credits = 3
		w := doJSON(t, clientRoutes(env, admin), http.MethodPost, "/clients", req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var data appclient.ClientResponse
		decode(t, w, &data)
		assert.Equal(t, req.Email, data.Email)
		assert.Equal(t, 3, data.Credits)
		assert.False(t, data.IsAdmin)
	})

	t.Run("admin cannot grant admin", func(t *testing.T) {
		req := newClientRequest()
		req.IsAdmin = true
		w := doJSON(t, clientRoutes(env, admin), http.MethodPost, "/clients", req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("super admin grants admin", func(t *testing.T) {
		req := newClientRequest()
		req.IsAdmin = true
		w := doJSON(t, clientRoutes(env, super), http.MethodPost, "/clients", req)
		require.Equal(t, http.StatusCreated, w.Code)

		var data appclient.ClientResponse
		decode(t, w, &data)
		assert.True(t, data.IsAdmin)
	})

	t.Run("duplicate email", func(t *testing.T) {
		req := newClientRequest()
		req.Email = admin.Email
		w := doJSON(t, clientRoutes(env, admin), http.MethodPost, "/clients", req)
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, decode(t, w, nil).Error.Code)
	})

	t.Run("short password", func(t *testing.T) {
		req := newClientRequest()
		req.Password = "short"
		w := doJSON(t, clientRoutes(env, admin), http.MethodPost, "/clients", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClientHandler_List(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedClient(t, true, false)
	for i := 0; i < 4; i++ {
		env.seedClient(t, false, false)
	}

	w := doJSON(t, clientRoutes(env, admin), http.MethodGet, "/clients?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data []appclient.ClientResponse
	resp := decode(t, w, &data)
	assert.Len(t, data, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	w = doJSON(t, clientRoutes(env, admin), http.MethodGet, "/clients?order_by=password_hash", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_GetByID(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedClient(t, true, false)
	c := env.seedClient(t, false, false)

	w := doJSON(t, clientRoutes(env, admin), http.MethodGet, "/clients/"+c.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data appclient.ClientResponse
	decode(t, w, &data)
	assert.Equal(t, c.FullName(), data.FullName)

	w = doJSON(t, clientRoutes(env, admin), http.MethodGet, "/clients/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, clientRoutes(env, admin), http.MethodGet, "/clients/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedClient(t, true, false)
	c := env.seedClient(t, false, false)

	req := appclient.UpdateClientRequest{
		FirstName: "Edie",
		LastName:  "Styles",
		Email:     c.Email,
		Phone:     "555-0100",
	}
	w := doJSON(t, clientRoutes(env, admin), http.MethodPut, "/clients/"+c.ID.String(), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data appclient.ClientResponse
	decode(t, w, &data)
	assert.Equal(t, "Edie Styles", data.FullName)
	assert.Equal(t, "555-0100", data.Phone)
}

func TestClientHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedClient(t, true, false)
	super := env.seedClient(t, true, true)
	c := env.seedClient(t, false, false)

	t.Run("cannot delete self", func(t *testing.T) {
		w := doJSON(t, clientRoutes(env, admin), http.MethodDelete, "/clients/"+admin.ID.String(), nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeCannotDeleteSelf, decode(t, w, nil).Error.Code)
	})

	t.Run("admin cannot delete super admin", func(t *testing.T) {
		w := doJSON(t, clientRoutes(env, admin), http.MethodDelete, "/clients/"+super.ID.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("deletes client", func(t *testing.T) {
		w := doJSON(t, clientRoutes(env, admin), http.MethodDelete, "/clients/"+c.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		_, err := env.clientRepo.FindByID(context.Background(), c.ID)
		assert.Error(t, err)
	})
}

func TestClientHandler_AddCredits(t *testing.T) {
	env := newTestEnv(t)
	super := env.seedClient(t, true, true)
	c := env.seedClient(t, false, false)

	w := doJSON(t, clientRoutes(env, super), http.MethodPost, "/clients/"+c.ID.String()+"/credits", appclient.AddCreditsRequest{Amount: 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data appclient.ClientResponse
	decode(t, w, &data)
	assert.Equal(t, 5, data.Credits)

	w = doJSON(t, clientRoutes(env, super), http.MethodPost, "/clients/"+c.ID.String()+"/credits", map[string]int{"amount": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_Profile(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedClient(t, true, false)
	c := env.seedClient(t, false, false)
	path := "/clients/" + c.ID.String() + "/profile"

	w := doJSON(t, clientRoutes(env, c), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var empty appclient.StyleProfileResponse
	decode(t, w, &empty)
	assert.Empty(t, empty.Styles)
	assert.Nil(t, empty.UpdatedAt)

	req := appclient.StyleProfileRequest{
		Summary: "Classic with a bold accent",
		Styles:  []string{"classic", "minimal"},
		Colors:  []string{"#1a1a1a", "#c0392b"},
		Sizes:   map[string]string{"dress": "M"},
	}
	w = doJSON(t, clientRoutes(env, admin), http.MethodPut, path, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, clientRoutes(env, c), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got appclient.StyleProfileResponse
	decode(t, w, &got)
	assert.Equal(t, req.Styles, got.Styles)
	assert.Equal(t, "M", got.Sizes["dress"])
	assert.NotNil(t, got.UpdatedAt)

	req.Colors = []string{"red"}
	w = doJSON(t, clientRoutes(env, admin), http.MethodPut, path, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
