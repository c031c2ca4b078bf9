package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appclient "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/client"
	appcloset "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/closet"
	appoutfit "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/outfit"
	appshopping "github.com/ZThygesen/inspired-virtual-closet-sub001/internal/application/shopping"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/client"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/auth"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/imaging"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/persistence/models"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/storage"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/dto"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/middleware"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-battery"

// testEnv wires real services over an in-memory database and object store
type testEnv struct {
	db         *gorm.DB
	storage    *storage.MemoryObjectStorage
	jwt        *auth.JWTService
	blacklist  *auth.InMemoryTokenBlacklist
	clientRepo *persistence.GormClientRepository

	clients  *appclient.ClientService
	profiles *appclient.ProfileService
	auth     *appclient.AuthService
	category *appcloset.CategoryService
	tags     *appcloset.TagService
	items    *appcloset.ItemService
	outfits  *appoutfit.OutfitService
	shopping *appshopping.ShoppingService
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		RefreshSecret:          "test-refresh-secret-32-characters-x",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := persistence.NewDatabaseFromDialector(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.DB.AutoMigrate(models.AllModels()...))

	db := database.DB
	ctx := context.Background()
	categoryRepo := persistence.NewGormCategoryRepository(db)
	tagRepo := persistence.NewGormTagRepository(db)
	require.NoError(t, categoryRepo.EnsureDefaults(ctx))
	require.NoError(t, tagRepo.EnsureDefaults(ctx))

	clientRepo := persistence.NewGormClientRepository(db)
	profileRepo := persistence.NewGormStyleProfileRepository(db)
	itemRepo := persistence.NewGormItemRepository(db)
	outfitRepo := persistence.NewGormOutfitRepository(db)
	shoppingRepo := persistence.NewGormShoppingItemRepository(db)

	store := storage.NewMemoryObjectStorage()
	jwtService := auth.NewJWTService(testJWTConfig())
	blacklist := auth.NewInMemoryTokenBlacklist()

	return &testEnv{
		db:         db,
		storage:    store,
		jwt:        jwtService,
		blacklist:  blacklist,
		clientRepo: clientRepo,
		clients:    appclient.NewClientService(clientRepo, itemRepo, outfitRepo, store, nil),
		profiles:   appclient.NewProfileService(profileRepo, clientRepo, nil),
		auth:       appclient.NewAuthService(clientRepo, jwtService, blacklist, nil),
		category:   appcloset.NewCategoryService(categoryRepo, nil),
		tags:       appcloset.NewTagService(tagRepo, nil),
		items:      appcloset.NewItemService(itemRepo, categoryRepo, tagRepo, clientRepo, store, imaging.NewProcessor(64, 80), nil),
		outfits:    appoutfit.NewOutfitService(outfitRepo, itemRepo, store, nil),
		shopping:   appshopping.NewShoppingService(shoppingRepo, nil),
	}
}

// seedClient stores a client with the test password
func (e *testEnv) seedClient(t *testing.T, admin, super bool) *client.Client {
	t.Helper()
	c, err := client.NewClient(gofakeit.FirstName(), gofakeit.LastName(),
		uuid.NewString()[:8]+"@example.com", testPassword)
	require.NoError(t, err)
	c.SetRoles(admin, super)
	require.NoError(t, e.clientRepo.Create(context.Background(), c))
	return c
}

// claimsFor builds access token claims without signing a token
func claimsFor(c *client.Client) *auth.Claims {
	claims := &auth.Claims{
		ClientID:     c.ID.String(),
		Email:        c.Email,
		IsAdmin:      c.IsAdmin,
		IsSuperAdmin: c.IsSuperAdmin,
		TokenType:    auth.TokenTypeAccess,
	}
	now := time.Now()
	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(15 * time.Minute))
	return claims
}

// newEngine returns a gin engine that authenticates every request as caller.
// A nil caller leaves the request anonymous.
func newEngine(caller *client.Client) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != nil {
			claims := claimsFor(caller)
			c.Set(middleware.JWTClaimsKey, claims)
			c.Set(middleware.JWTClientIDKey, claims.ClientID)
		}
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and, when out is non-nil, its data field
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var env struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env.Response
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func httpRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
