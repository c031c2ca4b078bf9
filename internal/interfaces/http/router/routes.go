package router

import (
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/handler"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the API handlers mounted by ClosetAPI
type Handlers struct {
	Auth       *handler.AuthHandler
	Clients    *handler.ClientHandler
	Categories *handler.CategoryHandler
	Tags       *handler.TagHandler
	Items      *handler.ItemHandler
	Outfits    *handler.OutfitHandler
	Shopping   *handler.ShoppingHandler
}

// Options tune the closet API groups
type Options struct {
	// AuthLimit throttles the public token endpoints. Nil disables it.
	AuthLimit gin.HandlerFunc
	// Idempotency guards every POST route. Nil disables it.
	Idempotency gin.HandlerFunc
}

// ClosetAPI builds the domain groups of the closet API.
// Authentication runs on the router; groups only add role guards.
func ClosetAPI(h Handlers, opts Options) []RouteRegistrar {
	admin := middleware.RequireAdmin()
	superAdmin := middleware.RequireSuperAdmin()
	adminOrOwner := middleware.RequireClientAccess("id")

	// post chains the non-nil guards, then the idempotency check, then h
	post := func(h gin.HandlerFunc, guards ...gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(guards)+2)
		for _, g := range guards {
			if g != nil {
				chain = append(chain, g)
			}
		}
		if opts.Idempotency != nil {
			chain = append(chain, opts.Idempotency)
		}
		return append(chain, h)
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", post(h.Auth.Login, opts.AuthLimit)...)
	authRoutes.POST("/refresh", post(h.Auth.RefreshToken, opts.AuthLimit)...)
	authRoutes.POST("/logout", post(h.Auth.Logout)...)
	authRoutes.GET("/me", h.Auth.GetCurrentClient)
	authRoutes.PUT("/password", h.Auth.ChangePassword)

	clientRoutes := NewDomainGroup("clients", "/clients")
	clientRoutes.GET("", admin, h.Clients.List)
	clientRoutes.POST("", post(h.Clients.Create, admin)...)
	clientRoutes.GET("/:id", adminOrOwner, h.Clients.GetByID)
	clientRoutes.PUT("/:id", admin, h.Clients.Update)
	clientRoutes.DELETE("/:id", admin, h.Clients.Delete)
	clientRoutes.POST("/:id/credits", post(h.Clients.AddCredits, superAdmin)...)
	clientRoutes.GET("/:id/profile", adminOrOwner, h.Clients.GetProfile)
	clientRoutes.PUT("/:id/profile", admin, h.Clients.UpdateProfile)

	itemRoutes := clientRoutes.Group("items", "/:id/items")
	itemRoutes.GET("", adminOrOwner, h.Items.List)
	itemRoutes.GET("/summary", adminOrOwner, h.Items.Summary)
	itemRoutes.POST("", post(h.Items.Upload, admin)...)
	itemRoutes.GET("/:itemId", adminOrOwner, h.Items.GetByID)
	itemRoutes.PUT("/:itemId", admin, h.Items.Update)
	itemRoutes.DELETE("/:itemId", admin, h.Items.Delete)

	outfitRoutes := clientRoutes.Group("outfits", "/:id/outfits")
	outfitRoutes.GET("", adminOrOwner, h.Outfits.List)
	outfitRoutes.GET("/:outfitId", adminOrOwner, h.Outfits.GetByID)
	outfitRoutes.POST("", post(h.Outfits.Create, admin)...)
	outfitRoutes.PUT("/:outfitId", admin, h.Outfits.Update)
	outfitRoutes.DELETE("/:outfitId", admin, h.Outfits.Delete)

	shoppingRoutes := clientRoutes.Group("shopping", "/:id/shopping")
	shoppingRoutes.GET("", adminOrOwner, h.Shopping.List)
	shoppingRoutes.POST("", post(h.Shopping.Create, admin)...)
	shoppingRoutes.PUT("/:shoppingId", admin, h.Shopping.Update)
	shoppingRoutes.PATCH("/:shoppingId/purchased", adminOrOwner, h.Shopping.SetPurchased)
	shoppingRoutes.DELETE("/:shoppingId", admin, h.Shopping.Delete)

	categoryRoutes := NewDomainGroup("categories", "/categories")
	categoryRoutes.GET("", h.Categories.List)
	categoryRoutes.POST("", post(h.Categories.Create, admin)...)
	categoryRoutes.PUT("/:id", admin, h.Categories.Update)
	categoryRoutes.DELETE("/:id", admin, h.Categories.Delete)

	tagGroupRoutes := NewDomainGroup("tag-groups", "/tag-groups")
	tagGroupRoutes.GET("", h.Tags.ListGroups)
	tagGroupRoutes.POST("", post(h.Tags.CreateGroup, admin)...)
	tagGroupRoutes.PUT("/:id", admin, h.Tags.UpdateGroup)
	tagGroupRoutes.DELETE("/:id", admin, h.Tags.DeleteGroup)

	tagRoutes := NewDomainGroup("tags", "/tags")
	tagRoutes.POST("", post(h.Tags.CreateTag, admin)...)
	tagRoutes.PUT("/:id", admin, h.Tags.UpdateTag)
	tagRoutes.DELETE("/:id", admin, h.Tags.DeleteTag)

	return []RouteRegistrar{
		authRoutes,
		clientRoutes,
		categoryRoutes,
		tagGroupRoutes,
		tagRoutes,
	}
}

// PublicPaths are the API paths reachable without a token
func PublicPaths(basePath string) []string {
	return []string{
		basePath + "/auth/login",
		basePath + "/auth/refresh",
	}
}
