package api

import (
	"net/http"

	"foodhub-be/internal/metrics"
	"foodhub-be/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs. UploadDir may be empty when images
// are not stored on local disk.
type Deps struct {
	Users       *UserHandler
	Restaurants *RestaurantHandler
	Orders      *OrderHandler
	Webhook     http.HandlerFunc
	Tokens      middleware.TokenParser
	Stats       *metrics.Reconcile
	UploadDir   string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "OK"}
		if d.Stats != nil {
			body["reconcile"] = d.Stats.Snapshot()
		}
		c.JSON(http.StatusOK, body)
	})

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	authed := middleware.Authenticate(d.Tokens)
	owner := middleware.RequireOwner()

	v1 := r.Group("/api/v1")

	users := v1.Group("/user")
	{
		users.POST("/signup", d.Users.Signup)
		users.POST("/login", d.Users.Login)
		users.POST("/logout", d.Users.Logout)
		users.POST("/verify-email", d.Users.VerifyEmail)
		users.POST("/forgot-password", d.Users.ForgotPassword)
		users.POST("/reset-password/:token", d.Users.ResetPassword)
		users.GET("/check-auth", authed, d.Users.CheckAuth)
		users.PUT("/profile/update", authed, d.Users.UpdateProfile)
	}

	restaurants := v1.Group("/restaurant")
	{
		restaurants.POST("/", authed, owner, d.Restaurants.Create)
		restaurants.GET("/", authed, owner, d.Restaurants.Mine)
		restaurants.PUT("/", authed, owner, d.Restaurants.Update)
		restaurants.GET("/order", authed, owner, d.Restaurants.Orders)
		restaurants.PUT("/order/:orderId/status", authed, owner, d.Restaurants.UpdateOrderStatus)
		restaurants.GET("/search/", authed, d.Restaurants.Search)
		restaurants.GET("/search/:searchText", authed, d.Restaurants.Search)
		restaurants.GET("/:id", authed, d.Restaurants.Get)
	}

	menus := v1.Group("/menu", authed, owner)
	{
		menus.POST("/", d.Restaurants.AddMenu)
		menus.PUT("/:id", d.Restaurants.EditMenu)
	}

	orders := v1.Group("/order")
	{
		// signed by the processor, no session cookie
		orders.POST("/webhook", gin.WrapF(d.Webhook))
		orders.GET("/", authed, d.Orders.List)
		orders.POST("/checkout/create-checkout-session", authed, d.Orders.CreateCheckoutSession)
		orders.GET("/verify", authed, d.Orders.Verify)
	}

	return r
}
