// Package handlers wires the marketplace REST API onto the store packages.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/Anasanas60/krishokbazar/internal/auth"
	"github.com/Anasanas60/krishokbazar/internal/categories"
	"github.com/Anasanas60/krishokbazar/internal/messages"
	"github.com/Anasanas60/krishokbazar/internal/orders"
	"github.com/Anasanas60/krishokbazar/internal/products"
	"github.com/Anasanas60/krishokbazar/internal/stores/kafka"
	"github.com/Anasanas60/krishokbazar/internal/users"
	"github.com/Anasanas60/krishokbazar/middleware"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	u        *users.Conf
	p        *products.Conf
	cat      *categories.Conf
	o        *orders.Conf
	m        *messages.Conf
	k        *kafka.Conf // nil when no broker is configured
	keys     *auth.Keys
	validate *validator.Validate
}

func NewHandler(u *users.Conf, p *products.Conf, cat *categories.Conf, o *orders.Conf,
	m *messages.Conf, k *kafka.Conf, keys *auth.Keys) *Handler {
	return &Handler{
		u:        u,
		p:        p,
		cat:      cat,
		o:        o,
		m:        m,
		k:        k,
		keys:     keys,
		validate: validator.New(),
	}
}

// API builds the gin engine with every marketplace route mounted under /api.
func API(u *users.Conf, p *products.Conf, cat *categories.Conf, o *orders.Conf,
	m *messages.Conf, k *kafka.Conf, keys *auth.Keys) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	mid, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(u, p, cat, o, m, k, keys)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	r.Static("/uploads", uploadsDir())

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", mid.Authentication(), h.GetMe)
		}

		productGroup := api.Group("/products")
		{
			productGroup.GET("", h.GetAllProducts)
			productGroup.GET("/featured", h.GetFeaturedProducts)
			productGroup.GET("/:id", h.GetProduct)

			productGroup.Use(mid.Authentication())
			productGroup.GET("/farmer/mine", mid.Authorize(h.GetFarmerProducts, auth.RoleFarmer))
			productGroup.POST("", mid.Authorize(h.CreateProduct, auth.RoleFarmer))
			productGroup.PUT("/:id", h.UpdateProduct)
			productGroup.DELETE("/:id", h.DeleteProduct)
		}

		categoryGroup := api.Group("/categories")
		{
			categoryGroup.GET("", h.GetAllCategories)
			categoryGroup.GET("/:id", h.GetCategory)

			categoryGroup.Use(mid.Authentication())
			categoryGroup.POST("", mid.Authorize(h.CreateCategory, auth.RoleAdmin))
			categoryGroup.PUT("/:id", mid.Authorize(h.UpdateCategory, auth.RoleAdmin))
			categoryGroup.DELETE("/:id", mid.Authorize(h.DeleteCategory, auth.RoleAdmin))
		}

		orderGroup := api.Group("/orders")
		orderGroup.Use(mid.Authentication())
		{
			orderGroup.POST("", h.CreateOrder)
			orderGroup.GET("", mid.Authorize(h.GetAllOrders, auth.RoleAdmin))
			orderGroup.GET("/consumer", h.GetConsumerOrders)
			orderGroup.GET("/farmer", mid.Authorize(h.GetFarmerOrders, auth.RoleFarmer, auth.RoleAdmin))
			orderGroup.GET("/:id", h.GetOrder)
			orderGroup.PUT("/:id", h.UpdateOrderStatus)
		}

		messageGroup := api.Group("/messages")
		messageGroup.Use(mid.Authentication())
		{
			messageGroup.POST("", h.SendMessage)
			messageGroup.GET("", h.GetConversations)
			messageGroup.GET("/:userId", h.GetConversation)
			messageGroup.PUT("/read/:userId", h.MarkMessagesRead)
		}

		userGroup := api.Group("/users")
		{
			userGroup.GET("/farmers", h.GetAllFarmers)
			userGroup.GET("/farmers/:id", h.GetFarmerProfile)

			userGroup.Use(mid.Authentication())
			userGroup.PUT("/farmers/profile", mid.Authorize(h.UpdateFarmerProfile, auth.RoleFarmer))
			userGroup.GET("", mid.Authorize(h.GetAllUsers, auth.RoleAdmin))
			userGroup.DELETE("/:id", mid.Authorize(h.DeleteUser, auth.RoleAdmin))
		}

		uploadGroup := api.Group("/upload")
		uploadGroup.Use(mid.Authentication())
		{
			uploadGroup.POST("/profile", h.UploadProfileImage)
			uploadGroup.POST("/products", h.UploadProductImages)
		}
	}

	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// currentClaims pulls the authenticated claims placed on the request context
// by the authentication middleware.
func currentClaims(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims, ok
}

// currentUser returns the claims plus the parsed user id, aborting with 401
// when either is missing.
func currentUser(c *gin.Context, traceId string) (auth.Claims, int64, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Not authorized, no token",
		})
		return auth.Claims{}, 0, false
	}
	userID, err := claims.UserID()
	if err != nil {
		slog.Error("invalid subject in claims", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Not authorized, token failed",
		})
		return auth.Claims{}, 0, false
	}
	return claims, userID, true
}

// pathID parses a numeric path parameter, aborting with 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}

// respondError translates the store error taxonomy into the response envelope:
// validation 400, not found 404, authorization 403, anything else 500.
func respondError(c *gin.Context, traceId string, err error) {
	var (
		validationErr *orders.ValidationError
		notFoundErr   *orders.NotFoundError
		authzErr      *orders.AuthorizationError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": notFoundErr.Error()})
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": authzErr.Error()})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
	case errors.Is(err, products.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
	case errors.Is(err, categories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
	case errors.Is(err, messages.ErrReceiverNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Receiver not found"})
	default:
		slog.Error("internal error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Server error",
			"error":   err.Error(),
		})
	}
}

func uploadsDir() string {
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}
