package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Anasanas60/krishokbazar/handlers"
	"github.com/Anasanas60/krishokbazar/internal/auth"
	"github.com/Anasanas60/krishokbazar/internal/categories"
	"github.com/Anasanas60/krishokbazar/internal/messages"
	"github.com/Anasanas60/krishokbazar/internal/orders"
	"github.com/Anasanas60/krishokbazar/internal/products"
	"github.com/Anasanas60/krishokbazar/internal/users"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'consumer',
    phone TEXT,
    street TEXT,
    city TEXT,
    state TEXT,
    zip_code TEXT,
    profile_picture TEXT,
    lat REAL,
    lng REAL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE farmer_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL UNIQUE REFERENCES users (id),
    farm_name TEXT NOT NULL,
    farm_description TEXT,
    farm_location TEXT,
    years_farming INTEGER,
    certification TEXT,
    delivery_options TEXT NOT NULL DEFAULT '[]',
    payment_options TEXT NOT NULL DEFAULT '[]',
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    rating NUMERIC NOT NULL DEFAULT 0,
    total_ratings INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    icon TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE products (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    farmer_id INTEGER NOT NULL REFERENCES users (id),
    category_id INTEGER NOT NULL REFERENCES categories (id),
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    price NUMERIC NOT NULL,
    unit TEXT NOT NULL,
    quantity_available INTEGER NOT NULL,
    images TEXT NOT NULL DEFAULT '[]',
    is_organic BOOLEAN NOT NULL DEFAULT FALSE,
    is_featured BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    harvest_date TIMESTAMP,
    available_until TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE orders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    consumer_id INTEGER NOT NULL REFERENCES users (id),
    farmer_id INTEGER NOT NULL REFERENCES users (id),
    total_amount NUMERIC NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    payment_method TEXT NOT NULL DEFAULT 'cash',
    pickup_date TEXT,
    pickup_time TEXT,
    pickup_location TEXT,
    delivery_street TEXT,
    delivery_city TEXT,
    delivery_state TEXT,
    delivery_zip_code TEXT,
    delivery_date TEXT,
    delivery_time TEXT,
    notes TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE order_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id INTEGER NOT NULL REFERENCES orders (id),
    product_id INTEGER NOT NULL REFERENCES products (id),
    quantity INTEGER NOT NULL CHECK (quantity >= 1),
    price NUMERIC NOT NULL
);

CREATE TABLE messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sender_id INTEGER NOT NULL REFERENCES users (id),
    receiver_id INTEGER NOT NULL REFERENCES users (id),
    content TEXT NOT NULL,
    related_order_id INTEGER,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("UPLOADS_DIR", t.TempDir())

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	u, err := users.NewConf(db)
	require.NoError(t, err)
	p, err := products.NewConf(db)
	require.NoError(t, err)
	cat, err := categories.NewConf(db)
	require.NoError(t, err)
	o, err := orders.NewConf(db)
	require.NoError(t, err)
	m, err := messages.NewConf(db)
	require.NoError(t, err)
	keys, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)

	return handlers.API(u, p, cat, o, m, nil, keys)
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a *apiClient) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	}
	return w, decoded
}

func (a *apiClient) register(name, email, role string) string {
	a.t.Helper()
	w, resp := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, "body: %v", resp)
	token, _ := resp["token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

func TestPing(t *testing.T) {
	client := &apiClient{t: t, router: setupRouter(t)}
	w, resp := client.do(http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", resp["message"])
}

func TestAuthFlow(t *testing.T) {
	client := &apiClient{t: t, router: setupRouter(t)}

	token := client.register("Nila", "nila@example.com", "")

	t.Run("DuplicateEmail", func(t *testing.T) {
		w, resp := client.do(http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Other", "email": "nila@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, resp["success"])
	})

	t.Run("Login", func(t *testing.T) {
		w, resp := client.do(http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "nila@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		w, _ := client.do(http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "nila@example.com", "password": "wrong-pass",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Me", func(t *testing.T) {
		w, resp := client.do(http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		user, ok := resp["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "nila@example.com", user["email"])
	})

	t.Run("MeWithoutToken", func(t *testing.T) {
		w, _ := client.do(http.MethodGet, "/api/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOrderEndToEnd(t *testing.T) {
	client := &apiClient{t: t, router: setupRouter(t)}

	adminToken := client.register("Admin", "admin@example.com", "admin")
	farmerToken := client.register("Karim", "karim@example.com", "farmer")
	consumerToken := client.register("Nila", "nila@example.com", "")

	w, resp := client.do(http.MethodPost, "/api/categories", adminToken, gin.H{
		"name": "Vegetables",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", resp)
	categoryID := resp["data"].(map[string]any)["id"].(float64)

	w, resp = client.do(http.MethodPost, "/api/products", farmerToken, gin.H{
		"name":              "Tomatoes",
		"description":       "Fresh tomatoes",
		"categoryId":        categoryID,
		"price":             "50.00",
		"unit":              "kg",
		"quantityAvailable": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", resp)
	product := resp["data"].(map[string]any)
	productID := product["id"].(float64)
	farmerID := product["farmerId"].(float64)

	orderBody := gin.H{
		"farmerId": farmerID,
		"items":    []gin.H{{"productId": productID, "quantity": 2}},
		"pickupDetails": gin.H{
			"date": "2026-09-01", "time": "10:00", "location": "Farm gate",
		},
	}

	t.Run("RequiresAuth", func(t *testing.T) {
		w, _ := client.do(http.MethodPost, "/api/orders", "", orderBody)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Create", func(t *testing.T) {
		w, resp := client.do(http.MethodPost, "/api/orders", consumerToken, orderBody)
		require.Equal(t, http.StatusCreated, w.Code, "body: %v", resp)
		data := resp["data"].(map[string]any)
		assert.Equal(t, float64(1), data["id"])
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, "100", data["totalAmount"])
		items := data["orderItems"].([]any)
		require.Len(t, items, 1)
	})

	t.Run("InsufficientStockIs400", func(t *testing.T) {
		w, resp := client.do(http.MethodPost, "/api/orders", consumerToken, gin.H{
			"farmerId": farmerID,
			"items":    []gin.H{{"productId": productID, "quantity": 500}},
			"pickupDetails": gin.H{
				"date": "2026-09-01", "time": "10:00", "location": "Farm gate",
			},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, resp["success"])
	})

	t.Run("UnknownProductIs404", func(t *testing.T) {
		w, _ := client.do(http.MethodPost, "/api/orders", consumerToken, gin.H{
			"farmerId": farmerID,
			"items":    []gin.H{{"productId": 9999, "quantity": 1}},
			"pickupDetails": gin.H{
				"date": "2026-09-01", "time": "10:00", "location": "Farm gate",
			},
		})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GetAsConsumer", func(t *testing.T) {
		w, resp := client.do(http.MethodGet, "/api/orders/1", consumerToken, nil)
		require.Equal(t, http.StatusOK, w.Code, "body: %v", resp)
	})

	t.Run("StatusUpdateByFarmer", func(t *testing.T) {
		w, resp := client.do(http.MethodPut, "/api/orders/1", farmerToken, gin.H{"status": "confirmed"})
		require.Equal(t, http.StatusOK, w.Code, "body: %v", resp)
		data := resp["data"].(map[string]any)
		assert.Equal(t, "confirmed", data["status"])
	})

	t.Run("StatusUpdateByConsumerIs403", func(t *testing.T) {
		w, _ := client.do(http.MethodPut, "/api/orders/1", consumerToken, gin.H{"status": "delivered"})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ConsumerOrderList", func(t *testing.T) {
		w, resp := client.do(http.MethodGet, "/api/orders/consumer", consumerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), resp["count"])
	})

	t.Run("AdminListsAll", func(t *testing.T) {
		w, _ := client.do(http.MethodGet, "/api/orders", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ConsumerCannotListAll", func(t *testing.T) {
		w, _ := client.do(http.MethodGet, "/api/orders", consumerToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestProductRoutes(t *testing.T) {
	client := &apiClient{t: t, router: setupRouter(t)}

	adminToken := client.register("Admin", "admin@example.com", "admin")
	farmerToken := client.register("Karim", "karim@example.com", "farmer")
	consumerToken := client.register("Nila", "nila@example.com", "")

	w, resp := client.do(http.MethodPost, "/api/categories", adminToken, gin.H{"name": "Fruits"})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", resp)
	categoryID := resp["data"].(map[string]any)["id"].(float64)

	t.Run("ConsumerCannotCreate", func(t *testing.T) {
		w, _ := client.do(http.MethodPost, "/api/products", consumerToken, gin.H{
			"name": "Nope", "description": "d", "categoryId": categoryID,
			"price": "1.00", "unit": "kg", "quantityAvailable": 1,
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	w, resp = client.do(http.MethodPost, "/api/products", farmerToken, gin.H{
		"name": "Mangoes", "description": "Sweet mangoes", "categoryId": categoryID,
		"price": "150.00", "unit": "kg", "quantityAvailable": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", resp)

	t.Run("PublicList", func(t *testing.T) {
		w, resp := client.do(http.MethodGet, "/api/products?search=mango", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), resp["count"])
	})

	t.Run("PublicGet", func(t *testing.T) {
		w, _ := client.do(http.MethodGet, "/api/products/1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("OnlyOwnerUpdates", func(t *testing.T) {
		w, _ := client.do(http.MethodPut, "/api/products/1", consumerToken, gin.H{"price": "1.00"})
		require.Equal(t, http.StatusForbidden, w.Code)

		w2, resp := client.do(http.MethodPut, "/api/products/1", farmerToken, gin.H{"price": "160.00"})
		require.Equal(t, http.StatusOK, w2.Code, "body: %v", resp)
	})

	t.Run("OwnerDeletes", func(t *testing.T) {
		w, _ := client.do(http.MethodDelete, "/api/products/1", farmerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w2, resp := client.do(http.MethodGet, "/api/products", "", nil)
		require.Equal(t, http.StatusOK, w2.Code)
		assert.Equal(t, float64(0), resp["count"])
	})
}
