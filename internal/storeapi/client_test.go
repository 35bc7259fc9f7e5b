package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

type fakeTokens struct {
	token       string
	invalidated int
}

func (f *fakeTokens) Token() string { return f.token }

func (f *fakeTokens) Invalidate() {
	f.token = ""
	f.invalidated++
}

func newTestAPI(t *testing.T, register func(r *gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func TestConn_InjectsTokenHeader(t *testing.T) {
	var seen string
	client := newTestAPI(t, func(r *gin.Engine) {
		r.GET("/brands", func(c *gin.Context) {
			seen = c.GetHeader(TokenHeader)
			c.JSON(http.StatusOK, gin.H{"results": 1, "data": []gin.H{{"_id": "b1", "name": "Acme", "slug": "acme"}}})
		})
	})

	brands, err := client.Bind(&fakeTokens{token: "tok-123"}).ListBrands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", seen)
	require.Len(t, brands, 1)
	assert.Equal(t, "Acme", brands[0].Name)
}

func TestConn_OmitsHeaderWithoutToken(t *testing.T) {
	present := true
	client := newTestAPI(t, func(r *gin.Engine) {
		r.GET("/categories", func(c *gin.Context) {
			_, present = c.Request.Header[http.CanonicalHeaderKey(TokenHeader)]
			c.JSON(http.StatusOK, gin.H{"data": []gin.H{}})
		})
	})

	_, err := client.Anonymous().ListCategories(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
}

func TestConn_UnauthorizedInvalidatesToken(t *testing.T) {
	client := newTestAPI(t, func(r *gin.Engine) {
		r.GET("/cart", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Token. please login again"})
		})
	})

	tokens := &fakeTokens{token: "expired"}
	_, err := client.Bind(tokens).GetCart(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "", tokens.token)
	assert.Equal(t, 1, tokens.invalidated)
	assert.Equal(t, "Invalid Token. please login again", Message(err, "fallback"))
}

func TestConn_ErrorMessages(t *testing.T) {
	client := newTestAPI(t, func(r *gin.Engine) {
		r.GET("/products/:id", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No product for this id"})
		})
		r.POST("/auth/signup", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"msg": "Account Already Exists"}})
		})
		r.DELETE("/brands/:id", func(c *gin.Context) {
			c.String(http.StatusInternalServerError, "boom")
		})
	})
	conn := client.Anonymous()
	ctx := context.Background()

	_, err := conn.GetProduct(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "No product for this id", Message(err, ""))

	_, err = conn.SignUp(ctx, models.SignUpForm{Email: "a@b.co"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Account Already Exists", apiErr.Message)

	err = conn.DeleteBrand(ctx, "b1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Internal Server Error", apiErr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestConn_TransportFailure(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})

	_, err := client.Anonymous().ListBrands(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to load brands", Message(err, "Failed to load brands"))
}

func TestConn_ListProductsQueryAndPagination(t *testing.T) {
	var query map[string]string
	client := newTestAPI(t, func(r *gin.Engine) {
		r.GET("/products", func(c *gin.Context) {
			query = map[string]string{
				"page":     c.Query("page"),
				"limit":    c.Query("limit"),
				"brand":    c.Query("brand"),
				"category": c.Query("category"),
				"keyword":  c.Query("keyword"),
			}
			c.JSON(http.StatusOK, gin.H{
				"results":  40,
				"metadata": gin.H{"currentPage": 2, "numberOfPages": 4, "limit": 12},
				"data":     []gin.H{{"_id": "p1", "id": "p1", "title": "Phone", "price": 100}},
			})
		})
	})

	page, err := client.Anonymous().ListProducts(context.Background(), ProductQuery{
		Page: 2, Limit: 12, Brand: "b1", Category: "c1", Keyword: "pho",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"page": "2", "limit": "12", "brand": "b1", "category": "c1", "keyword": "pho"}, query)
	assert.Equal(t, 40, page.Results)
	assert.Equal(t, 4, page.Pagination.NumberOfPages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Phone", page.Products[0].Title)
}

func TestConn_AllProductsWalksPages(t *testing.T) {
	var pages []string
	client := newTestAPI(t, func(r *gin.Engine) {
		r.GET("/products", func(c *gin.Context) {
			page := c.Query("page")
			n, _ := strconv.Atoi(page)
			pages = append(pages, page+"/"+c.Query("limit"))
			c.JSON(http.StatusOK, gin.H{
				"results":  1,
				"metadata": gin.H{"currentPage": n, "numberOfPages": 3, "limit": 2},
				"data":     []gin.H{{"_id": "p" + page, "title": "Item " + page}},
			})
		})
	})

	products, err := client.Anonymous().AllProducts(context.Background(), ProductQuery{Page: 7, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"1/2", "2/2", "3/2"}, pages)
	require.Len(t, products, 3)
	assert.Equal(t, "Item 3", products[2].Title)
}

func TestConn_CartResponses(t *testing.T) {
	client := newTestAPI(t, func(r *gin.Engine) {
		r.POST("/cart", func(c *gin.Context) {
			var body map[string]string
			_ = c.BindJSON(&body)
			// add-to-cart returns product ids instead of documents
			c.JSON(http.StatusOK, gin.H{
				"status":         "success",
				"numOfCartItems": 1,
				"cartId":         "cart-1",
				"data": gin.H{
					"_id":      "cart-1",
					"products": []gin.H{{"count": 1, "price": 50, "product": body["productId"]}},
				},
			})
		})
		r.PUT("/cart/:id", func(c *gin.Context) {
			var body map[string]int
			_ = c.BindJSON(&body)
			c.JSON(http.StatusOK, gin.H{
				"numOfCartItems": 1,
				"data": gin.H{
					"_id":      "cart-1",
					"products": []gin.H{{"count": body["count"], "price": 50, "product": gin.H{"_id": c.Param("id"), "id": c.Param("id"), "title": "Mug"}}},
				},
			})
		})
	})
	conn := client.Bind(&fakeTokens{token: "t"})

	added, err := conn.AddToCart(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, 1, added.NumOfCartItems)
	assert.Equal(t, "cart-1", added.Cart.ID)
	require.Len(t, added.Cart.Products, 1)
	assert.True(t, added.Cart.Products[0].Product.Matches("p9"))

	updated, err := conn.UpdateCartItem(context.Background(), "p9", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Cart.Products[0].Count)
	assert.Equal(t, "Mug", updated.Cart.Products[0].Product.Title)
	assert.InDelta(t, 150.0, models.CartTotal(updated.Cart.Products), 0.001)
}

func TestConn_VerifyTokenAndCheckout(t *testing.T) {
	var checkoutBody map[string]models.ShippingAddress
	var returnURL string
	client := newTestAPI(t, func(r *gin.Engine) {
		r.GET("/auth/verifyToken", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "verified", "decoded": gin.H{"id": "u1", "name": "Mona", "role": "admin"}})
		})
		r.POST("/orders/checkout-session/:cart", func(c *gin.Context) {
			returnURL = c.Query("url")
			raw, _ := c.GetRawData()
			_ = json.Unmarshal(raw, &checkoutBody)
			c.JSON(http.StatusOK, gin.H{"status": "success", "session": gin.H{"url": "https://pay.example/s/1"}})
		})
	})
	conn := client.Bind(&fakeTokens{token: "t"})

	id, err := conn.VerifyToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.True(t, id.IsAdmin())

	addr := models.ShippingAddress{Details: "12 Nile St", Phone: "01012345678", City: "Cairo"}
	res, err := conn.CheckoutSession(context.Background(), "cart-1", addr, "http://localhost:8082")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, "https://pay.example/s/1", res.Session.URL)
	assert.Equal(t, addr, checkoutBody["shippingAddress"])
	assert.Equal(t, "http://localhost:8082", returnURL)
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "products", resourceOf("/products/abc"))
	assert.Equal(t, "cart", resourceOf("/cart"))
	assert.Equal(t, "root", resourceOf("/"))
}
