package cli

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T, register func(r *gin.Engine)) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	for name, value := range map[string]string{"keyword": "", "brand": "", "category": "", "sort": "", "page": "1", "limit": "12"} {
		require.NoError(t, catalogProductsCmd.Flags().Set(name, value))
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_SubcommandsListed(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, name := range []string{"serve", "catalog", "cert"} {
		assert.Contains(t, out, name)
	}
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := execute(t, "nonexistent-command")
	assert.Error(t, err)
}

func TestCatalogProducts_PrintsTable(t *testing.T) {
	var keyword, page string
	url := newUpstream(t, func(r *gin.Engine) {
		r.GET("/products", func(c *gin.Context) {
			keyword = c.Query("keyword")
			page = c.Query("page")
			c.JSON(http.StatusOK, gin.H{
				"results":  1,
				"metadata": gin.H{"currentPage": 2, "numberOfPages": 3, "limit": 12},
				"data": []gin.H{{
					"_id": "p1", "id": "p1", "title": "Wool Scarf", "price": 250, "priceAfterDiscount": 200,
					"ratingsAverage": 4.5,
					"brand":          gin.H{"_id": "b1", "name": "Acme"},
				}},
			})
		})
	})

	out, err := execute(t, "catalog", "products", "--api-url", url, "-k", "scarf", "--page", "2")
	require.NoError(t, err)

	assert.Equal(t, "scarf", keyword)
	assert.Equal(t, "2", page)
	assert.Contains(t, out, "Products (page 2 of 3, 1 shown)")
	assert.Contains(t, out, "Wool Scarf")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "200.00 EGP (was 250.00)")
}

func TestCatalogProducts_SortForwarded(t *testing.T) {
	var sort, limit string
	url := newUpstream(t, func(r *gin.Engine) {
		r.GET("/products", func(c *gin.Context) {
			sort = c.Query("sort")
			limit = c.Query("limit")
			c.JSON(http.StatusOK, gin.H{"results": 0, "data": []gin.H{}})
		})
	})

	_, err := execute(t, "catalog", "products", "--api-url", url, "--sort", "-price", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, "-price", sort)
	assert.Equal(t, "5", limit)

	_, err = execute(t, "catalog", "products", "--api-url", url)
	require.NoError(t, err)
	assert.Empty(t, sort)
	assert.Equal(t, "12", limit)
}

func TestCatalogProducts_Empty(t *testing.T) {
	url := newUpstream(t, func(r *gin.Engine) {
		r.GET("/products", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"results": 0, "data": []gin.H{}})
		})
	})

	out, err := execute(t, "catalog", "products", "--api-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "No products found")
}

func TestCatalogProducts_RejectsBadPage(t *testing.T) {
	_, err := execute(t, "catalog", "products", "--page", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--page")
}

func TestCatalogBrands_UpstreamError(t *testing.T) {
	url := newUpstream(t, func(r *gin.Engine) {
		r.GET("/brands", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
		})
	})

	_, err := execute(t, "catalog", "brands", "--api-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing brands")
}

func TestCatalogCategories_PrintsTable(t *testing.T) {
	url := newUpstream(t, func(r *gin.Engine) {
		r.GET("/categories", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"results": 2,
				"data": []gin.H{
					{"_id": "c1", "name": "Music", "slug": "music"},
					{"_id": "c2", "name": "Electronics", "slug": "electronics"},
				},
			})
		})
	})

	out, err := execute(t, "catalog", "categories", "--api-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Categories (2)")
	assert.Contains(t, out, "electronics")
}

func TestCertCmd_WritesPair(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "cert", "--out", dir, "--host", "shop.local", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "cert.pem")

	raw, err := os.ReadFile(filepath.Join(dir, "cert.pem"))
	require.NoError(t, err)
	block, _ := pem.Decode(raw)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Contains(t, cert.DNSNames, "shop.local")

	info, err := os.Stat(filepath.Join(dir, "key.pem"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBindFlags_OnlyChangedFlags(t *testing.T) {
	require.NoError(t, serveCmd.Flags().Set("tls", "true"))
	t.Cleanup(func() { _ = serveCmd.Flags().Set("tls", "false") })

	v := viper.New()
	v.SetDefault("server.port", "8082")
	require.NoError(t, bindFlags(serveCmd)(v))

	assert.True(t, v.GetBool("server.tls"))
	assert.Equal(t, "8082", v.GetString("server.port"))
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir on older Go).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
