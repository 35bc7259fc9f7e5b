package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/models"
	"storefront/internal/storeapi"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the remote catalog",
	Long: `Browse products, brands and categories of the remote store API.

Examples:
  storefront catalog products                    # First page of products
  storefront catalog products -k shirt --page 2  # Keyword search
  storefront catalog products --brand <id>       # Filter by brand id
  storefront catalog products --sort -price      # Most expensive first
  storefront catalog brands
  storefront catalog categories`,
}

var catalogProductsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"ls"},
	Short:   "List products",
	Args:    cobra.NoArgs,
	RunE:    runCatalogProducts,
}

var catalogBrandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List brands",
	Args:  cobra.NoArgs,
	RunE:  runCatalogBrands,
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  runCatalogCategories,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogProductsCmd, catalogBrandsCmd, catalogCategoriesCmd)

	f := catalogProductsCmd.Flags()
	f.StringP("keyword", "k", "", "search keyword")
	f.String("brand", "", "brand id")
	f.String("category", "", "category id")
	f.Int("page", 1, "page number")
	f.Int("limit", 12, "products per page")
	f.String("sort", "", "sort field, prefix with - for descending (e.g. -price)")
}

func catalogConn() *storeapi.Conn {
	client := storeapi.NewClient(storeapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, storeapi.WithLogger(log))
	return client.Anonymous()
}

func runCatalogProducts(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	q := storeapi.ProductQuery{}
	q.Keyword, _ = cmd.Flags().GetString("keyword")
	q.Brand, _ = cmd.Flags().GetString("brand")
	q.Category, _ = cmd.Flags().GetString("category")
	q.Sort, _ = cmd.Flags().GetString("sort")
	q.Page, _ = cmd.Flags().GetInt("page")
	q.Limit, _ = cmd.Flags().GetInt("limit")
	if q.Page < 1 || q.Limit < 1 {
		return fmt.Errorf("--page and --limit must be positive")
	}

	page, err := catalogConn().ListProducts(commandContext(cmd), q)
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}

	if len(page.Products) == 0 {
		p.Warning("No products found")
		return nil
	}

	p.Header(fmt.Sprintf("Products (page %d of %d, %d shown)",
		page.Pagination.CurrentPage, page.Pagination.NumberOfPages, len(page.Products)))

	rows := make([][]string, 0, len(page.Products))
	for _, prod := range page.Products {
		rows = append(rows, []string{
			prod.Key(),
			prod.Title,
			brandName(prod.Brand),
			categoryName(prod.Category),
			priceLabel(prod),
			strconv.FormatFloat(prod.RatingsAverage, 'f', 1, 64),
		})
	}
	return p.Table([]string{"ID", "Title", "Brand", "Category", "Price", "Rating"}, rows)
}

func runCatalogBrands(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	brands, err := catalogConn().ListBrands(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("listing brands: %w", err)
	}
	if len(brands) == 0 {
		p.Warning("No brands found")
		return nil
	}

	p.Header(fmt.Sprintf("Brands (%d)", len(brands)))
	rows := make([][]string, 0, len(brands))
	for _, b := range brands {
		rows = append(rows, []string{b.ID, b.Name, b.Slug})
	}
	return p.Table([]string{"ID", "Name", "Slug"}, rows)
}

func runCatalogCategories(cmd *cobra.Command, args []string) error {
	p := newPrinter(cmd)

	categories, err := catalogConn().ListCategories(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	if len(categories) == 0 {
		p.Warning("No categories found")
		return nil
	}

	p.Header(fmt.Sprintf("Categories (%d)", len(categories)))
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.ID, c.Name, c.Slug})
	}
	return p.Table([]string{"ID", "Name", "Slug"}, rows)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func brandName(b *models.Brand) string {
	if b == nil {
		return "-"
	}
	return b.Name
}

func categoryName(c *models.Category) string {
	if c == nil {
		return "-"
	}
	return c.Name
}

func priceLabel(p models.Product) string {
	if p.PriceAfterDiscount > 0 && p.PriceAfterDiscount < p.Price {
		return fmt.Sprintf("%.2f EGP (was %.2f)", p.PriceAfterDiscount, p.Price)
	}
	return fmt.Sprintf("%.2f EGP", p.Price)
}
