package products

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shopcart-backend/api/responses"
	"github.com/angelmondragon/shopcart-backend/api/validators"
	"github.com/angelmondragon/shopcart-backend/internal/catalog"
	"github.com/angelmondragon/shopcart-backend/pkg/logger"
)

// Fetcher is the slice of the catalog client the product endpoints need.
type Fetcher interface {
	FetchProduct(ctx context.Context, productID int64) (*catalog.Product, error)
	FetchAllProducts(ctx context.Context) ([]catalog.Product, error)
}

// List proxies the full catalog listing.
func List(client Fetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := client.FetchAllProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// Fetch proxies a single catalog product.
func Fetch(client Fetcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseIDParam(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := client.FetchProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
