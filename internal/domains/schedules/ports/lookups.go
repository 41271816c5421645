package ports

import (
	"context"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	masterdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
)

// BusinessAreas resolves the area a schedule belongs to.
type BusinessAreas interface {
	Get(ctx context.Context, id int64) (*masterdomain.BusinessArea, error)
}

// Products resolves the product a template books.
type Products interface {
	GetProduct(ctx context.Context, key catalogdomain.ProductKey) (*catalogdomain.Product, error)
}
