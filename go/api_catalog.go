package clinicserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
)

// CatalogAPI serves products, bundled services and stock.
type CatalogAPI struct {
	service catalogports.Service
}

func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

// Get /api/products
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	areaID, ok := parseIDQuery(c, "business_area_id")
	if !ok {
		return
	}
	filter := catalogports.ProductFilter{
		BusinessAreaID:  areaID,
		IncludeInactive: queryBool(c, "include_inactive"),
	}
	if raw := c.Query("type"); raw != "" {
		kind := catalogdomain.ProductType(raw)
		if kind != catalogdomain.ProductTypeGood && kind != catalogdomain.ProductTypeService {
			respondBadRequest(c, catalogdomain.ErrInvalidProductType)
			return
		}
		filter.Type = kind
	}
	products, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProducts(products))
}

// Post /api/products
func (api *CatalogAPI) CreateProduct(c *gin.Context) {
	var payload catalogmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.CreateProduct(c.Request.Context(), payload.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromDomainProduct(product))
}

// Get /api/products/:businessAreaId/:productId
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	key, ok := productKey(c)
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}

// Put /api/products/:businessAreaId/:productId
func (api *CatalogAPI) UpdateProduct(c *gin.Context) {
	key, ok := productKey(c)
	if !ok {
		return
	}
	var payload catalogmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.UpdateProduct(c.Request.Context(), key, payload.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}

// Delete /api/products/:businessAreaId/:productId
// Products are deactivated, never removed, since orders reference them.
func (api *CatalogAPI) DeleteProduct(c *gin.Context) {
	key, ok := productKey(c)
	if !ok {
		return
	}
	if err := api.service.DeactivateProduct(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Produk dinonaktifkan")
}

// Get /api/services
func (api *CatalogAPI) ListServices(c *gin.Context) {
	services, err := api.service.ListServices(c.Request.Context(), queryBool(c, "include_inactive"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainServices(services))
}

// Post /api/services
func (api *CatalogAPI) CreateService(c *gin.Context) {
	var payload catalogmapper.ServiceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	service, err := api.service.CreateService(c.Request.Context(), payload.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromDomainService(service))
}

// Get /api/services/:serviceId
func (api *CatalogAPI) GetService(c *gin.Context) {
	id, ok := parseIDParam(c, "serviceId")
	if !ok {
		return
	}
	service, err := api.service.GetService(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainService(service))
}

// Get /api/stocks?business_area_id=
func (api *CatalogAPI) ListStocks(c *gin.Context) {
	areaID, ok := parseIDQuery(c, "business_area_id")
	if !ok {
		return
	}
	stocks, err := api.service.ListStock(c.Request.Context(), areaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainStocks(stocks))
}

// Post /api/stocks/adjust
func (api *CatalogAPI) AdjustStock(c *gin.Context) {
	var payload catalogmapper.StockAdjustRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	key := catalogdomain.ProductKey{ID: payload.ProductID, BusinessAreaID: payload.BusinessAreaID}
	stock, err := api.service.AdjustStock(c.Request.Context(), key, payload.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainStock(stock))
}

func productKey(c *gin.Context) (catalogdomain.ProductKey, bool) {
	areaID, ok := parseIDParam(c, "businessAreaId")
	if !ok {
		return catalogdomain.ProductKey{}, false
	}
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return catalogdomain.ProductKey{}, false
	}
	return catalogdomain.ProductKey{ID: id, BusinessAreaID: areaID}, true
}
