package handlers

import (
	"context"
	"net/http"
	"strconv"

	vendorRepo "slotly/database/repository/vendor"
	"slotly/models"
	"slotly/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler seeds and reads the records the scheduler depends on: services,
// vendors and customers.
type CatalogHandler struct {
	Services  ServiceCatalog
	Vendors   VendorDirectory
	Customers CustomerDirectory
}

type ServiceCatalog interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
}

type VendorDirectory interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id string) (*models.Vendor, error)
	Nearby(ctx context.Context, criteria vendorRepo.NearbyCriteria) ([]models.Vendor, error)
}

type CustomerDirectory interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
}

func (h *CatalogHandler) CreateServiceHandler(c *gin.Context) {
	var service models.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		bindError(c, err)
		return
	}
	service.ID = ""
	if err := h.Services.Create(c.Request.Context(), &service); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": service})
}

func (h *CatalogHandler) GetServiceHandler(c *gin.Context) {
	service, err := h.Services.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service})
}

func (h *CatalogHandler) CreateVendorHandler(c *gin.Context) {
	var vendor models.Vendor
	if err := c.ShouldBindJSON(&vendor); err != nil {
		bindError(c, err)
		return
	}
	vendor.ID = ""
	vendor.Distance = 0
	if err := h.Vendors.Create(c.Request.Context(), &vendor); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vendor": vendor})
}

func (h *CatalogHandler) GetVendorHandler(c *gin.Context) {
	vendor, err := h.Vendors.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// NearbyVendorsHandler lists available vendors around ?lng=&lat=, optionally within
// ?maxKm= and capped by ?limit=.
func (h *CatalogHandler) NearbyVendorsHandler(c *gin.Context) {
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		utils.RespondError(c, utils.Validation("invalid longitude %q", c.Query("lng")))
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		utils.RespondError(c, utils.Validation("invalid latitude %q", c.Query("lat")))
		return
	}

	criteria := vendorRepo.NearbyCriteria{Location: models.NewGeoPoint(lng, lat)}
	if raw := c.Query("maxKm"); raw != "" {
		maxKm, err := strconv.ParseFloat(raw, 64)
		if err != nil || maxKm <= 0 {
			utils.RespondError(c, utils.Validation("invalid maxKm %q", raw))
			return
		}
		criteria.MaxDistanceKm = maxKm
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			utils.RespondError(c, utils.Validation("invalid limit %q", raw))
			return
		}
		criteria.Limit = limit
	}

	vendors, err := h.Vendors.Nearby(c.Request.Context(), criteria)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

func (h *CatalogHandler) CreateCustomerHandler(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		bindError(c, err)
		return
	}
	customer.ID = ""
	customer.BookingHistory = nil
	if err := h.Customers.Create(c.Request.Context(), &customer); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

func (h *CatalogHandler) GetCustomerHandler(c *gin.Context) {
	customer, err := h.Customers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}
