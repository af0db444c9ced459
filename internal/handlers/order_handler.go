package handlers

import (
	"net/http"
	"strings"
	"time"

	"kasap-service/internal/dto"
	"kasap-service/internal/models"
	"kasap-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func (h *OrderHandler) createInput(c *gin.Context, req dto.CreateOrderRequest) (service.CreateOrderInput, bool) {
	amount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		badParam(c, "total_amount", "must be a decimal number")
		return service.CreateOrderInput{}, false
	}
	in := service.CreateOrderInput{
		ServiceType:  models.ServiceType(req.ServiceType),
		DeliveryType: models.DeliveryType(req.DeliveryType),
		TotalAmount:  amount,
		Currency:     strings.ToUpper(req.Currency),
		SpecialNotes: req.SpecialNotes,
	}
	if req.CharityOrganizationID != nil {
		id, err := uuid.Parse(*req.CharityOrganizationID)
		if err != nil {
			badParam(c, "charity_organization_id", "must be a UUID")
			return service.CreateOrderInput{}, false
		}
		in.CharityOrganizationID = &id
	}
	if req.AppointmentDate != nil {
		t, err := parseDate(*req.AppointmentDate)
		if err != nil {
			badParam(c, "appointment_date", "must be YYYY-MM-DD or RFC3339")
			return service.CreateOrderInput{}, false
		}
		in.AppointmentDate = &t
	}
	if req.PaymentMethod != nil {
		pm := models.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &pm
	}
	return in, true
}

// CreateOrder godoc
// @Summary Create order
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateOrderRequest true "Order data"
// @Success 201 {object} models.Order
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	in, ok := h.createInput(c, req)
	if !ok {
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// parseFilter reads status, service_type, delivery_type, date_from and
// date_to. A date-only date_to covers the whole day.
func parseFilter(c *gin.Context) (service.OrderFilter, bool) {
	var f service.OrderFilter
	if v := c.Query("status"); v != "" {
		st := models.OrderStatus(v)
		f.Status = &st
	}
	if v := c.Query("service_type"); v != "" {
		st := models.ServiceType(v)
		f.ServiceType = &st
	}
	if v := c.Query("delivery_type"); v != "" {
		dt := models.DeliveryType(v)
		f.DeliveryType = &dt
	}
	if v := c.Query("date_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			badParam(c, "date_from", "must be YYYY-MM-DD or RFC3339")
			return f, false
		}
		f.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			badParam(c, "date_to", "must be YYYY-MM-DD or RFC3339")
			return f, false
		}
		if len(v) == len(dateLayout) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.DateTo = &t
	}
	return f, true
}

// ListMyOrders godoc
// @Summary List own orders
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Param service_type query string false "Service type"
// @Param delivery_type query string false "Delivery type"
// @Param date_from query string false "Created from (YYYY-MM-DD)"
// @Param date_to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Success 200 {array} models.Order
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	orders, err := h.orders.GetUserOrders(c.Request.Context(), uid, f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// loadAccessible fetches the order and checks the caller owns it or is staff.
func (h *OrderHandler) loadAccessible(c *gin.Context) (*models.Order, bool) {
	uid, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}
	order, err := h.orders.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	role, _ := service.RoleFromContext(c.Request.Context())
	if order.UserID != uid && !role.IsStaff() {
		respondError(c, h.log, service.ErrForbidden)
		return nil, false
	}
	return order, true
}

// GetOrder godoc
// @Summary Get order with relations
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, ok := h.loadAccessible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder godoc
// @Summary Cancel order
// @Description Completed and delivered orders cannot be cancelled
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body dto.CancelOrderRequest false "Reason"
// @Success 200 {object} models.Order
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, ok := h.loadAccessible(c)
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, h.log, err)
			return
		}
	}
	updated, err := h.orders.CancelOrder(c.Request.Context(), order.ID, req.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// MyStatistics godoc
// @Summary Own order statistics
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.OrderStatistics
// @Router /api/v1/orders/statistics [get]
func (h *OrderHandler) MyStatistics(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	st, err := h.orders.GetOrderStatistics(c.Request.Context(), &uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// AttachMedia godoc
// @Summary Attach an uploaded media file to an order
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body dto.AttachMediaRequest true "Uploaded object"
// @Success 201 {object} models.MediaFile
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/v1/orders/{id}/media [post]
func (h *OrderHandler) AttachMedia(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AttachMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	m, err := h.orders.AttachMedia(c.Request.Context(), uid, id, service.AttachMediaInput{
		Bucket:   req.Bucket,
		FileName: req.FileName,
		FileURL:  req.FileURL,
		MimeType: req.MimeType,
		FileSize: req.FileSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListCharities godoc
// @Summary Active charity organizations
// @Tags charities
// @Produce json
// @Success 200 {array} models.CharityOrganization
// @Router /api/v1/charities [get]
func (h *OrderHandler) ListCharities(c *gin.Context) {
	list, err := h.orders.GetActiveCharities(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListAllOrders godoc
// @Summary List all orders (staff)
// @Tags staff
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Param service_type query string false "Service type"
// @Param delivery_type query string false "Delivery type"
// @Param date_from query string false "Created from (YYYY-MM-DD)"
// @Param date_to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Success 200 {array} models.Order
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/v1/staff/orders [get]
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	orders, err := h.orders.GetAllOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListByStatus godoc
// @Summary List orders in one status (staff)
// @Tags staff
// @Security BearerAuth
// @Produce json
// @Param status path string true "Order status"
// @Success 200 {array} models.Order
// @Router /api/v1/staff/orders/status/{status} [get]
func (h *OrderHandler) ListByStatus(c *gin.Context) {
	orders, err := h.orders.GetOrdersByStatus(c.Request.Context(), models.OrderStatus(c.Param("status")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// SearchOrders godoc
// @Summary Search orders by customer name or notes (staff)
// @Tags staff
// @Security BearerAuth
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} models.Order
// @Router /api/v1/staff/orders/search [get]
func (h *OrderHandler) SearchOrders(c *gin.Context) {
	orders, err := h.orders.SearchOrders(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateStatus godoc
// @Summary Move an order to a new status (staff)
// @Tags staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body dto.UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} models.Order
// @Failure 409 {object} dto.ConflictErrorResponse "Transition not allowed"
// @Router /api/v1/staff/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, service.StatusUpdate{
		Status: models.OrderStatus(req.Status),
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdatePayment godoc
// @Summary Set payment status (staff)
// @Tags staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body dto.UpdatePaymentRequest true "Payment status"
// @Success 200 {object} models.Order
// @Router /api/v1/staff/orders/{id}/payment [patch]
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	order, err := h.orders.UpdatePaymentStatus(c.Request.Context(), id, models.PaymentStatus(req.Status), req.Reference)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AllStatistics godoc
// @Summary Order statistics across all customers (staff)
// @Tags staff
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.OrderStatistics
// @Router /api/v1/staff/orders/statistics [get]
func (h *OrderHandler) AllStatistics(c *gin.Context) {
	st, err := h.orders.GetOrderStatistics(c.Request.Context(), nil)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
