package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type createOrderRequest struct {
	RestaurantID string  `json:"restaurantId" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
}

type orderResp struct {
	ID                 string          `json:"id"`
	RestaurantID       string          `json:"restaurantId"`
	UserID             string          `json:"userId"`
	Status             string          `json:"status"`
	PaymentStatus      string          `json:"paymentStatus"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func newOrderResp(o *domain.Order) orderResp {
	return orderResp{
		ID:                 o.ID,
		RestaurantID:       o.RestaurantID,
		UserID:             o.UserID,
		Status:             string(o.Status),
		PaymentStatus:      string(o.PaymentStatus),
		CancellationReason: o.CancellationReason,
		Amount:             o.Amount,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	caller := getCallerIdentity(ctx)

	req := createOrderRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	amount, err := decimal.NewFromFloat64(req.Amount)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrValidation)
		return
	}

	order := &domain.Order{
		RestaurantID: req.RestaurantID,
		UserID:       caller.UserID,
		Amount:       amount,
	}
	created, err := oh.service.CreateOrder(ctx, order)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, newOrderResp(created), http.StatusCreated)
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	caller := getCallerIdentity(ctx)

	order, err := oh.service.GetOrder(ctx, ctx.Param("id"))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	if !callerOwnsOrder(caller, order) {
		oh.handleError(ctx, domain.ErrForbidden)
		return
	}

	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) ListRestaurantOrders(ctx *gin.Context) {
	caller := getCallerIdentity(ctx)
	if caller.Role != port.RoleRestaurant {
		oh.handleError(ctx, domain.ErrForbidden)
		return
	}

	list, err := oh.service.ListRestaurantOrders(ctx, caller.RestaurantID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]orderResp, 0, len(list))
	for _, o := range list {
		result = append(result, newOrderResp(o))
	}

	oh.handleSuccess(ctx, result)
}

type statusUpdateRequest struct {
	Status             string `json:"status" binding:"required"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatus applies a fulfillment transition. Forward moves belong to
// the owning restaurant; cancellation is open to the owning customer too.
func (oh *OrderHandler) UpdateStatus(ctx *gin.Context) {
	caller := getCallerIdentity(ctx)

	req := statusUpdateRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	newStatus, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrValidation)
		return
	}

	orderID := ctx.Param("id")
	order, err := oh.service.GetOrder(ctx, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	if !transitionAllowedFor(caller, order, newStatus) {
		oh.handleError(ctx, domain.ErrForbidden)
		return
	}

	updated, err := oh.service.ApplyStatusTransition(ctx, orderID, newStatus, req.CancellationReason)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResp(updated))
}

func callerOwnsOrder(caller *port.TokenPayload, order *domain.Order) bool {
	switch caller.Role {
	case port.RoleRestaurant:
		return caller.RestaurantID == order.RestaurantID
	case port.RoleService:
		return true
	default:
		return caller.UserID == order.UserID
	}
}

func transitionAllowedFor(caller *port.TokenPayload, order *domain.Order, newStatus domain.OrderStatus) bool {
	if !callerOwnsOrder(caller, order) {
		return false
	}
	if newStatus == domain.OrderStatusCancelled {
		return true
	}
	return caller.Role == port.RoleRestaurant || caller.Role == port.RoleService
}
