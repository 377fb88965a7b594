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

type WalletHandler struct {
	Handler
	service port.Service
}

func NewWalletHandler(service port.Service, logger *zap.Logger) (*WalletHandler, error) {
	return &WalletHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type creditRequest struct {
	RestaurantID string  `json:"restaurantId" binding:"required"`
	OrderID      string  `json:"orderId" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Description  string  `json:"description"`
}

type creditResponse struct {
	Success      bool            `json:"success"`
	RestaurantID string          `json:"restaurantId"`
	OrderID      string          `json:"orderId"`
	Amount       decimal.Decimal `json:"amount"`
	Timestamp    time.Time       `json:"timestamp"`
}

type creditFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Credit is the internal settlement boundary. The ledger's idempotency
// makes retries from any caller safe.
func (wh *WalletHandler) Credit(ctx *gin.Context) {
	req := creditRequest{}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, creditFailure{Message: domain.ErrBadRequest.Error()})
		return
	}

	amount, err := decimal.NewFromFloat64(req.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, creditFailure{Message: domain.ErrValidation.Error()})
		return
	}

	credit, err := wh.service.CreditWallet(ctx, req.RestaurantID, req.OrderID, amount, req.Description)
	if err != nil {
		statusCode, ok := errorStatusMap[err]
		if !ok {
			statusCode = http.StatusInternalServerError
			wh.logger.Error("credit wallet", zap.Error(err))
		}
		ctx.JSON(statusCode, creditFailure{Message: err.Error()})
		return
	}

	wh.handleSuccess(ctx, creditResponse{
		Success:      true,
		RestaurantID: credit.Entry.RestaurantID,
		OrderID:      credit.Entry.OrderID,
		Amount:       credit.Entry.Amount,
		Timestamp:    credit.Entry.CreatedAt,
	})
}

type balanceResponse struct {
	RestaurantID string          `json:"restaurantId"`
	Balance      decimal.Decimal `json:"balance"`
}

func (wh *WalletHandler) Balance(ctx *gin.Context) {
	caller := getCallerIdentity(ctx)

	wallet, err := wh.service.GetWallet(ctx, caller.RestaurantID)
	if err != nil {
		wh.handleError(ctx, err)
		return
	}

	wh.handleSuccess(ctx, balanceResponse{
		RestaurantID: wallet.RestaurantID,
		Balance:      wallet.Balance,
	})
}

type ledgerEntryResponse struct {
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (wh *WalletHandler) ListEntries(ctx *gin.Context) {
	caller := getCallerIdentity(ctx)

	list, err := wh.service.ListLedgerEntries(ctx, caller.RestaurantID)
	if err != nil {
		wh.handleError(ctx, err)
		return
	}

	result := make([]ledgerEntryResponse, 0, len(list))
	for _, e := range list {
		result = append(result, ledgerEntryResponse{
			OrderID:     e.OrderID,
			Amount:      e.Amount,
			Description: e.Description,
			Timestamp:   e.CreatedAt,
		})
	}

	wh.handleSuccess(ctx, result)
}
