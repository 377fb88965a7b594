package http

import (
	"context"
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickbites/orderhub/internal/adapter/config"
	"github.com/quickbites/orderhub/internal/core/port"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RealtimeHandler is the websocket entry point of the notification
// fan-out.
type RealtimeHandler interface {
	ServeWS(w nethttp.ResponseWriter, r *nethttp.Request, identity *port.TokenPayload)
}

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	tokenService port.TokenService,
	orderHandler *OrderHandler,
	walletHandler *WalletHandler,
	realtime RealtimeHandler,
	base *Handler) (*Router, error) {

	router := gin.New()

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := authCheck(tokenService, base)

	api := router.Group("/api")
	{
		orders := api.Group("/orders")
		{
			orders.Use(authed)
			orders.POST("", roleCheck(base, port.RoleUser), orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListRestaurantOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateStatus)
		}

		wallet := api.Group("/wallet")
		{
			wallet.Use(authed, roleCheck(base, port.RoleRestaurant))
			wallet.GET("/balance", walletHandler.Balance)
			wallet.GET("/entries", walletHandler.ListEntries)
		}

		internal := api.Group("/internal")
		{
			internal.Use(authed, roleCheck(base, port.RoleService))
			internal.POST("/wallet/credit", walletHandler.Credit)
		}
	}

	router.GET("/ws", authed, func(ctx *gin.Context) {
		realtime.ServeWS(ctx.Writer, ctx.Request, getCallerIdentity(ctx))
	})

	return &Router{router}, nil
}

// Serve starts the HTTP server and shuts it down when ctx is cancelled.
func (r *Router) Serve(ctx context.Context, listenAddr string) error {
	srv := &nethttp.Server{
		Addr:    listenAddr,
		Handler: r.Engine,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, nethttp.ErrServerClosed) {
		return nil
	}
	return err
}
