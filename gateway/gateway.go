package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/storeadmin/docs"
	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/metrics"
	"github.com/example/storeadmin/pkg/models"
	"github.com/example/storeadmin/pkg/orders"
)

// Gateway is the admin HTTP API over the order manager.
type Gateway struct {
	config   *config.GatewayConfig
	manager  *orders.Manager
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

// NewGateway builds the router. gatherer is served on /metrics; nil serves
// the default registry.
func NewGateway(cfg *config.GatewayConfig, manager *orders.Manager, mt *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))
	router.Use(metricsMiddleware(mt))

	g := &Gateway{
		config:   cfg,
		manager:  manager,
		metrics:  mt,
		gatherer: gatherer,
		logger:   logger,
		router:   router,
	}
	g.setupRoutes()
	return g
}

func (g *Gateway) setupRoutes() {
	// Health check
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if g.gatherer != nil {
		g.router.GET("/metrics", gin.WrapH(metrics.HandlerFor(g.gatherer)))
	} else {
		g.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// API v1 routes
	v1 := g.router.Group("/api/v1")
	v1.Use(authMiddleware(g.config.JWTSecret))
	{
		o := v1.Group("/orders")
		{
			o.GET("", g.listOrders)
			o.POST("", g.createOrder)
			o.GET("/counts", g.countOrders)
			o.GET("/state", g.getState)
			o.POST("/refresh", g.refresh)
			o.GET("/:id", g.getOrder)
			o.PUT("/:id/status", g.updateOrderStatus)
			o.PUT("/:id/tracking", g.updateTracking)
			o.PUT("/:id/toggle", g.toggleStatus)
			o.PUT("/:id/focus", g.focusOrder)
			o.GET("/:id/audit", g.getAuditTrail)
		}
	}

	// Swagger
	docs.SwaggerInfo.BasePath = "/api/v1"
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler returns the router wrapped in the CORS policy.
func (g *Gateway) Handler() http.Handler {
	origins := g.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})(g.router)
}

func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Host, g.config.Port)
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

type orderView struct {
	Order    models.Order    `json:"order"`
	Category orders.Category `json:"category"`
	Actions  []models.Status `json:"actions"`
}

func newOrderView(o models.Order) orderView {
	cat := orders.DisplayCategory(o.Status)
	actions := orders.StatusActions(cat)
	if actions == nil {
		actions = []models.Status{}
	}
	return orderView{Order: o, Category: cat, Actions: actions}
}

// listOrders godoc
// @Summary List cached orders
// @Param category query string false "display category" default(all)
// @Param q query string false "search by order number, customer name or email"
// @Param sort query string false "recent or none" default(recent)
// @Success 200 {object} map[string]interface{}
// @Router /orders [get]
func (g *Gateway) listOrders(c *gin.Context) {
	cat, ok := orders.ParseCategory(c.DefaultQuery("category", string(orders.CategoryAll)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	list := g.manager.Snapshot().Orders
	list = orders.FilterByCategory(list, cat)
	list = orders.Search(list, c.Query("q"))
	switch c.DefaultQuery("sort", "recent") {
	case "recent":
		list = orders.SortedByRecency(list)
	case "none":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort"})
		return
	}
	if list == nil {
		list = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": list,
		"total":  len(list),
	})
}

// countOrders godoc
// @Summary Badge counts per display category
// @Success 200 {object} orders.Counts
// @Router /orders/counts [get]
func (g *Gateway) countOrders(c *gin.Context) {
	c.JSON(http.StatusOK, orders.CountsByCategory(g.manager.Snapshot().Orders))
}

// getState godoc
// @Summary Cache status: loading flag, last error and focused order
// @Success 200 {object} map[string]interface{}
// @Router /orders/state [get]
func (g *Gateway) getState(c *gin.Context) {
	s := g.manager.Snapshot()
	resp := gin.H{
		"loading":       s.Loading,
		"count":         len(s.Orders),
		"error_kind":    nil,
		"error_message": s.ErrorMessage,
		"focused":       nil,
	}
	if s.LastError != nil {
		resp["error_kind"] = *s.LastError
	}
	if s.Focused != nil {
		resp["focused"] = newOrderView(*s.Focused)
	}
	c.JSON(http.StatusOK, resp)
}

// getOrder godoc
// @Summary Get one cached order with its category and offered actions
// @Param id path string true "order id"
// @Success 200 {object} orderView
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (g *Gateway) getOrder(c *gin.Context) {
	o, ok := g.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, newOrderView(o))
}

// createOrder godoc
// @Summary Place an order
// @Param order body orders.CreateOrderInput true "checkout payload"
// @Success 201 {object} models.Order
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /orders [post]
func (g *Gateway) createOrder(c *gin.Context) {
	var req orders.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := g.manager.Create(c.Request.Context(), req)
	if err != nil {
		g.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

type statusRequest struct {
	Status models.Status `json:"status" binding:"required"`
}

// updateOrderStatus godoc
// @Summary Set the status of one order
// @Param id path string true "order id"
// @Param body body statusRequest true "new status"
// @Success 200 {object} orderView
// @Router /orders/{id}/status [put]
func (g *Gateway) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	id := c.Param("id")
	if err := g.manager.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		g.writeError(c, err)
		return
	}
	g.respondOrder(c, id)
}

type trackingRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// updateTracking godoc
// @Summary Set the tracking number of one order
// @Param id path string true "order id"
// @Param body body trackingRequest true "tracking number"
// @Success 200 {object} orderView
// @Router /orders/{id}/tracking [put]
func (g *Gateway) updateTracking(c *gin.Context) {
	var req trackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := g.manager.UpdateTracking(c.Request.Context(), id, req.TrackingNumber); err != nil {
		g.writeError(c, err)
		return
	}
	g.respondOrder(c, id)
}

type toggleRequest struct {
	A models.Status `json:"a" binding:"required"`
	B models.Status `json:"b" binding:"required"`
}

// toggleStatus godoc
// @Summary Flip an order between two statuses
// @Param id path string true "order id"
// @Param body body toggleRequest true "the two statuses"
// @Success 200 {object} orderView
// @Router /orders/{id}/toggle [put]
func (g *Gateway) toggleStatus(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.A.Valid() || !req.B.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	id := c.Param("id")
	if _, err := g.manager.ToggleStatus(c.Request.Context(), id, req.A, req.B); err != nil {
		g.writeError(c, err)
		return
	}
	g.respondOrder(c, id)
}

// focusOrder godoc
// @Summary Select an order for inspection
// @Param id path string true "order id"
// @Success 200 {object} orderView
// @Router /orders/{id}/focus [put]
func (g *Gateway) focusOrder(c *gin.Context) {
	if !g.manager.Focus(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	g.respondOrder(c, c.Param("id"))
}

const defaultAuditLimit = 50

// getAuditTrail godoc
// @Summary Lifecycle audit entries of one order, newest first
// @Param id path string true "order id"
// @Param limit query int false "maximum entries (default 50)"
// @Success 200 {array} orders.AuditEntry
// @Failure 501 {object} map[string]string
// @Router /orders/{id}/audit [get]
func (g *Gateway) getAuditTrail(c *gin.Context) {
	limit := int64(defaultAuditLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := g.manager.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		g.writeError(c, err)
		return
	}
	if entries == nil {
		entries = []orders.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// refresh godoc
// @Summary Ask for a full resynchronisation with the store
// @Success 202 {object} map[string]string
// @Router /orders/refresh [post]
func (g *Gateway) refresh(c *gin.Context) {
	g.manager.Refresh("api")
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (g *Gateway) respondOrder(c *gin.Context, id string) {
	o, ok := g.manager.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, newOrderView(o))
}

func (g *Gateway) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": orders.KindOf(err)})
	case errors.Is(err, orders.ErrAuditUnavailable):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrNoItems):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "kind": orders.KindOf(err)})
	default:
		g.logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("operator", c.GetString(operatorKey)),
		)
	}
}

func metricsMiddleware(mt *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		mt.Request(route, strconv.Itoa(c.Writer.Status()))
	}
}
