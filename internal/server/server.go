// Package server exposes the invoice engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/rechnung/internal/engine"
	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/money"
	"github.com/rezonia/rechnung/internal/store"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	engine *engine.Engine
	log    zerolog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer creates a new API server over the given engine.
func NewServer(config *Config, eng *engine.Engine, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		engine: eng,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/invoices", s.handleList)
		v1.POST("/invoices", s.handleCreate)
		v1.POST("/preview", s.handlePreview)

		v1.GET("/invoices/:id", s.handleGet)
		v1.PUT("/invoices/:id", s.handleUpdate)
		v1.DELETE("/invoices/:id", s.handleDelete)

		// Lifecycle actions
		v1.POST("/invoices/:id/finalize", s.handleFinalize)
		v1.POST("/invoices/:id/mark_sent", s.handleMarkSent)
		v1.POST("/invoices/:id/mark_paid", s.handleMarkPaid)
		v1.POST("/invoices/:id/cancel", s.handleCancel)
		v1.POST("/invoices/:id/duplicate", s.handleDuplicate)

		// Document actions
		v1.GET("/invoices/:id/download_xml", s.handleDownloadXML)
		v1.GET("/invoices/:id/download_pdf", s.handleDownloadPDF)
		v1.POST("/invoices/:id/send_email", s.handleSendEmail)
		v1.POST("/invoices/:id/validate", s.handleValidate)

		// Line items
		v1.POST("/invoices/:id/items", s.handleAddItem)
		v1.PUT("/invoice_items/:id", s.handleUpdateItem)
		v1.DELETE("/invoice_items/:id", s.handleRemoveItem)

		// Directory lookups
		v1.GET("/customers/:id", s.handleGetCustomer)
		v1.GET("/products/:id", s.handleGetProduct)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("address", s.config.Address).Msg("http server starting")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleList(c *gin.Context) {
	invoices, err := s.engine.List(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}

	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp, err := s.invoiceResponse(inv)
		if err != nil {
			s.renderError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreate(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	header, items, err := buildInvoice(&req)
	if err != nil {
		s.renderError(c, err)
		return
	}

	created, err := s.engine.CreateDraft(c.Request.Context(), header, items)
	if err != nil {
		s.renderError(c, err)
		return
	}

	resp, err := s.invoiceResponse(created)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handlePreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	items, err := toItems(req.Items)
	if err != nil {
		s.renderError(c, err)
		return
	}
	preview, err := s.engine.Preview(items)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTotalsOutput(preview.Totals.Subtotal, preview.Totals.Tax, preview.Totals.Total, preview.Summary))
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	inv, err := s.engine.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	resp, err := s.invoiceResponse(inv)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	header, _, err := buildInvoice(&req)
	if err != nil {
		s.renderError(c, err)
		return
	}

	updated, err := s.engine.UpdateHeader(c.Request.Context(), id, header)
	if err != nil {
		s.renderError(c, err)
		return
	}
	resp, err := s.invoiceResponse(updated)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.engine.Delete(c.Request.Context(), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFinalize(c *gin.Context) {
	s.transition(c, s.engine.Finalize)
}

func (s *Server) handleMarkSent(c *gin.Context) {
	s.transition(c, s.engine.MarkSent)
}

func (s *Server) handleMarkPaid(c *gin.Context) {
	s.transition(c, s.engine.MarkPaid)
}

func (s *Server) handleCancel(c *gin.Context) {
	s.transition(c, s.engine.Cancel)
}

func (s *Server) handleDuplicate(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	cp, err := s.engine.Duplicate(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	resp, err := s.invoiceResponse(cp)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleDownloadXML(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	data, err := s.engine.DownloadXML(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml", data)
}

func (s *Server) handleDownloadPDF(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	data, err := s.engine.DownloadPDF(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) handleSendEmail(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req EmailRequest
	// body is optional; the customer address is the default recipient
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
			return
		}
	}

	result, err := s.engine.SendEmail(c.Request.Context(), id, req.To)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, EmailResponse{Success: result.Success, Message: result.Message})
}

func (s *Server) handleValidate(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	result, err := s.engine.Validate(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidationResponse{
		Valid:    result.IsValid,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	})
}

func (s *Server) handleAddItem(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var payload ItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	items, err := toItems([]ItemPayload{payload})
	if err != nil {
		s.renderError(c, err)
		return
	}
	saved, err := s.engine.AddItem(c.Request.Context(), id, &items[0])
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var payload ItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	items, err := toItems([]ItemPayload{payload})
	if err != nil {
		s.renderError(c, err)
		return
	}
	saved, err := s.engine.UpdateItem(c.Request.Context(), id, &items[0])
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.engine.RemoveItem(c.Request.Context(), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetCustomer(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	customer, err := s.engine.Customer(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) handleGetProduct(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	product, err := s.engine.Product(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Helper functions

func (s *Server) transition(c *gin.Context, apply func(ctx context.Context, id int64) (*model.Invoice, error)) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	inv, err := apply(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	resp, err := s.invoiceResponse(inv)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id", Details: c.Param("id")})
		return 0, false
	}
	return id, true
}

func (s *Server) invoiceResponse(inv *model.Invoice) (InvoiceResponse, error) {
	preview, err := s.engine.Preview(inv.Items)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return InvoiceResponse{
		Invoice:      inv,
		TotalsOutput: toTotalsOutput(preview.Totals.Subtotal, preview.Totals.Tax, preview.Totals.Total, preview.Summary),
	}, nil
}

func buildInvoice(req *InvoiceRequest) (*model.Invoice, []model.InvoiceItem, error) {
	header := model.NewDraft(req.CustomerID)
	header.LeitwegID = req.LeitwegID
	header.BuyerReference = req.BuyerReference
	header.Notes = req.Notes
	header.PaymentTerms = req.PaymentTerms

	if req.Format != "" {
		format, err := model.ParseFormat(req.Format)
		if err != nil {
			return nil, nil, err
		}
		header.Format = format
	}

	invoiceDate, err := parseWireDate("invoice_date", req.InvoiceDate)
	if err != nil {
		return nil, nil, err
	}
	header.InvoiceDate = invoiceDate

	dueDate, err := parseWireDate("due_date", req.DueDate)
	if err != nil {
		return nil, nil, err
	}
	header.DueDate = dueDate

	items, err := toItems(req.Items)
	if err != nil {
		return nil, nil, err
	}
	return header, items, nil
}

func (s *Server) renderError(c *gin.Context, err error) {
	var stateErr *model.InvalidStateError
	var dataErr *model.DataError
	var qtyErr *money.InvalidQuantityError
	var rateErr *money.InvalidRateError
	var partialErr *model.PartialCreationError
	var upstreamErr *model.UpstreamError

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})

	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.As(err, &dataErr), errors.As(err, &qtyErr), errors.As(err, &rateErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.As(err, &partialErr):
		failed := make([]int, 0, len(partialErr.Failed))
		for _, f := range partialErr.Failed {
			failed = append(failed, f.Position)
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "invoice creation incomplete",
			Details: err.Error(),
			Created: partialErr.Created,
			Failed:  failed,
		})

	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})

	default:
		s.log.Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
