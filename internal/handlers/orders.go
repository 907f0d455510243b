package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/AlenaMolokova/escort/internal/middleware"
	"github.com/AlenaMolokova/escort/internal/models"
	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/shopspring/decimal"
)

type orderResponse struct {
	ExternalID   string          `json:"order_id"`
	CustomerInfo string          `json:"customer_info"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	Rating       int32           `json:"rating,omitempty"`
}

func toOrderResponse(o models.Order) orderResponse {
	return orderResponse{
		ExternalID:   o.ExternalID,
		CustomerInfo: o.CustomerInfo,
		Amount:       o.Amount,
		Status:       o.Status,
		Rating:       o.Rating,
	}
}

// IngestOrderHandler is the admin entry point for recording a new order.
type IngestOrderHandler struct {
	orders OrderService
}

func NewIngestOrderHandler(orders OrderService) *IngestOrderHandler {
	return &IngestOrderHandler{orders: orders}
}

func (h *IngestOrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID      string          `json:"order_id"`
		Amount       decimal.Decimal `json:"amount"`
		CustomerInfo string          `json:"customer_info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orders.Ingest(r.Context(), req.OrderID, req.CustomerInfo, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("Order #%s ingested, amount %s", order.ExternalID, order.Amount.StringFixed(2))
	utils.WriteJSON(w, http.StatusCreated, toOrderResponse(order))
}

type PendingOrdersHandler struct {
	orders OrderService
}

func NewPendingOrdersHandler(orders OrderService) *PendingOrdersHandler {
	return &PendingOrdersHandler{orders: orders}
}

func (h *PendingOrdersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListPending(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// WorkerOrdersHandler lists the orders the caller is assigned to.
type WorkerOrdersHandler struct {
	orders OrderService
}

func NewWorkerOrdersHandler(orders OrderService) *WorkerOrdersHandler {
	return &WorkerOrdersHandler{orders: orders}
}

func (h *WorkerOrdersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerID(r)
	if !ok {
		utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.orders.WorkerOrders(r.Context(), workerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
