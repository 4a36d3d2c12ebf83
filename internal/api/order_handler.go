package api

import (
	"net/http"

	"foodhub-be/internal/order"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	useJSONFieldNames()
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	list, err := h.orders.ListOrdersForUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []order.Order{}
	}

	ok(c, http.StatusOK, gin.H{"orders": list})
}

// CreateCheckoutSession prices the cart from stored menus and answers with
// the hosted payment page the client redirects to.
func (h *OrderHandler) CreateCheckoutSession(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.orders.CreateCheckoutSession(c.Request.Context(), req, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"session": res})
}

func (h *OrderHandler) Verify(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	o, err := h.orders.VerifySession(c.Request.Context(), c.Query("session_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"order": o})
}
