package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homeshare/backend/internal/application/finance"
)

// FinanceHandler serves the bill, payment and ledger endpoints
type FinanceHandler struct {
	BaseHandler
	bills        *finance.BillService
	payments     *finance.PaymentService
	reversals    *finance.ReversalService
	queries      *finance.QueryService
	debugEnabled bool
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(
	bills *finance.BillService,
	payments *finance.PaymentService,
	reversals *finance.ReversalService,
	queries *finance.QueryService,
	debugEnabled bool,
) *FinanceHandler {
	return &FinanceHandler{
		bills:        bills,
		payments:     payments,
		reversals:    reversals,
		queries:      queries,
		debugEnabled: debugEnabled,
	}
}

// RegisterRoutes registers the finance routes
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/finance")
	{
		group.POST("/create_bill/:room_id", h.CreateBill)
		group.POST("/pay_user/:room_id", h.PayUser)
		group.DELETE("/delete/bill/:bill_id", h.DeleteBill)
		group.DELETE("/delete/payment/:payment_id", h.DeletePayment)
		group.GET("/transaction_list/:room_id", h.TransactionList)
		group.GET("/bills_by_date/:room_id", h.BillsByDate)
		group.GET("/net_balances/:room_id", h.NetBalances)
		group.GET("/user_debts/:room_id", h.UserDebts)

		if h.debugEnabled {
			group.GET("/debug/consistency/:room_id", h.Consistency)
			group.DELETE("/debug/clear_room_transactions/:room_id", h.ClearRoomTransactions)
		}
	}
}

// CreateBill handles POST /finance/create_bill/:room_id
func (h *FinanceHandler) CreateBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	var req finance.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.bills.CreateBill(c.Request.Context(), userID, roomID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// PayUser handles POST /finance/pay_user/:room_id
func (h *FinanceHandler) PayUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	var req finance.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.payments.CreatePayment(c.Request.Context(), userID, roomID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// DeleteBill handles DELETE /finance/delete/bill/:bill_id
func (h *FinanceHandler) DeleteBill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	billID, err := parseUUIDParam(c, "bill_id")
	if err != nil {
		h.BadRequest(c, "invalid bill_id")
		return
	}

	if err := h.reversals.DeleteBill(c.Request.Context(), userID, billID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeletePayment handles DELETE /finance/delete/payment/:payment_id
func (h *FinanceHandler) DeletePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	paymentID, err := parseUUIDParam(c, "payment_id")
	if err != nil {
		h.BadRequest(c, "invalid payment_id")
		return
	}

	if err := h.reversals.DeletePayment(c.Request.Context(), userID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TransactionList handles GET /finance/transaction_list/:room_id
func (h *FinanceHandler) TransactionList(c *gin.Context) {
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	items, err := h.queries.GetRoomActivity(c.Request.Context(), roomID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// BillsByDate handles GET /finance/bills_by_date/:room_id?date=2006-01-02
func (h *FinanceHandler) BillsByDate(c *gin.Context) {
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		h.BadRequest(c, "date must be in YYYY-MM-DD format")
		return
	}

	bills, err := h.queries.GetRoomBillsByDate(c.Request.Context(), roomID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bills)
}

// NetBalances handles GET /finance/net_balances/:room_id
func (h *FinanceHandler) NetBalances(c *gin.Context) {
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	balances, err := h.queries.GetNetBalances(c.Request.Context(), roomID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// UserDebts handles GET /finance/user_debts/:room_id for the caller
func (h *FinanceHandler) UserDebts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	summary, err := h.queries.GetUserDebtSummary(c.Request.Context(), roomID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Consistency handles GET /finance/debug/consistency/:room_id
func (h *FinanceHandler) Consistency(c *gin.Context) {
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	violations, err := h.queries.ValidateConsistency(c.Request.Context(), roomID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"consistent": len(violations) == 0, "violations": violations})
}

// ClearRoomTransactions handles DELETE /finance/debug/clear_room_transactions/:room_id
func (h *FinanceHandler) ClearRoomTransactions(c *gin.Context) {
	roomID, err := parseUUIDParam(c, "room_id")
	if err != nil {
		h.BadRequest(c, "invalid room_id")
		return
	}

	result, err := h.queries.ClearRoomTransactions(c.Request.Context(), roomID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
