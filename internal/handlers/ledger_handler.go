package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crowdgate/ticketline/internal/helpers"
	"github.com/crowdgate/ticketline/internal/host"
	"github.com/crowdgate/ticketline/internal/ledger"
	"github.com/crowdgate/ticketline/internal/middleware"
	"github.com/crowdgate/ticketline/internal/models"
	"github.com/crowdgate/ticketline/internal/store"
)

type CreateEventRequest struct {
	TotalTickets   uint64 `json:"total_tickets"`
	Version        uint32 `json:"version"`
	Name           string `json:"name" binding:"required"`
	Location       string `json:"location" binding:"required"`
	Symbol         string `json:"symbol" binding:"required"`
	Date           string `json:"date" binding:"required"`
	Price          uint32 `json:"price"`
	SupplyCodeHash string `json:"supply_code_hash" binding:"required"`
}

type MintRequest struct {
	TicketID *uint32 `json:"ticket_id" binding:"required"`
	Amount   *uint64 `json:"amount" binding:"required"`
}

type TransferRequest struct {
	From     string  `json:"from" binding:"required"`
	To       string  `json:"to" binding:"required"`
	TicketID *uint32 `json:"ticket_id" binding:"required"`
	Count    *uint64 `json:"count" binding:"required"`
}

type AddTicketRequest struct {
	To       string  `json:"to" binding:"required"`
	TicketID *uint32 `json:"ticket_id" binding:"required"`
}

type RemoveTicketRequest struct {
	From     string  `json:"from" binding:"required"`
	TicketID *uint32 `json:"ticket_id" binding:"required"`
}

func currentCaller(c *gin.Context) (uuid.UUID, ledger.AccountID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return uuid.Nil, ledger.AccountID{}, false
	}
	id := userID.(uuid.UUID)
	return id, ledger.AccountFromUUID(id), true
}

func ledgerAddress(c *gin.Context) (ledger.AccountID, bool) {
	addr, err := ledger.ParseAccountID(c.Param("address"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event address.")
		return ledger.AccountID{}, false
	}
	return addr, true
}

// journalCall appends the outcome of a mutating call to the audit trail. A
// journaling failure must not fail the call itself.
func journalCall(st store.LedgerStore, deploymentID uuid.UUID, caller ledger.AccountID, method string, ticketID *uint32, amount *uint64, opErr error) {
	outcome := "ok"
	if opErr != nil {
		outcome = opErr.Error()
	}

	record := models.CallRecord{
		DeploymentID: deploymentID,
		Caller:       caller.String(),
		Method:       method,
		TicketID:     ticketID,
		Amount:       amount,
		Outcome:      outcome,
	}
	if err := st.RecordCall(&record); err != nil {
		fmt.Printf("Error recording call: %v\n", err)
	}
}

func CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, caller, ok := currentCaller(c)
	if !ok {
		return
	}

	rt := middleware.GetRuntime(c)
	st := middleware.GetStore(c)
	if rt == nil || st == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	code, err := ledger.ParseCodeHash(req.SupplyCodeHash)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid supply code hash.")
		return
	}

	addr, l, err := rt.DeployLedger(caller, host.DeployParams{
		TotalTickets: req.TotalTickets,
		Version:      req.Version,
		Name:         req.Name,
		Location:     req.Location,
		Symbol:       req.Symbol,
		Date:         req.Date,
		Price:        req.Price,
		SupplyCode:   code,
	})
	if err != nil {
		helpers.RespondWithLedgerError(c, err)
		return
	}

	deployment := models.Deployment{
		Address:       addr.String(),
		SupplyAddress: l.Supply().Address().String(),
		CodeHash:      req.SupplyCodeHash,
		Version:       req.Version,
		Name:          req.Name,
		Location:      req.Location,
		Symbol:        req.Symbol,
		Date:          req.Date,
		Price:         req.Price,
		TotalTickets:  req.TotalTickets,
		DeployerID:    userID,
	}
	if err := st.CreateDeployment(&deployment); err != nil {
		fmt.Printf("Error recording deployment: %v\n", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Event ledger deployed successfully.",
		"address":        addr.String(),
		"supply_address": l.Supply().Address().String(),
	})
}

func ListEvents(c *gin.Context) {
	st := middleware.GetStore(c)
	if st == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Store not available.")
		return
	}

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	pageNum, err := helpers.StringToInt(page)
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}

	limitNum, err := helpers.StringToInt(limit)
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	offset := (pageNum - 1) * limitNum
	deployments, totalCount, err := st.ListDeployments(offset, limitNum)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      deployments,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func GetEvent(c *gin.Context) {
	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	rt := middleware.GetRuntime(c)
	st := middleware.GetStore(c)
	if rt == nil || st == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	deployment, err := st.DeploymentByAddress(addr.String())
	if err != nil {
		if errors.Is(err, store.ErrDeploymentNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	response := gin.H{
		"address":        deployment.Address,
		"supply_address": deployment.SupplyAddress,
		"version":        deployment.Version,
		"name":           deployment.Name,
		"location":       deployment.Location,
		"symbol":         deployment.Symbol,
		"date":           deployment.Date,
		"price":          deployment.Price,
		"total_tickets":  deployment.TotalTickets,
		"live":           false,
	}

	err = rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		response["live"] = true
		response["total_tickets"] = l.TotalTickets()
		response["supply_value"] = l.Supply().Get()
		return nil
	})
	if err != nil && !errors.Is(err, host.ErrInstanceNotFound) {
		helpers.RespondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetOwner mirrors the ledger's owner query, which echoes the current caller
// rather than any stored issuer.
func GetOwner(c *gin.Context) {
	_, caller, ok := currentCaller(c)
	if !ok {
		return
	}

	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	rt := middleware.GetRuntime(c)
	if rt == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	var owner ledger.AccountID
	err := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		owner = l.Owner(caller)
		return nil
	})
	if err != nil {
		helpers.RespondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"owner": owner.String(),
	})
}

func GetBalance(c *gin.Context) {
	_, caller, ok := currentCaller(c)
	if !ok {
		return
	}

	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	rt := middleware.GetRuntime(c)
	if rt == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	var balance uint64
	err := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		balance = l.Balance(caller)
		return nil
	})
	if err != nil {
		helpers.RespondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"holder":  caller.String(),
		"balance": balance,
	})
}

func GetBalanceOf(c *gin.Context) {
	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	holder, err := ledger.ParseAccountID(c.Param("holder"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid holder account.")
		return
	}

	rt := middleware.GetRuntime(c)
	if rt == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	var balance uint64
	err = rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		balance = l.BalanceOf(holder)
		return nil
	})
	if err != nil {
		helpers.RespondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"holder":  holder.String(),
		"balance": balance,
	})
}

func CheckTicket(c *gin.Context) {
	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	ticketID, err := helpers.StringToUint32(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	rt := middleware.GetRuntime(c)
	if rt == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	var exists bool
	err = rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		exists = l.Exists(ticketID)
		return nil
	})
	if err != nil {
		helpers.RespondWithLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticket_id": ticketID,
		"exists":    exists,
	})
}

func MintTickets(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	_, caller, ok := currentCaller(c)
	if !ok {
		return
	}

	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	rt := middleware.GetRuntime(c)
	st := middleware.GetStore(c)
	if rt == nil || st == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	deployment, err := st.DeploymentByAddress(addr.String())
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	var total, balance uint64
	opErr := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		if err := l.Mint(caller, *req.TicketID, *req.Amount); err != nil {
			return err
		}
		total = l.TotalTickets()
		balance = l.Balance(caller)
		return nil
	})
	journalCall(st, deployment.ID, caller, "mint", req.TicketID, req.Amount, opErr)
	if opErr != nil {
		helpers.RespondWithLedgerError(c, opErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Tickets minted successfully.",
		"ticket_id":     *req.TicketID,
		"total_tickets": total,
		"balance":       balance,
	})
}

func TransferTickets(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	_, caller, ok := currentCaller(c)
	if !ok {
		return
	}

	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	from, err := ledger.ParseAccountID(req.From)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid source account.")
		return
	}
	to, err := ledger.ParseAccountID(req.To)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid destination account.")
		return
	}

	rt := middleware.GetRuntime(c)
	st := middleware.GetStore(c)
	if rt == nil || st == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	deployment, err := st.DeploymentByAddress(addr.String())
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	// The ledger accepts any `from`, caller included or not. Authorization
	// is a declared but unenforced part of the ownership contract.
	var fromBalance, toBalance uint64
	opErr := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		if err := l.TransferFrom(from, to, *req.TicketID, *req.Count); err != nil {
			return err
		}
		fromBalance = l.BalanceOf(from)
		toBalance = l.BalanceOf(to)
		return nil
	})
	journalCall(st, deployment.ID, caller, "transfer_from", req.TicketID, req.Count, opErr)
	if opErr != nil {
		helpers.RespondWithLedgerError(c, opErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Tickets transferred successfully.",
		"ticket_id":    *req.TicketID,
		"from_balance": fromBalance,
		"to_balance":   toBalance,
	})
}

func AddTicket(c *gin.Context) {
	var req AddTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	_, caller, ok := currentCaller(c)
	if !ok {
		return
	}

	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	to, err := ledger.ParseAccountID(req.To)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid destination account.")
		return
	}

	rt := middleware.GetRuntime(c)
	st := middleware.GetStore(c)
	if rt == nil || st == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	deployment, err := st.DeploymentByAddress(addr.String())
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	var balance uint64
	opErr := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		if err := l.AddTokenTo(to, *req.TicketID); err != nil {
			return err
		}
		balance = l.BalanceOf(to)
		return nil
	})
	journalCall(st, deployment.ID, caller, "add_token_to", req.TicketID, nil, opErr)
	if opErr != nil {
		helpers.RespondWithLedgerError(c, opErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Ticket assigned successfully.",
		"ticket_id": *req.TicketID,
		"balance":   balance,
	})
}

func RemoveTicket(c *gin.Context) {
	var req RemoveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	_, caller, ok := currentCaller(c)
	if !ok {
		return
	}

	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	from, err := ledger.ParseAccountID(req.From)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid source account.")
		return
	}

	rt := middleware.GetRuntime(c)
	st := middleware.GetStore(c)
	if rt == nil || st == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	deployment, err := st.DeploymentByAddress(addr.String())
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	var balance uint64
	opErr := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		if err := l.RemoveTokenFrom(from, *req.TicketID); err != nil {
			return err
		}
		balance = l.BalanceOf(from)
		return nil
	})
	journalCall(st, deployment.ID, caller, "remove_token_from", req.TicketID, nil, opErr)
	if opErr != nil {
		helpers.RespondWithLedgerError(c, opErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Ticket removed successfully.",
		"ticket_id": *req.TicketID,
		"balance":   balance,
	})
}
