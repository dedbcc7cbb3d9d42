package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crowdgate/ticketline/internal/helpers"
	"github.com/crowdgate/ticketline/internal/ledger"
	"github.com/crowdgate/ticketline/internal/middleware"
)

// GetSupply reads the delegate supply account through the ledger's handle.
// The value reflects only the construction-time count plus explicit increase
// calls; mint and transfer never touch it.
func GetSupply(c *gin.Context) {
	addr, ok := ledgerAddress(c)
	if !ok {
		return
	}

	rt := middleware.GetRuntime(c)
	if rt == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	var value uint64
	var supplyAddr string
	err := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		value = l.Supply().Get()
		supplyAddr = l.Supply().Address().String()
		return nil
	})
	if err != nil {
		helpers.RespondWithLedgerError(c, err)
		return
	}

	response := gin.H{
		"supply_address": supplyAddr,
		"value":          value,
	}
	if supply, parseErr := ledger.ParseAccountID(supplyAddr); parseErr == nil {
		if endowment, ok := rt.Endowment(supply); ok {
			response["endowment"] = endowment
		}
	}

	c.JSON(http.StatusOK, response)
}

func IncreaseSupply(c *gin.Context) {
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

	var value uint64
	opErr := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		if err := l.Supply().Increase(); err != nil {
			return err
		}
		value = l.Supply().Get()
		return nil
	})
	journalCall(st, deployment.ID, caller, "supply.increase", nil, nil, opErr)
	if opErr != nil {
		helpers.RespondWithLedgerError(c, opErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supply increased successfully.",
		"value":   value,
	})
}
