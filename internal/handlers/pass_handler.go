package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/crowdgate/ticketline/internal/helpers"
	"github.com/crowdgate/ticketline/internal/ledger"
	"github.com/crowdgate/ticketline/internal/middleware"
)

func generatePassData(eventAddr string, ticketID uint32, holder ledger.AccountID) string {
	signature := generatePassSignature(eventAddr, ticketID, holder, os.Getenv("JWT_SECRET"))
	return fmt.Sprintf("event:%s;ticket:%d;holder:%s;signature:%s",
		eventAddr,
		ticketID,
		holder.String(),
		signature,
	)
}

func generatePassSignature(eventAddr string, ticketID uint32, holder ledger.AccountID, secretKey string) string {
	data := fmt.Sprintf("%s:%d:%s", eventAddr, ticketID, holder.String())
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func parsePassData(passData string) (eventAddr string, ticketID uint32, holder ledger.AccountID, err error) {
	parts := strings.Split(passData, ";")
	if len(parts) != 4 ||
		!strings.HasPrefix(parts[0], "event:") ||
		!strings.HasPrefix(parts[1], "ticket:") ||
		!strings.HasPrefix(parts[2], "holder:") ||
		!strings.HasPrefix(parts[3], "signature:") {
		return "", 0, ledger.AccountID{}, fmt.Errorf("invalid pass data format")
	}

	eventAddr = strings.TrimPrefix(parts[0], "event:")
	ticketID, err = helpers.StringToUint32(strings.TrimPrefix(parts[1], "ticket:"))
	if err != nil {
		return "", 0, ledger.AccountID{}, fmt.Errorf("invalid ticket ID in pass")
	}
	holder, err = ledger.ParseAccountID(strings.TrimPrefix(parts[2], "holder:"))
	if err != nil {
		return "", 0, ledger.AccountID{}, fmt.Errorf("invalid holder in pass")
	}
	return eventAddr, ticketID, holder, nil
}

func validatePassSignature(passData string) bool {
	parts := strings.Split(passData, ";")
	if len(parts) != 4 || !strings.HasPrefix(parts[3], "signature:") {
		return false
	}

	eventAddr, ticketID, holder, err := parsePassData(passData)
	if err != nil {
		return false
	}

	signature := strings.TrimPrefix(parts[3], "signature:")
	expected := generatePassSignature(eventAddr, ticketID, holder, os.Getenv("JWT_SECRET"))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// GenerateTicketPass renders a signed QR pass for one of the caller's
// tickets. The ledger tracks aggregate balances, not per-unit ownership, so
// holding any balance on the event is what entitles the caller to a pass.
func GenerateTicketPass(c *gin.Context) {
	_, caller, ok := currentCaller(c)
	if !ok {
		return
	}

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

	opErr := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		if !l.Exists(ticketID) {
			return ledger.ErrTokenNotFound
		}
		if l.Balance(caller) == 0 {
			return ledger.ErrNotOwner
		}
		return nil
	})
	if opErr != nil {
		helpers.RespondWithLedgerError(c, opErr)
		return
	}

	passData := generatePassData(addr.String(), ticketID, caller)

	qrImage, err := qrcode.Encode(passData, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

// ValidateTicketPass checks a scanned pass: signature first, then that the
// ticket is still assigned on the live ledger.
func ValidateTicketPass(c *gin.Context) {
	var req struct {
		PassData string `json:"pass_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	if !validatePassSignature(req.PassData) {
		c.JSON(http.StatusOK, gin.H{
			"valid":  false,
			"reason": "Signature mismatch.",
		})
		return
	}

	eventAddr, ticketID, holder, err := parsePassData(req.PassData)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pass format.")
		return
	}

	addr, err := ledger.ParseAccountID(eventAddr)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event address in pass.")
		return
	}

	rt := middleware.GetRuntime(c)
	if rt == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Runtime not available.")
		return
	}

	var exists bool
	var balance uint64
	opErr := rt.WithLedger(addr, func(l *ledger.EventLedger) error {
		exists = l.Exists(ticketID)
		balance = l.BalanceOf(holder)
		return nil
	})
	if opErr != nil {
		helpers.RespondWithLedgerError(c, opErr)
		return
	}

	if !exists {
		c.JSON(http.StatusOK, gin.H{
			"valid":  false,
			"reason": "Ticket is no longer assigned.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"event":     eventAddr,
		"ticket_id": ticketID,
		"holder":    holder.String(),
		"balance":   balance,
	})
}
