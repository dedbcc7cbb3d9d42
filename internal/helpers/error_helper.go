package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crowdgate/ticketline/internal/host"
	"github.com/crowdgate/ticketline/internal/ledger"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithLedgerError maps ledger and runtime error kinds onto HTTP
// statuses and writes the standard error envelope.
func RespondWithLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrTokenNotFound):
		RespondWithError(c, http.StatusNotFound, "Ticket not found.")
	case errors.Is(err, ledger.ErrArithmeticFault):
		RespondWithError(c, http.StatusUnprocessableEntity, "Ticket counter overflow or underflow; call rolled back.")
	case errors.Is(err, ledger.ErrNotOwner), errors.Is(err, ledger.ErrNotApproved), errors.Is(err, ledger.ErrNotAllowed):
		RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrInstantiation):
		RespondWithError(c, http.StatusBadGateway, "Failed to instantiate the supply account.")
	case errors.Is(err, host.ErrUnknownCode):
		RespondWithError(c, http.StatusBadRequest, "Code hash is not registered.")
	case errors.Is(err, host.ErrNoEndowment):
		RespondWithError(c, http.StatusBadRequest, "Instantiation requires a non-zero endowment.")
	case errors.Is(err, host.ErrDuplicateInstance):
		RespondWithError(c, http.StatusConflict, "An instance already exists at the derived address.")
	case errors.Is(err, host.ErrInstanceNotFound):
		RespondWithError(c, http.StatusNotFound, "No instance at this address.")
	default:
		RespondWithError(c, http.StatusInternalServerError, "Ledger operation failed.")
	}
}
