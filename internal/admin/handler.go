package admin

import (
	"encoding/json"
	"net/http"

	"github.com/niiodoi/venda/internal/ledger"
	"github.com/niiodoi/venda/internal/middleware"
)

type AdminHandler struct {
	store ledger.Store
}

func NewAdminHandler(store ledger.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// Summary returns the transaction count, total profit and the full ledger.
// Authentication happens in the router's admin middleware.
func (ah *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	summary, err := ah.store.Summary(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load ledger summary")
		http.Error(w, "failed to load summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.Error().Err(err).Msg("failed to encode ledger summary")
	}
}
