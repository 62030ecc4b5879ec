package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/niiodoi/venda/internal/middleware"
	"github.com/niiodoi/venda/internal/pipeline"
	"github.com/niiodoi/venda/pkg/types"
)

type WebhookHandler struct {
	pipeline *pipeline.Pipeline
}

func NewWebhookHandler(p *pipeline.Pipeline) *WebhookHandler {
	return &WebhookHandler{pipeline: p}
}

// HandleWebhook is the Paystack delivery entry point. The pipeline runs on a
// context detached from the connection: if Paystack drops the delivery
// mid-flight the customer's bundle purchase still completes and is recorded.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	var event types.PaystackWebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		logger.Error().Err(err).Msg("failed to decode webhook payload")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	result := h.pipeline.Process(context.WithoutCancel(ctx), &event)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(result.Outcome))
	json.NewEncoder(w).Encode(map[string]string{"status": string(result.Outcome)})
}

func statusFor(outcome pipeline.Outcome) int {
	switch outcome {
	case pipeline.OutcomeIgnored, pipeline.OutcomeSuccess, pipeline.OutcomeDuplicate:
		return http.StatusOK
	case pipeline.OutcomeMalformed, pipeline.OutcomeUnverified, pipeline.OutcomeNoBundle:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
