package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type orderRequest struct {
	Network    string `json:"network"`
	Reference  string `json:"reference"`
	MSISDN     string `json:"msisdn"`
	CapacityGB int    `json:"capacity"`
}

type orderAck struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

func main() {
	port := ":8082"
	http.HandleFunc("/order", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		// References prefixed "reject_" simulate a provider-side failure.
		if strings.HasPrefix(req.Reference, "reject_") {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(orderAck{Status: "failed", Message: "insufficient provider balance"})
			log.Printf("Rejected mock order: %s", req.Reference)
			return
		}

		ack := orderAck{
			Status:  "success",
			OrderID: fmt.Sprintf("mock_order_%d", time.Now().UnixNano()),
			Message: "Order queued",
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ack)

		log.Printf("Accepted mock order: %s %s %dGB for %s", req.Reference, req.Network, req.CapacityGB, req.MSISDN)
	})

	log.Printf("Mock Bytewave server starting on %s...", port)
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal(err)
	}
}
