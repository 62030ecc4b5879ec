package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string `json:"status"`
		Reference       string `json:"reference"`
		Amount          int64  `json:"amount"`
		Currency        string `json:"currency"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

func main() {
	port := ":8081"
	http.HandleFunc("/transaction/verify/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reference := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")

		resp := verifyResponse{
			Status:  true,
			Message: "Verification successful",
		}
		resp.Data.Reference = reference
		resp.Data.Amount = 600
		resp.Data.Currency = "GHS"
		resp.Data.GatewayResponse = "Approved"

		// References prefixed "bad_" simulate an unpaid charge.
		if strings.HasPrefix(reference, "bad_") {
			resp.Data.Status = "failed"
			resp.Data.GatewayResponse = "Declined"
		} else {
			resp.Data.Status = "success"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)

		log.Printf("Processed mock verification: %s -> %s", reference, resp.Data.Status)
	})

	log.Printf("Mock Paystack server starting on %s...", port)
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal(err)
	}
}
