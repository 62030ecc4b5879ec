package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/niiodoi/venda/pkg/types"
)

// Outbox event naming mirrors the Kafka topic the relay publishes to.
const EventTransactionRecorded = "venda.transaction.recorded"

// PostgresStore persists the ledger in Postgres. Each Append also writes a
// transaction_outbox row in the same tx so the relay can publish the record
// downstream without a dual-write race.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec *Record) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (reference, phone, network, amount_paid, wholesale_cost, profit, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, rec.Reference, rec.Phone, rec.Network, rec.AmountPaid, rec.WholesaleCost, rec.Profit, rec.Status).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	event := types.TransactionRecordedEvent{
		Reference:     rec.Reference,
		Phone:         rec.Phone,
		Network:       string(rec.Network),
		AmountPaid:    rec.AmountPaid,
		WholesaleCost: rec.WholesaleCost,
		Profit:        rec.Profit,
		Status:        string(rec.Status),
		RecordedAt:    rec.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transaction_outbox (event_type, payload, partition_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, EventTransactionRecorded, payload, rec.Reference, "pending", time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{Transactions: []Record{}}

	rows, err := s.db.Query(ctx, `
		SELECT id, reference, phone, network, amount_paid, wholesale_cost, profit, status, created_at
		FROM transactions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Reference, &rec.Phone, &rec.Network,
			&rec.AmountPaid, &rec.WholesaleCost, &rec.Profit, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		summary.Transactions = append(summary.Transactions, rec)
		summary.TotalProfit = summary.TotalProfit.Add(rec.Profit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	summary.TotalTransactions = len(summary.Transactions)
	return summary, nil
}
