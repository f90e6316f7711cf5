// Package events публикует записанные операции по счетам во внешние системы.
package events

import (
	"context"
	"time"
)

// OperationEvent описывает операцию, зафиксированную в журнале счета
type OperationEvent struct {
	OperationID   uint      `json:"operationId"`
	AccountID     string    `json:"accountId"`
	CustomerID    uint      `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Balance       float64   `json:"balance"`
	Description   string    `json:"description"`
	OperationDate time.Time `json:"operationDate"`
}

// Publisher отправляет события операций
type Publisher interface {
	Publish(ctx context.Context, event OperationEvent) error
	Close() error
}

// NopPublisher отбрасывает события; используется, когда брокер не настроен
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OperationEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
