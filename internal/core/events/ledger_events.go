package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeRepaymentCreated    = "ledger.repayment.created"
	EventTypeRepaymentDeleted    = "ledger.repayment.deleted"
	EventTypeReinvestmentCreated = "ledger.reinvestment.created"
	EventTypeReinvestmentDeleted = "ledger.reinvestment.deleted"
)

// LedgerEventTypes lists every event the ledger emits.
var LedgerEventTypes = []string{
	EventTypeRepaymentCreated,
	EventTypeRepaymentDeleted,
	EventTypeReinvestmentCreated,
	EventTypeReinvestmentDeleted,
}

// DistributionEvent reports that an admin repayment or reinvestment and its
// derived records were committed or removed.
type DistributionEvent struct {
	BaseEvent
	OwnerID      int64           `json:"owner_id"`
	ProjectID    int64           `json:"project_id"`
	AdminID      int64           `json:"admin_id"`
	Amount       decimal.Decimal `json:"amount"`
	DerivedCount int             `json:"derived_count"`
}

func NewDistributionEvent(eventType string, ownerID, projectID, adminID int64, amount decimal.Decimal, derivedCount int) *DistributionEvent {
	return &DistributionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"owner_id":      ownerID,
				"project_id":    projectID,
				"admin_id":      adminID,
				"amount":        amount.StringFixed(2),
				"derived_count": derivedCount,
			},
		},
		OwnerID:      ownerID,
		ProjectID:    projectID,
		AdminID:      adminID,
		Amount:       amount,
		DerivedCount: derivedCount,
	}
}
