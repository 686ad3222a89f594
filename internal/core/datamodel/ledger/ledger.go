package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind is the channel a payment arrived through. Reinvestment is the
// only kind that changes organic-donation classification.
type PaymentKind string

const (
	KindPaypal       PaymentKind = "paypal"
	KindCheck        PaymentKind = "check"
	KindCredit       PaymentKind = "credit"
	KindReinvestment PaymentKind = "reinvestment"
)

var paymentKinds = []PaymentKind{KindPaypal, KindCheck, KindCredit, KindReinvestment}

// ParsePaymentKind returns the kind named by s, or false when s is not one.
func ParsePaymentKind(s string) (PaymentKind, bool) {
	for _, k := range paymentKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func (k PaymentKind) Valid() bool {
	_, ok := ParsePaymentKind(string(k))
	return ok
}

type Payment struct {
	ID                  int64           `gorm:"primaryKey" json:"id"`
	Amount              decimal.Decimal `gorm:"column:amount;type:numeric(15,2);not null" json:"amount"`
	PayerID             int64           `gorm:"column:payer_id;not null;index" json:"payer_id"`
	EntrantID           int64           `gorm:"column:entrant_id;not null" json:"entrant_id"`
	Kind                PaymentKind     `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	ProjectID           int64           `gorm:"column:project_id;not null;index" json:"project_id"`
	AdminReinvestmentID *int64          `gorm:"column:admin_reinvestment_id;index" json:"admin_reinvestment_id,omitempty"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

type AdminRepayment struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(15,2);not null" json:"amount"`
	AdminID   int64           `gorm:"column:admin_id;not null" json:"admin_id"`
	ProjectID int64           `gorm:"column:project_id;not null;index" json:"project_id"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AdminRepayment) TableName() string {
	return "admin_repayments"
}

// Repayment is derived from an AdminRepayment and lives exactly as long as it.
type Repayment struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	UserID           int64           `gorm:"column:user_id;not null;index" json:"user_id"`
	ProjectID        int64           `gorm:"column:project_id;not null;index" json:"project_id"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(15,2);not null" json:"amount"`
	AdminRepaymentID int64           `gorm:"column:admin_repayment_id;not null;index" json:"admin_repayment_id"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Repayment) TableName() string {
	return "repayments"
}

type AdminReinvestment struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(15,2);not null" json:"amount"`
	AdminID   int64           `gorm:"column:admin_id;not null" json:"admin_id"`
	ProjectID int64           `gorm:"column:project_id;not null;index" json:"project_id"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AdminReinvestment) TableName() string {
	return "admin_reinvestments"
}

// Models lists every ledger table, in creation order.
func Models() []interface{} {
	return []interface{}{&Payment{}, &AdminRepayment{}, &Repayment{}, &AdminReinvestment{}}
}
