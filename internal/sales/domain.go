package sales

import "time"

// Sale statuses.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusRefunded  = "refunded"
)

// CustomerInfo identifies the buyer of a sale, when known.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sale represents a recorded point-of-sale transaction. Sales are immutable
// once recorded.
type Sale struct {
	ID            string        `json:"id"`
	Timestamp     int64         `json:"timestamp"` // Unix seconds
	Total         float64       `json:"total"`
	Tax           float64       `json:"tax"`
	FinalTotal    float64       `json:"finalTotal"`
	PaymentMethod string        `json:"paymentMethod"`
	SoldByName    string        `json:"soldByName"`
	CustomerInfo  *CustomerInfo `json:"customerInfo,omitempty"`
	Status        string        `json:"status"`
}

// Time returns the sale timestamp as a UTC time.
func (s Sale) Time() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// CustomerName returns the customer's name, or "" when the sale has no customer.
func (s Sale) CustomerName() string {
	if s.CustomerInfo == nil {
		return ""
	}
	return s.CustomerInfo.Name
}

func validStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusPending, StatusRefunded:
		return true
	}
	return false
}
