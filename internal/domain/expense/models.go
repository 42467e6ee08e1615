package expense

import "time"

// Transport modes accepted on a petrol credit claim.
var TransportModes = []string{"Public Transport", "Private Transport", "Own Transport"}

// Credit is one fuel reimbursement claim. Amount is derived server-side
// from Kms and the claimant's per-km charge; Approved stays NULL until a
// manager decides.
type Credit struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	EmpID      string    `json:"empId,omitempty"`
	TravelDate time.Time `json:"travelDate"`
	FromPlace  string    `json:"from"`
	ToPlace    string    `json:"to"`
	Purpose    string    `json:"purposeOfVisit"`
	Mode       string    `json:"modeOfTransport"`
	Kms        float64   `json:"kms"`
	Amount     float64   `json:"amount"`
	Approved   *bool     `json:"approved"`
	ApprovedBy string    `json:"approvedBy,omitempty"`
	Remarks    string    `json:"remarks,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MonthTotal sums a user's approved claims for the current month.
type MonthTotal struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"totalAmount"`
	Count  int     `json:"count"`
}

// ListFilter narrows scoped listings.
type ListFilter struct {
	UserIDs []string
	From    time.Time
	To      time.Time
	Pending bool
	Search  string
}
