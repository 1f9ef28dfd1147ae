package model

import "time"

// Well-known complaint statuses. Status is deliberately free text: the
// administrator may type any value, these are only the ones the system sets.
const (
	StatusSubmitted = "Submitted" // set on creation
	StatusPending   = "Pending"   // default when an update omits the status
)

// Location is a map-picked coordinate pair. A complaint has both or neither.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AmberDetails are the extra fields collected for the Amber Alert category.
// All of them are optional free text.
type AmberDetails struct {
	ChildName    string `json:"childName"`
	ChildAge     string `json:"childAge"`
	LastLocation string `json:"lastLocation"`
	MoreInfo     string `json:"moreInfo"`
}

// Complaint is a user-submitted report.
//
// ServiceName and CategoryLabel are copies of the catalog labels taken at
// submission time, so later catalog edits never rewrite history. AmberSMS is
// derived once at creation and never recomputed.
type Complaint struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	ServiceName   string        `json:"service"`
	CategoryLabel string        `json:"category"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	FilePath      string        `json:"filePath,omitempty"` // attachment reference, empty when none
	Location      *Location     `json:"location,omitempty"`
	Amber         *AmberDetails `json:"amber,omitempty"`
	AmberSMS      string        `json:"amberSms,omitempty"`
	Status        string        `json:"status"`
	Result        string        `json:"result"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// AdminComplaint is a complaint joined with its owner's identity, as shown in
// the administrator's global listing.
type AdminComplaint struct {
	Complaint
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}
