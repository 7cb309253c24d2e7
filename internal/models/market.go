package models

// Order statuses as stored in the Orders table.
const (
	OrderStatusNew       = "New"
	OrderStatusFulfilled = "Fulfilled"
	OrderStatusCancelled = "Cancelled"
)

// Attachment mirrors Airtable's attachment objects on Market Items.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// MarketItemFields maps to the column names of the Market Items table.
type MarketItemFields struct {
	Name        string       `json:"Name,omitempty"`
	Description string       `json:"Description,omitempty"`
	Price       int          `json:"Price"`
	Category    string       `json:"Category,omitempty"`
	Attachments []Attachment `json:"Attachments,omitempty"`
	InStock     bool         `json:"In Stock,omitempty"`
}

type MarketItem struct {
	ID string
	MarketItemFields
}

// OrderFields maps to the column names of the Orders table. User holds the
// buyer's record ID; Items holds linked Order Item record IDs.
type OrderFields struct {
	User       []string `json:"User"`
	Items      []string `json:"Items"`
	Total      int      `json:"Total"`
	Status     string   `json:"Status,omitempty"`
	PickupCode string   `json:"Pickup Code,omitempty"`
}

type Order struct {
	ID string
	OrderFields
}

// OrderItemFields maps to the column names of the Order Items table.
type OrderItemFields struct {
	Order      []string `json:"Order"`
	MarketItem []string `json:"Market Item"`
	Quantity   int      `json:"Quantity"`
	UnitPrice  int      `json:"Unit Price"`
}

type OrderItem struct {
	ID string
	OrderItemFields
}
