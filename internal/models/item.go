package models

// Item is the canonical inventory row at the store-adapter boundary. The
// rest of the pipeline never sees raw database rows.
type Item struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Quantity        int64    `json:"quantity"`
	Price           *float64 `json:"price,omitempty"`
	Location        string   `json:"location,omitempty"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Tags            string   `json:"tags,omitempty"`
	PurchaseDate    string   `json:"purchaseDate,omitempty"`
	IsGift          bool     `json:"isGift,omitempty"`
	StorageLocation string   `json:"storageLocation,omitempty"`
	UsageLocation   string   `json:"usageLocation,omitempty"`
	NeedsRepair     bool     `json:"needsRepair,omitempty"`
}
