package order

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPlaced             Status = "placed"
	StatusMaterialsPurchased Status = "purchasingMaterials"
	StatusInProduction       Status = "manufacturing"
	StatusInDelivery         Status = "delivering"
	StatusCompleted          Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPlaced, StatusMaterialsPurchased, StatusInProduction, StatusInDelivery, StatusCompleted:
		return true
	}
	return false
}

var (
	ErrNotFound           = errors.New("order not found")
	ErrUnsupportedVersion = errors.New("unsupported readyPupsVersion")
	ErrInvalidOrder       = errors.New("invalid order")
)

// Order is one entry of a user's order collection. It is never mutated after creation.
type Order struct {
	ID               string    `json:"id" bson:"id"`
	Capacity         float64   `json:"capacity" bson:"capacity"`
	Power            float64   `json:"power" bson:"power"`
	Charger          float64   `json:"charger" bson:"charger"`
	IsAutoLighter    bool      `json:"isAutoLighter" bson:"isAutoLighter"`
	USBQuantity      int       `json:"usbQuantity" bson:"usbQuantity"`
	TypeCQuantity    int       `json:"typecQuantity" bson:"typecQuantity"`
	OutletQuantity   int       `json:"outletQuantity" bson:"outletQuantity"`
	Armor            bool      `json:"armor" bson:"armor"`
	Price            float64   `json:"price" bson:"price"`
	Status           Status    `json:"status" bson:"status"`
	ReadyPupsVersion *Version  `json:"readyPupsVersion" bson:"readyPupsVersion"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}

// CreateRequest is the caller input for a new order. When ReadyPupsVersion is set
// every hardware and price field is replaced by the catalog entry.
type CreateRequest struct {
	Capacity         float64  `json:"capacity" binding:"omitempty,min=0"`
	Power            float64  `json:"power" binding:"omitempty,min=0"`
	Charger          float64  `json:"charger" binding:"omitempty,min=0"`
	IsAutoLighter    bool     `json:"isAutoLighter"`
	USBQuantity      int      `json:"usbQuantity" binding:"min=0"`
	TypeCQuantity    int      `json:"typecQuantity" binding:"min=0"`
	OutletQuantity   int      `json:"outletQuantity" binding:"min=0"`
	Armor            bool     `json:"armor"`
	Price            float64  `json:"price" binding:"omitempty,min=0"`
	Status           Status   `json:"status"`
	ReadyPupsVersion *Version `json:"readyPupsVersion"`
}

// HasVersion reports whether the request names a catalog version. A zero version counts as absent.
func (r CreateRequest) HasVersion() bool {
	return r.ReadyPupsVersion != nil && !r.ReadyPupsVersion.IsZero()
}

// Validate checks the rules binding tags cannot express.
func (r CreateRequest) Validate() error {
	if r.Status != "" && !r.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, r.Status)
	}

	if r.HasVersion() {
		return nil
	}

	if r.Status == "" {
		return fmt.Errorf("%w: status is required without readyPupsVersion", ErrInvalidOrder)
	}

	if r.USBQuantity < 0 || r.TypeCQuantity < 0 || r.OutletQuantity < 0 {
		return fmt.Errorf("%w: quantities must be non-negative", ErrInvalidOrder)
	}

	return nil
}
