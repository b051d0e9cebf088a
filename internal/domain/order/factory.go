package order

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds a stored order from caller input. Versioned requests
// take their hardware fields from the catalog; caller-supplied ids are never used.
func NewFromCreateRequest(req CreateRequest, catalog *Catalog) (Order, error) {
	if err := req.Validate(); err != nil {
		return Order{}, err
	}

	o := Order{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	if req.HasVersion() {
		spec, err := catalog.Resolve(*req.ReadyPupsVersion)
		if err != nil {
			return Order{}, err
		}

		spec.Apply(&o)

		o.Status = spec.Status
		if req.Status != "" {
			o.Status = req.Status
		}
		return o, nil
	}

	o.Capacity = req.Capacity
	o.Power = req.Power
	o.Charger = req.Charger
	o.IsAutoLighter = req.IsAutoLighter
	o.USBQuantity = req.USBQuantity
	o.TypeCQuantity = req.TypeCQuantity
	o.OutletQuantity = req.OutletQuantity
	o.Armor = req.Armor
	o.Price = req.Price
	o.Status = req.Status

	return o, nil
}
