package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Version identifies a ready-made product configuration ("1", "1.5", "2").
// It is carried as a canonical decimal string and travels as a JSON number.
type Version string

// ParseVersion canonicalizes a decimal version, so "1.0" and "1" name the same entry.
func ParseVersion(raw string) (Version, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, raw)
	}
	return Version(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (v Version) IsZero() bool {
	return v == "" || v == "0"
}

func (v Version) String() string { return string(v) }

func (v Version) MarshalJSON() ([]byte, error) {
	if v == "" {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	parsed, err := ParseVersion(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Spec is the fixed hardware and price configuration for one version.
type Spec struct {
	Version        Version
	Capacity       float64
	Power          float64
	Charger        float64
	IsAutoLighter  bool
	USBQuantity    int
	TypeCQuantity  int
	OutletQuantity int
	Armor          bool
	Price          float64
	Status         Status
}

// Apply overwrites every catalog-controlled field of o.
func (s Spec) Apply(o *Order) {
	v := s.Version
	o.ReadyPupsVersion = &v
	o.Capacity = s.Capacity
	o.Power = s.Power
	o.Charger = s.Charger
	o.IsAutoLighter = s.IsAutoLighter
	o.USBQuantity = s.USBQuantity
	o.TypeCQuantity = s.TypeCQuantity
	o.OutletQuantity = s.OutletQuantity
	o.Armor = s.Armor
	o.Price = s.Price
}

// Catalog is an immutable version lookup table, safe for concurrent use.
type Catalog struct {
	specs map[Version]Spec
}

func NewCatalog(specs ...Spec) *Catalog {
	m := make(map[Version]Spec, len(specs))
	for _, s := range specs {
		m[s.Version] = s
	}
	return &Catalog{specs: m}
}

func DefaultCatalog() *Catalog {
	return NewCatalog(
		Spec{
			Version: "1", Capacity: 50000, Power: 250, Charger: 5, IsAutoLighter: true,
			USBQuantity: 2, TypeCQuantity: 0, OutletQuantity: 1, Armor: true, Price: 6291,
			Status: StatusPlaced,
		},
		Spec{
			Version: "1.5", Capacity: 50000, Power: 250, Charger: 5, IsAutoLighter: false,
			USBQuantity: 4, TypeCQuantity: 0, OutletQuantity: 1, Armor: true, Price: 6451,
			Status: StatusPlaced,
		},
		Spec{
			Version: "2", Capacity: 60000, Power: 250, Charger: 10, IsAutoLighter: false,
			USBQuantity: 4, TypeCQuantity: 0, OutletQuantity: 1, Armor: true, Price: 7889,
			Status: StatusPlaced,
		},
	)
}

func (c *Catalog) Resolve(v Version) (Spec, error) {
	s, ok := c.specs[v]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	return s, nil
}

// Versions lists the known versions in ascending numeric order.
func (c *Catalog) Versions() []Version {
	out := make([]Version, 0, len(c.specs))
	for v := range c.specs {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseFloat(string(out[i]), 64)
		b, _ := strconv.ParseFloat(string(out[j]), 64)
		return a < b
	})
	return out
}
