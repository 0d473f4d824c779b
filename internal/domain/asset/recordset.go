package asset

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind names a record collection. The value doubles as the remote
// collection segment under a tenant namespace.
type Kind string

const (
	KindFacility Kind = "storageFacilities"
	KindVessel   Kind = "vessels"
)

func (k Kind) String() string {
	return string(k)
}

// RecordSet is the full working copy of both collections. The JSON shape is
// the persisted local snapshot format.
type RecordSet struct {
	Facilities []StorageFacility `json:"warehouses"`
	Vessels    []Vessel          `json:"vessels"`
}

// Clone returns a deep copy whose slices do not alias s.
func (s RecordSet) Clone() RecordSet {
	out := RecordSet{
		Facilities: make([]StorageFacility, len(s.Facilities)),
		Vessels:    make([]Vessel, len(s.Vessels)),
	}
	copy(out.Facilities, s.Facilities)
	for i, v := range s.Vessels {
		if v.ETA != nil {
			eta := *v.ETA
			v.ETA = &eta
		}
		out.Vessels[i] = v
	}
	return out
}

// FacilityIndex returns the position of id, or -1.
func (s RecordSet) FacilityIndex(id string) int {
	for i := range s.Facilities {
		if s.Facilities[i].ID == id {
			return i
		}
	}
	return -1
}

// VesselIndex returns the position of id, or -1.
func (s RecordSet) VesselIndex(id string) int {
	for i := range s.Vessels {
		if s.Vessels[i].ID == id {
			return i
		}
	}
	return -1
}

func newNameCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase, collate.Loose)
}

// SortFacilities orders by display name, then id.
func SortFacilities(items []StorageFacility) {
	c := newNameCollator()
	sort.SliceStable(items, func(i, j int) bool {
		if r := c.CompareString(items[i].Name, items[j].Name); r != 0 {
			return r < 0
		}
		return items[i].ID < items[j].ID
	})
}

// SortVessels orders by display name, then id.
func SortVessels(items []Vessel) {
	c := newNameCollator()
	sort.SliceStable(items, func(i, j int) bool {
		if r := c.CompareString(items[i].Name, items[j].Name); r != 0 {
			return r < 0
		}
		return items[i].ID < items[j].ID
	})
}

// Sorted returns a clone of s with both collections in display order.
func (s RecordSet) Sorted() RecordSet {
	out := s.Clone()
	SortFacilities(out.Facilities)
	SortVessels(out.Vessels)
	return out
}
