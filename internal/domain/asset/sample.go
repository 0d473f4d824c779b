package asset

import "time"

// SampleRecordSet is the dataset shown when the device has no stored
// records or the stored snapshot cannot be read.
func SampleRecordSet() RecordSet {
	seeded := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	eta := func(days int) *time.Time {
		t := seeded.AddDate(0, 0, days)
		return &t
	}

	return RecordSet{
		Facilities: []StorageFacility{
			{
				ID:         "sf_sample0001",
				Name:       "Grain Silo North",
				Location:   "Pier 4, Rotterdam",
				Capacity:   8000,
				Used:       7800,
				Status:     FacilityStatusCritical,
				LastUpdate: seeded,
			},
			{
				ID:         "sf_sample0002",
				Name:       "Container Yard East",
				Location:   "Terminal 2, Hamburg",
				Capacity:   12000,
				Used:       6500,
				Status:     FacilityStatusOK,
				LastUpdate: seeded,
			},
			{
				ID:         "sf_sample0003",
				Name:       "Cold Store West",
				Location:   "Dock 9, Antwerp",
				Capacity:   3000,
				Used:       3000,
				Status:     FacilityStatusFull,
				LastUpdate: seeded,
			},
		},
		Vessels: []Vessel{
			{
				ID:          "vs_sample0001",
				Name:        "MV Nordic Star",
				Cargo:       "Wheat",
				Tonnage:     45000,
				Status:      VesselStatusAtSea,
				Destination: "Rotterdam",
				ETA:         eta(3),
				Position:    "54.12N 3.40E",
			},
			{
				ID:          "vs_sample0002",
				Name:        "MV Baltic Trader",
				Cargo:       "Containers",
				Tonnage:     28000,
				Status:      VesselStatusLoading,
				Destination: "Gdansk",
				ETA:         eta(6),
			},
			{
				ID:       "vs_sample0003",
				Name:     "MT Ocean Pearl",
				Cargo:    "Crude oil",
				Tonnage:  110000,
				Status:   VesselStatusAnchored,
				Position: "51.95N 4.05E",
			},
		},
	}
}
