package output

import (
	"strconv"

	"github.com/orris-inc/harborline/internal/interfaces/dto"
)

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func Facilities(items []dto.FacilityDTO) Table {
	t := Table{Header: []string{"ID", "NAME", "LOCATION", "USED", "CAPACITY", "UTIL", "STATUS", "UPDATED"}}
	for _, f := range items {
		t.Rows = append(t.Rows, []string{
			f.ID,
			f.Name,
			orDash(f.Location),
			number(f.Used),
			number(f.Capacity),
			strconv.Itoa(f.Utilization) + "%",
			f.Status,
			orDash(f.LastUpdate),
		})
	}
	return t
}

func Vessels(items []dto.VesselDTO) Table {
	t := Table{Header: []string{"ID", "NAME", "CARGO", "TONNAGE", "STATUS", "DESTINATION", "ETA", "POSITION"}}
	for _, v := range items {
		t.Rows = append(t.Rows, []string{
			v.ID,
			v.Name,
			orDash(v.Cargo),
			number(v.Tonnage),
			v.Status,
			orDash(v.Destination),
			orDash(v.ETA),
			orDash(v.Position),
		})
	}
	return t
}

func Status(s dto.StatusDTO) Table {
	identity := "-"
	if s.Identity != nil {
		identity = s.Identity.Email
	}
	return Table{Rows: [][]string{
		{"Regime:", s.Regime},
		{"Phase:", s.Phase},
		{"Configured:", strconv.FormatBool(s.Configured)},
		{"Namespace:", orDash(s.Namespace)},
		{"Identity:", identity},
		{"Facilities:", strconv.Itoa(s.Facilities)},
		{"Vessels:", strconv.Itoa(s.Vessels)},
		{"Last error:", orDash(s.LastError)},
	}}
}

func Backend(b dto.BackendDTO) Table {
	return Table{Rows: [][]string{
		{"API key:", orDash(b.APIKey)},
		{"Auth domain:", orDash(b.AuthDomain)},
		{"Project:", orDash(b.ProjectID)},
		{"Organization:", orDash(b.OrgKey)},
		{"Injected:", strconv.FormatBool(b.ReadOnly)},
	}}
}
