package parcel

import (
	"encoding/json"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Owner identifies the person a parcel is registered to.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is the administrative address of a parcel.
type Location struct {
	District string `json:"district,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Cell     string `json:"cell,omitempty"`
	Village  string `json:"village,omitempty"`
}

// Verification is the parsed result of a parcel lookup.
type Verification struct {
	UPI              string          `json:"upi"`
	LandUse          string          `json:"land_use,omitempty"`
	Owner            Owner           `json:"owner"`
	Location         Location        `json:"location"`
	Latitude         *float64        `json:"latitude,omitempty"`
	Longitude        *float64        `json:"longitude,omitempty"`
	UnderMortgage    bool            `json:"under_mortgage"`
	UnderRestriction bool            `json:"under_restriction"`
	InProcess        bool            `json:"in_process"`
	PlannedLandUses  []any           `json:"planned_land_uses"`
	Size             float64         `json:"size,omitempty"`
	Area             float64         `json:"area,omitempty"`
	Raw              json.RawMessage `json:"raw,omitempty"`
}

// Parse reads a parcel lookup body. Unknown fields are kept in Raw.
func Parse(upi string, data []byte) (*Verification, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(ErrMalformedParcel, "failed to decode parcel", goerr.V(UPIKey, upi), goerr.V("cause", err.Error()))
	}
	if doc == nil {
		return nil, goerr.Wrap(ErrMalformedParcel, "parcel body is empty", goerr.V(UPIKey, upi))
	}

	v := &Verification{
		UPI:              strings.TrimSpace(upi),
		LandUse:          firstText(doc, "landUseNameEnglish", "landUseName"),
		Owner:            ownerOf(doc),
		Location:         locationOf(doc),
		UnderMortgage:    model.Truthy(doc["isUnderMortgage"]),
		UnderRestriction: model.Truthy(doc["isUnderRestriction"]),
		InProcess:        model.Truthy(doc["inProcess"]),
		PlannedLandUses:  plannedOf(doc),
		Raw:              append(json.RawMessage(nil), data...),
	}
	v.Latitude, v.Longitude = coordinatesOf(doc)
	if n, ok := model.Number(doc["size"]); ok {
		v.Size = n
	}
	if n, ok := model.Number(doc["area"]); ok {
		v.Area = n
	}
	return v, nil
}

// Blocked returns the reasons the parcel cannot be uploaded, in a fixed
// order.
func (v *Verification) Blocked() []string {
	var reasons []string
	if v.UnderMortgage {
		reasons = append(reasons, "Under mortgage")
	}
	if v.UnderRestriction {
		reasons = append(reasons, "Under restriction")
	}
	if v.InProcess {
		reasons = append(reasons, "Parcel currently in process")
	}
	return reasons
}

// PlannedArea sums the area (or size) of the planned land uses.
func (v *Verification) PlannedArea() float64 {
	var total float64
	for _, item := range v.PlannedLandUses {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if n, ok := model.Number(entry["area"]); ok && n != 0 {
			total += n
			continue
		}
		if n, ok := model.Number(entry["size"]); ok {
			total += n
		}
	}
	return total
}

// RawValue returns the lookup body as a generic value for payloads.
func (v *Verification) RawValue() any {
	if v == nil || len(v.Raw) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(v.Raw, &out); err != nil {
		return nil
	}
	return out
}

func ownerOf(doc map[string]any) Owner {
	if rep, ok := doc["representative"].(map[string]any); ok {
		if id := text(rep["idNo"]); id != "" {
			name := strings.TrimSpace(text(rep["foreNames"]) + " " + text(rep["surname"]))
			return Owner{ID: id, Name: name}
		}
	}
	if owners, ok := doc["owners"].([]any); ok && len(owners) > 0 {
		if first, ok := owners[0].(map[string]any); ok {
			return Owner{ID: text(first["idNo"]), Name: text(first["fullName"])}
		}
	}
	return Owner{}
}

func locationOf(doc map[string]any) Location {
	loc, _ := doc["parcelLocation"].(map[string]any)
	if loc == nil {
		loc, _ = doc["parcel_location"].(map[string]any)
	}
	if loc == nil {
		if rep, ok := doc["representative"].(map[string]any); ok {
			loc, _ = rep["address"].(map[string]any)
		}
	}
	if loc == nil {
		return Location{}
	}
	return Location{
		District: levelName(loc, "district"),
		Sector:   levelName(loc, "sector"),
		Cell:     levelName(loc, "cell"),
		Village:  levelName(loc, "village"),
	}
}

// levelName reads {"district": {"districtName": ..}} or the flat
// "districtName" form.
func levelName(loc map[string]any, level string) string {
	key := level + "Name"
	if nested, ok := loc[level].(map[string]any); ok {
		if name := text(nested[key]); name != "" {
			return name
		}
	}
	return text(loc[key])
}

func coordinatesOf(doc map[string]any) (*float64, *float64) {
	var lat, lon *float64
	if coords, ok := doc["coordinates"].([]any); ok && len(coords) > 0 {
		if first, ok := coords[0].(map[string]any); ok {
			lat = firstNumber(first, "lat", "latitude")
			lon = firstNumber(first, "lon", "longitude", "lng")
		}
	}
	if lat == nil || lon == nil {
		if n := firstNumber(doc, "latitude"); n != nil {
			lat = n
		}
		if n := firstNumber(doc, "longitude"); n != nil {
			lon = n
		}
	}
	return lat, lon
}

func plannedOf(doc map[string]any) []any {
	for _, key := range []string{"plannedLandUses", "planned_land_uses"} {
		if list, ok := doc[key].([]any); ok && len(list) > 0 {
			return list
		}
	}
	return []any{}
}

func firstNumber(doc map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		value, ok := doc[key]
		if !ok || value == nil {
			continue
		}
		if n, ok := model.Number(value); ok {
			return &n
		}
		return nil
	}
	return nil
}

func firstText(doc map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := text(doc[key]); s != "" {
			return s
		}
	}
	return ""
}

func text(value any) string {
	if value == nil {
		return ""
	}
	return model.Text(value)
}
