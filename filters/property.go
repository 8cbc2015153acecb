package filters

import (
	"net/url"
	"strconv"
	"strings"
)

// Property columns usable in predicates.
const (
	ColumnID                  = "id"
	ColumnCity                = "city"
	ColumnCountry             = "country"
	ColumnPrice               = "price"
	ColumnNumberGuestsAllowed = "number_guests_allowed"
	ColumnNumberBedrooms      = "number_bedrooms"
	ColumnNumberBeds          = "number_beds"
	ColumnNumberBathrooms     = "number_bathrooms"
	ColumnTypology            = "typology"
	ColumnStatus              = "status"
	ColumnOwnerID             = "owner_id"
)

const PriceMessage = "Price must be a number or a min-max range"

// capacity parameters and the column each one filters with "at least"
var capacityParams = []struct {
	param  string
	column string
}{
	{"number_guests_allowed", ColumnNumberGuestsAllowed},
	{"number_bedrooms", ColumnNumberBedrooms},
	{"number_beds", ColumnNumberBeds},
	{"number_bathrooms", ColumnNumberBathrooms},
}

// PropertySpec builds the spec of GET /properties.
//
// The sort parameter is accepted and echoed back in links, but results are
// always ordered by id; only direction is honoured.
func PropertySpec(q url.Values) (*Spec, error) {
	page, err := ParsePage(q)
	if err != nil {
		return nil, err
	}

	spec := &Spec{Page: page, Sort: Sort{Column: ColumnID, Direction: Asc}}

	if raw := strings.TrimSpace(q.Get("destination")); raw != "" {
		spec.setParam("destination", raw)
		city, country, _ := strings.Cut(raw, ",")
		if city = strings.TrimSpace(city); city != "" {
			spec.Add(Equality{Field: ColumnCity, Value: city})
		}
		if country = strings.TrimSpace(country); country != "" {
			spec.Add(Equality{Field: ColumnCountry, Value: country})
		}
	}

	if raw := strings.TrimSpace(q.Get("price")); raw != "" {
		r, err := parsePriceRange(raw)
		if err != nil {
			return nil, err
		}
		spec.setParam("price", raw)
		if r != nil {
			spec.Add(*r)
		}
	}

	for _, cp := range capacityParams {
		raw := strings.TrimSpace(q.Get(cp.param))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &QueryError{Param: cp.param, Message: cp.param + " must be a positive integer"}
		}
		atLeast := float64(n)
		spec.setParam(cp.param, raw)
		spec.Add(Range{Field: cp.column, Min: &atLeast})
	}

	if raw := strings.TrimSpace(q.Get("typology")); raw != "" {
		var values []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			spec.setParam("typology", raw)
			spec.Add(SetMembership{Field: ColumnTypology, Values: values})
		}
	}

	if sort := strings.TrimSpace(q.Get("sort")); sort != "" {
		spec.setParam("sort", sort)
		if strings.EqualFold(strings.TrimSpace(q.Get("direction")), string(Desc)) {
			spec.Sort.Direction = Desc
		}
		spec.setParam("direction", string(spec.Sort.Direction))
	}

	return spec, nil
}

// parsePriceRange reads "min", "min-max", "min-" or "-max".
func parsePriceRange(raw string) (*Range, error) {
	minRaw, maxRaw, _ := strings.Cut(raw, "-")
	r := Range{Field: ColumnPrice}

	if minRaw = strings.TrimSpace(minRaw); minRaw != "" {
		v, err := strconv.ParseFloat(minRaw, 64)
		if err != nil || v < 0 {
			return nil, &QueryError{Param: "price", Message: PriceMessage}
		}
		r.Min = &v
	}
	if maxRaw = strings.TrimSpace(maxRaw); maxRaw != "" {
		v, err := strconv.ParseFloat(maxRaw, 64)
		if err != nil || v < 0 {
			return nil, &QueryError{Param: "price", Message: PriceMessage}
		}
		r.Max = &v
	}

	if r.Min == nil && r.Max == nil {
		return nil, nil
	}
	return &r, nil
}
