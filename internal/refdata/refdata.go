// Package refdata holds the closed administrative reference tables: the
// sixteen regions of Ghana and the registration districts the service knows
// about. The tables are fixed at build time and immutable; everything else
// in the service treats them as the single source of truth for which
// (region, district) pairs may appear in a UBRN.
package refdata

import "strings"

// Region is one of the sixteen administrative regions.
type Region struct {
	Code string // two uppercase letters, e.g. "GA"
	Name string
}

// District is a registration district within a region.
type District struct {
	RegionCode string
	Code       string // two digits, unique within the region
	Name       string
	Capital    string
}

var regions = []Region{
	{Code: "GA", Name: "Greater Accra"},
	{Code: "AS", Name: "Ashanti"},
	{Code: "WR", Name: "Western"},
	{Code: "CR", Name: "Central"},
	{Code: "ER", Name: "Eastern"},
	{Code: "VR", Name: "Volta"},
	{Code: "NR", Name: "Northern"},
	{Code: "UE", Name: "Upper East"},
	{Code: "UW", Name: "Upper West"},
	{Code: "BO", Name: "Bono"},
	{Code: "BE", Name: "Bono East"},
	{Code: "AH", Name: "Ahafo"},
	{Code: "WN", Name: "Western North"},
	{Code: "OT", Name: "Oti"},
	{Code: "NE", Name: "North East"},
	{Code: "SV", Name: "Savannah"},
}

var districts = []District{
	{RegionCode: "GA", Code: "01", Name: "Accra Metropolitan", Capital: "Accra"},
	{RegionCode: "GA", Code: "02", Name: "Tema Metropolitan", Capital: "Tema"},
	{RegionCode: "GA", Code: "03", Name: "Ga West Municipal", Capital: "Amasaman"},
	{RegionCode: "AS", Code: "01", Name: "Kumasi Metropolitan", Capital: "Kumasi"},
	{RegionCode: "AS", Code: "02", Name: "Obuasi Municipal", Capital: "Obuasi"},
	{RegionCode: "WR", Code: "01", Name: "Sekondi-Takoradi Metropolitan", Capital: "Sekondi-Takoradi"},
	{RegionCode: "WR", Code: "02", Name: "Tarkwa-Nsuaem Municipal", Capital: "Tarkwa"},
	{RegionCode: "CR", Code: "01", Name: "Cape Coast Metropolitan", Capital: "Cape Coast"},
	{RegionCode: "CR", Code: "02", Name: "Mfantsiman Municipal", Capital: "Saltpond"},
	{RegionCode: "ER", Code: "01", Name: "New Juaben South Municipal", Capital: "Koforidua"},
	{RegionCode: "VR", Code: "01", Name: "Ho Municipal", Capital: "Ho"},
	{RegionCode: "VR", Code: "02", Name: "Keta Municipal", Capital: "Keta"},
	{RegionCode: "NR", Code: "01", Name: "Tamale Metropolitan", Capital: "Tamale"},
	{RegionCode: "UE", Code: "01", Name: "Bolgatanga Municipal", Capital: "Bolgatanga"},
	{RegionCode: "UW", Code: "01", Name: "Wa Municipal", Capital: "Wa"},
	{RegionCode: "BO", Code: "01", Name: "Sunyani Municipal", Capital: "Sunyani"},
	{RegionCode: "BE", Code: "01", Name: "Techiman Municipal", Capital: "Techiman"},
	{RegionCode: "AH", Code: "01", Name: "Asunafo North Municipal", Capital: "Goaso"},
	{RegionCode: "WN", Code: "01", Name: "Sefwi Wiawso Municipal", Capital: "Sefwi Wiawso"},
	{RegionCode: "OT", Code: "01", Name: "Krachi East Municipal", Capital: "Dambai"},
	{RegionCode: "NE", Code: "01", Name: "East Mamprusi Municipal", Capital: "Nalerigu"},
	{RegionCode: "SV", Code: "01", Name: "West Gonja Municipal", Capital: "Damongo"},
}

// Regions returns the region table in menu order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// RegionByCode looks up a region by its two-letter code.
func RegionByCode(code string) (Region, bool) {
	for _, r := range regions {
		if strings.EqualFold(r.Code, code) {
			return r, true
		}
	}
	return Region{}, false
}

// DistrictByCode looks up a district by region code and district code.
func DistrictByCode(regionCode, code string) (District, bool) {
	for _, d := range districts {
		if strings.EqualFold(d.RegionCode, regionCode) && d.Code == code {
			return d, true
		}
	}
	return District{}, false
}

// ResolvePlace maps a caller-entered place of birth to a registration
// district. Matches the district name or its capital town, case-insensitive.
func ResolvePlace(place string) (District, bool) {
	place = strings.TrimSpace(place)
	if place == "" {
		return District{}, false
	}
	for _, d := range districts {
		if strings.EqualFold(d.Name, place) || strings.EqualFold(d.Capital, place) {
			return d, true
		}
	}
	return District{}, false
}
