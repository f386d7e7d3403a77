package model

import "strings"

// Element is one of the five combat affinities.
// ElementNone means the attack carries no element at all.
type Element string

const (
	ElementNone Element = ""
	ElementPyro Element = "Pyro"
	ElementAqua Element = "Aqua"
	ElementGeo  Element = "Geo"
	ElementAero Element = "Aero"
	ElementVolt Element = "Volt"
)

// Elements lists all five affinities in canonical order.
var Elements = []Element{ElementPyro, ElementAqua, ElementGeo, ElementAero, ElementVolt}

// ParseElement resolves a case-insensitive element name.
// Returns ElementNone, false for unknown input.
func ParseElement(s string) (Element, bool) {
	for _, e := range Elements {
		if strings.EqualFold(string(e), s) {
			return e, true
		}
	}
	return ElementNone, false
}
