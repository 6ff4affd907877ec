package airport

import (
	"sort"
	"strings"
	"time"
)

// GET is Georgia Standard Time (UTC+4). Booking dates and reference numbers
// are stamped in it.
var GET = time.FixedZone("GET", 4*60*60)

type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

var airports = map[string]Airport{
	"TBS": {Code: "TBS", Name: "Tbilisi International", City: "Tbilisi"},
	"BUS": {Code: "BUS", Name: "Batumi International", City: "Batumi"},
	"KUT": {Code: "KUT", Name: "Kutaisi International", City: "Kutaisi"},
}

type Directory struct {
	byCode map[string]Airport
}

func NewDirectory(extra ...Airport) *Directory {
	d := &Directory{byCode: make(map[string]Airport, len(airports)+len(extra))}
	for code, a := range airports {
		d.byCode[code] = a
	}
	for _, a := range extra {
		a.Code = strings.ToUpper(strings.TrimSpace(a.Code))
		d.byCode[a.Code] = a
	}
	return d
}

// CityOf maps an airport code or name to the city it serves. Anything it
// does not recognize is taken to already be a city name.
func (d *Directory) CityOf(airport string) string {
	key := strings.TrimSpace(airport)
	if a, ok := d.byCode[strings.ToUpper(key)]; ok {
		return a.City
	}
	for _, a := range d.byCode {
		if strings.EqualFold(a.Name, key) {
			return a.City
		}
	}
	return key
}

func (d *Directory) Lookup(code string) (Airport, bool) {
	a, ok := d.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return a, ok
}

func (d *Directory) List() []Airport {
	out := make([]Airport, 0, len(d.byCode))
	for _, a := range d.byCode {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

// LocalDate returns t as a calendar day in Georgian time.
func LocalDate(t time.Time) time.Time {
	local := t.In(GET)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
