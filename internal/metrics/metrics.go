package metrics

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Metric names a canonical metric.
type Metric string

const (
	Impressions Metric = "impressions"
	Clicks      Metric = "clicks"
	Conversions Metric = "conversions"
	Spend       Metric = "spend"
)

// KeyMetrics are the summed canonical metrics.
type KeyMetrics struct {
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
}

// Add returns the element-wise sum of m and o.
func (m KeyMetrics) Add(o KeyMetrics) KeyMetrics {
	return KeyMetrics{
		Impressions: m.Impressions + o.Impressions,
		Clicks:      m.Clicks + o.Clicks,
		Conversions: m.Conversions + o.Conversions,
		Spend:       m.Spend + o.Spend,
	}
}

// DerivedMetrics are ratios computed from KeyMetrics. Percentages are 0-100.
type DerivedMetrics struct {
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversionRate"`
	CPC            float64 `json:"cpc"`
	CPM            float64 `json:"cpm"`
}

// MapHeaders assigns headers to canonical metrics by case-insensitive
// substring. Each header maps to at most one metric and the first header
// matching a metric wins; later candidates for the same metric are ignored.
func MapHeaders(headers []string) map[Metric]string {
	mapping := make(map[Metric]string, 4)
	for _, h := range headers {
		lower := strings.ToLower(h)
		var m Metric
		switch {
		case strings.Contains(lower, "impression"):
			m = Impressions
		case strings.Contains(lower, "click") && !strings.Contains(lower, "rate"):
			m = Clicks
		case strings.Contains(lower, "conversion") && !strings.Contains(lower, "rate"):
			m = Conversions
		case strings.Contains(lower, "spend") || strings.Contains(lower, "cost"):
			m = Spend
		default:
			continue
		}
		if _, taken := mapping[m]; !taken {
			mapping[m] = h
		}
	}
	return mapping
}

// ExtractKeyMetrics sums the mapped columns over rows. Absent metrics and
// non-numeric cells count as 0.
func ExtractKeyMetrics(rows []Row, headers []string) KeyMetrics {
	mapping := MapHeaders(headers)
	var km KeyMetrics
	for _, row := range rows {
		km = km.Add(rowMetrics(row, mapping))
	}
	return km
}

func rowMetrics(row Row, mapping map[Metric]string) KeyMetrics {
	var km KeyMetrics
	if h, ok := mapping[Impressions]; ok {
		km.Impressions = ParseNumber(row[h])
	}
	if h, ok := mapping[Clicks]; ok {
		km.Clicks = ParseNumber(row[h])
	}
	if h, ok := mapping[Conversions]; ok {
		km.Conversions = ParseNumber(row[h])
	}
	if h, ok := mapping[Spend]; ok {
		km.Spend = ParseNumber(row[h])
	}
	return km
}

var numberCleaner = strings.NewReplacer("$", "", ",", "", "%", "", " ", "", "\t", "")

// ParseNumber parses a formatted cell such as "$1,234.50" or "12%".
// Anything unparseable, NaN or infinite yields 0.
func ParseNumber(cell string) float64 {
	cleaned := numberCleaner.Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Derive computes CTR, conversion rate, CPC and CPM, substituting 0 for any
// ratio whose denominator is 0.
func Derive(m KeyMetrics) DerivedMetrics {
	return DerivedMetrics{
		CTR:            ratio(m.Clicks, m.Impressions) * 100,
		ConversionRate: ratio(m.Conversions, m.Clicks) * 100,
		CPC:            ratio(m.Spend, m.Clicks),
		CPM:            ratio(m.Spend, m.Impressions) * 1000,
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// GeoPerformance is the per-location slice of a tactic's metrics.
type GeoPerformance struct {
	Location    string  `json:"location"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
}

// MaxGeoResults caps ExtractGeo output.
const MaxGeoResults = 10

var geoVocabulary = []string{"dma", "city", "state", "zip", "region", "metro", "location"}

// GeoHeader returns the first header naming a geography.
func GeoHeader(headers []string) (string, bool) {
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, word := range geoVocabulary {
			if strings.Contains(lower, word) {
				return h, true
			}
		}
	}
	return "", false
}

// ExtractGeo groups rows by the geo column and returns the top locations by
// impressions. Without a geo column the result is empty.
func ExtractGeo(rows []Row, headers []string) []GeoPerformance {
	acc := newGeoAccumulator()
	acc.add(rows, headers)
	return acc.top(MaxGeoResults)
}

type geoAccumulator struct {
	order  []string
	totals map[string]*GeoPerformance
}

func newGeoAccumulator() *geoAccumulator {
	return &geoAccumulator{totals: map[string]*GeoPerformance{}}
}

func (g *geoAccumulator) add(rows []Row, headers []string) {
	geo, ok := GeoHeader(headers)
	if !ok {
		return
	}
	mapping := MapHeaders(headers)
	for _, row := range rows {
		loc := strings.TrimSpace(row[geo])
		if loc == "" {
			continue
		}
		entry, ok := g.totals[loc]
		if !ok {
			entry = &GeoPerformance{Location: loc}
			g.totals[loc] = entry
			g.order = append(g.order, loc)
		}
		km := rowMetrics(row, mapping)
		entry.Impressions += km.Impressions
		entry.Clicks += km.Clicks
		entry.Conversions += km.Conversions
	}
}

func (g *geoAccumulator) top(n int) []GeoPerformance {
	out := make([]GeoPerformance, 0, len(g.order))
	for _, loc := range g.order {
		out = append(out, *g.totals[loc])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Impressions > out[j].Impressions })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TacticData is everything the prompt needs about one tactic.
type TacticData struct {
	TacticID   string           `json:"tacticId"`
	TacticName string           `json:"tacticName"`
	FileCount  int              `json:"fileCount"`
	RowCount   int              `json:"rowCount"`
	Metrics    KeyMetrics       `json:"metrics"`
	Derived    DerivedMetrics   `json:"derived"`
	Geo        []GeoPerformance `json:"geo"`
	Filenames  []string         `json:"filenames"`
}

// Aggregate sums metrics across every file of one tactic and merges their
// geo breakdowns.
func Aggregate(tacticID, tacticName string, files []*Table) TacticData {
	data := TacticData{TacticID: tacticID, TacticName: tacticName, Filenames: []string{}}
	geo := newGeoAccumulator()
	for _, f := range files {
		if f == nil {
			continue
		}
		data.FileCount++
		data.RowCount += len(f.Rows)
		data.Metrics = data.Metrics.Add(ExtractKeyMetrics(f.Rows, f.Headers))
		geo.add(f.Rows, f.Headers)
		if f.Filename != "" {
			data.Filenames = append(data.Filenames, f.Filename)
		}
	}
	data.Derived = Derive(data.Metrics)
	data.Geo = geo.top(MaxGeoResults)
	return data
}
