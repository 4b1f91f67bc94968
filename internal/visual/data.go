package visual

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/futig/deck-backend/internal/entity"
	"github.com/futig/deck-backend/internal/pkg/textutil"
)

const (
	maxBarCategories = 6
	maxPieSegments   = 5
	minCategories    = 3
	maxTableRows     = 5
	maxLabelLength   = 20
)

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ChartData is the input of a bar or pie chart
type ChartData struct {
	Title  string
	Labels []string
	Values []float64
}

// TableData is a header row plus body rows of equal width
type TableData struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// BarData derives up to six categories from the slide bullets.
// A number found in a bullet is used as its value; otherwise the value is derived from the bullet text.
func BarData(rec entity.SlideRecord) ChartData {
	data := ChartData{Title: rec.Title}

	for _, b := range firstN(rec.Bullets, maxBarCategories) {
		label := leadingWords(b, 2)
		if label == "" {
			label = fmt.Sprintf("Category %d", len(data.Labels)+1)
		}
		value, ok := numberIn(b)
		if !ok || value <= 0 {
			value = float64(spread(b, 20, 100))
		}
		data.Labels = append(data.Labels, label)
		data.Values = append(data.Values, value)
	}

	for len(data.Labels) < minCategories {
		n := len(data.Labels) + 1
		data.Labels = append(data.Labels, fmt.Sprintf("Item %d", n))
		data.Values = append(data.Values, float64(spread(rec.Title+strconv.Itoa(n), 30, 90)))
	}

	return data
}

// PieData derives up to five segments and normalizes them to 100
func PieData(rec entity.SlideRecord) ChartData {
	data := ChartData{Title: rec.Title}

	for _, b := range firstN(rec.Bullets, maxPieSegments) {
		label := leadingWords(b, 2)
		if label == "" {
			label = fmt.Sprintf("Segment %d", len(data.Labels)+1)
		}
		data.Labels = append(data.Labels, label)
		data.Values = append(data.Values, float64(spread(b, 10, 40)))
	}

	for len(data.Labels) < minCategories {
		n := len(data.Labels) + 1
		data.Labels = append(data.Labels, fmt.Sprintf("Part %d", n))
		data.Values = append(data.Values, float64(spread(rec.Title+strconv.Itoa(n), 15, 35)))
	}

	var total float64
	for _, v := range data.Values {
		total += v
	}
	for i, v := range data.Values {
		data.Values[i] = math.Round(v/total*1000) / 10
	}

	return data
}

var performanceLabels = []string{"Excellent", "Good", "Growing", "Strong", "Improving"}

// TableFor builds a Category/Value/Performance table from three or more bullets,
// or a contextual default table keyed on the slide title
func TableFor(rec entity.SlideRecord) TableData {
	if len(rec.Bullets) >= minCategories {
		data := TableData{
			Title:   rec.Title,
			Headers: []string{"Category", "Value", "Performance"},
		}
		for i, b := range firstN(rec.Bullets, maxTableRows) {
			category := fmt.Sprintf("Item %d", i+1)
			if words := strings.Fields(stripMarker(b)); len(words) >= 3 {
				category = textutil.Clip(strings.Join(words[:3], " "), maxLabelLength)
			}
			data.Rows = append(data.Rows, []string{
				category,
				valueFor(b),
				performanceLabels[spread(b, 0, len(performanceLabels)-1)],
			})
		}
		return data
	}

	title := strings.ToLower(rec.Title)
	switch {
	case containsAny(title, "financial", "revenue", "sales", "profit"):
		return TableData{
			Title:   rec.Title,
			Headers: []string{"Metric", "Q3 2024", "Q4 2024", "Status"},
			Rows: [][]string{
				{"Revenue", "$2.4M", "$2.8M", "Growing"},
				{"Profit", "$480K", "$560K", "Strong"},
				{"Growth", "12.5%", "16.7%", "Good"},
				{"Margin", "20%", "22%", "Improving"},
			},
		}
	case containsAny(title, "user", "customer", "engagement"):
		return TableData{
			Title:   rec.Title,
			Headers: []string{"Metric", "Current", "Target", "Progress"},
			Rows: [][]string{
				{"Active Users", "15.2K", "20.0K", "76%"},
				{"New Signups", "1.2K/mo", "1.5K/mo", "80%"},
				{"Retention", "85%", "90%", "94%"},
				{"Satisfaction", "4.2/5", "4.5/5", "93%"},
			},
		}
	case containsAny(title, "performance", "kpi", "metrics"):
		return TableData{
			Title:   rec.Title,
			Headers: []string{"KPI", "Current", "Benchmark", "Gap"},
			Rows: [][]string{
				{"Efficiency", "92%", "95%", "-3%"},
				{"Quality", "4.1/5", "4.5/5", "-0.4"},
				{"Speed", "2.3s", "2.0s", "+0.3s"},
				{"Cost", "$45K", "$40K", "+$5K"},
			},
		}
	default:
		return TableData{
			Title:   rec.Title,
			Headers: []string{"Category", "Sales", "Growth", "Rating"},
			Rows: [][]string{
				{"Product A", "$125K", "+15%", "4.2"},
				{"Product B", "$98K", "+8%", "3.9"},
				{"Product C", "$156K", "+22%", "4.5"},
				{"Product D", "$87K", "+5%", "3.7"},
			},
		}
	}
}

// valueFor keeps a number from the bullet when present, otherwise picks a business-style figure
func valueFor(bullet string) string {
	if m := numberRe.FindString(bullet); m != "" {
		if strings.Contains(bullet, m+"%") {
			return m + "%"
		}
		return m
	}

	switch spread(bullet, 0, 3) {
	case 0:
		return fmt.Sprintf("$%dK", spread(bullet+"$", 50, 500))
	case 1:
		return fmt.Sprintf("%d%%", spread(bullet+"%", 5, 95))
	case 2:
		return strconv.Itoa(spread(bullet+"#", 100, 9999))
	default:
		return fmt.Sprintf("%.1fM", float64(spread(bullet+"M", 10, 100))/10)
	}
}

// spread maps s onto [lo, hi] deterministically
func spread(s string, lo, hi int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return lo + int(h.Sum32()%uint32(hi-lo+1))
}

func numberIn(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func leadingWords(s string, n int) string {
	words := strings.Fields(stripMarker(s))
	if len(words) > n {
		words = words[:n]
	}
	return textutil.Clip(strings.Join(words, " "), maxLabelLength)
}

func stripMarker(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "•"))
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
