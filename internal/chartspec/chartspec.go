// Package chartspec describes charts independently of any rendering library.
// A Spec is what the query layer produces and what renderers and JSON clients
// consume.
package chartspec

// ID names one of the dashboard charts.
type ID string

const (
	Comparison ID = "comparison"
	Count      ID = "count"
	Scatter    ID = "scatter"
	Histogram  ID = "histogram"
)

// IDs lists every chart in dashboard order.
var IDs = []ID{Comparison, Count, Scatter, Histogram}

// Valid reports whether id names a known chart.
func (id ID) Valid() bool {
	for _, k := range IDs {
		if k == id {
			return true
		}
	}
	return false
}

// Kind is the visual form of a chart.
type Kind string

const (
	KindBar        Kind = "bar"
	KindStackedBar Kind = "stacked_bar"
	KindBox        Kind = "box"
	KindScatter    Kind = "scatter"
	KindHistogram  Kind = "histogram"
)

// Known reports whether k is one of the chart kinds above.
func (k Kind) Known() bool {
	switch k {
	case KindBar, KindStackedBar, KindBox, KindScatter, KindHistogram:
		return true
	}
	return false
}

// Spec is a renderable chart description.
type Spec struct {
	ID     ID     `json:"id"`
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`

	// Bar and stacked bar charts: one entry per x category. A plain bar chart
	// has a single series.
	Categories []string `json:"categories,omitempty"`
	Series     []Series `json:"series,omitempty"`

	Boxes  []Box   `json:"boxes,omitempty"`
	Points []Point `json:"points,omitempty"`

	Bins     []Bin `json:"bins,omitempty"`
	Marginal *Box  `json:"marginal,omitempty"`
}

// Series is a named run of values aligned with Spec.Categories.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Point is one scatter observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bin is a half-open interval [Lo, Hi); the last bin of a histogram is closed.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// TotalCount sums every bar segment of a bar or stacked bar chart.
func (s *Spec) TotalCount() float64 {
	var total float64
	for _, se := range s.Series {
		for _, v := range se.Values {
			total += v
		}
	}
	return total
}

// BinTotal sums histogram bin counts.
func (s *Spec) BinTotal() int {
	var n int
	for _, b := range s.Bins {
		n += b.Count
	}
	return n
}

// BoxSizes sums the number of observations across boxes.
func (s *Spec) BoxSizes() int {
	var n int
	for _, b := range s.Boxes {
		n += b.N
	}
	return n
}

// Empty reports whether the chart has nothing to draw.
func (s *Spec) Empty() bool {
	switch s.Kind {
	case KindBar, KindStackedBar:
		return len(s.Categories) == 0 || s.TotalCount() == 0
	case KindBox:
		return s.BoxSizes() == 0
	case KindScatter:
		return len(s.Points) == 0
	case KindHistogram:
		return len(s.Bins) == 0 || s.BinTotal() == 0
	}
	return true
}
