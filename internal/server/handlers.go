package server

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/KaramelBytes/housedash/internal/catalog"
	"github.com/KaramelBytes/housedash/internal/chartspec"
	"github.com/KaramelBytes/housedash/internal/dataset"
	"github.com/KaramelBytes/housedash/internal/logger"
	"github.com/KaramelBytes/housedash/internal/query"
	"github.com/KaramelBytes/housedash/internal/render"
	"github.com/KaramelBytes/housedash/internal/session"
)

const (
	tabCategorical = "categorical"
	tabNumerical   = "numerical"
)

type chartView struct {
	ID      chartspec.ID
	Heading string
	Title   string
	Src     string
	Error   string
}

type pageData struct {
	Title string
	Tab   string
	Sel   query.Selection

	CategoricalOptions []string
	ComparisonOptions  []string
	XOptions           []string
	YOptions           []string

	Charts []chartView
}

// selection returns the request's effective selection: query parameters over
// the session state over the defaults. It creates a session when the request
// has none and saves the valid parts of any override.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (query.Selection, string) {
	base, id := s.defaults, ""
	if c, err := r.Cookie(session.CookieName); err == nil {
		if sel, ok := s.sessions.Get(c.Value); ok {
			base, id = sel, c.Value
		}
	}
	if id == "" {
		id = s.sessions.Create(base).ID
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.metrics.Sessions.Set(float64(s.sessions.Len()))

	sel := fromQuery(r.URL.Query()).Merge(base)
	if keep := s.validParts(sel, base); keep != base {
		s.sessions.Put(id, keep)
	}
	return sel, id
}

// peekSelection is selection without session writes, for the chart endpoints.
func (s *Server) peekSelection(r *http.Request) query.Selection {
	base := s.defaults
	if c, err := r.Cookie(session.CookieName); err == nil {
		if sel, ok := s.sessions.Get(c.Value); ok {
			base = sel
		}
	}
	return fromQuery(r.URL.Query()).Merge(base)
}

func fromQuery(q url.Values) query.Selection {
	return query.Selection{
		Categorical: strings.TrimSpace(q.Get("categorical")),
		Comparison:  strings.TrimSpace(q.Get("comparison")),
		X:           strings.TrimSpace(q.Get("x")),
		Y:           strings.TrimSpace(q.Get("y")),
	}
}

func toQuery(sel query.Selection) url.Values {
	return url.Values{
		"categorical": {sel.Categorical},
		"comparison":  {sel.Comparison},
		"x":           {sel.X},
		"y":           {sel.Y},
	}
}

// validParts keeps each field of sel the catalog accepts and falls back to
// base for the rest.
func (s *Server) validParts(sel, base query.Selection) query.Selection {
	keep := base
	if s.cat.RequireCategorical(sel.Categorical) == nil {
		keep.Categorical = sel.Categorical
	}
	if s.cat.RequireComparison(sel.Comparison) == nil {
		keep.Comparison = sel.Comparison
	}
	if s.cat.RequireXAxis(sel.X) == nil {
		keep.X = sel.X
	}
	if s.cat.RequireNumerical(sel.Y) == nil {
		keep.Y = sel.Y
	}
	return keep
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, sid := s.selection(w, r)
	ctx := logger.WithSessionID(r.Context(), sid)

	tab := r.URL.Query().Get("tab")
	if tab != tabNumerical {
		tab = tabCategorical
	}
	data := pageData{
		Title:              "Unified Housing Data Dashboard",
		Tab:                tab,
		Sel:                sel,
		CategoricalOptions: s.cat.CategoricalColumns(),
		ComparisonOptions:  s.cat.AllFeaturesPlusTarget(),
		XOptions:           s.cat.NumericalForComparison(),
		YOptions:           s.cat.NumericalFeaturesPlusTarget(),
	}
	views := []chartView{{ID: chartspec.Comparison}, {ID: chartspec.Count, Heading: "Distribution of Categorical Variable"}}
	if tab == tabNumerical {
		views = []chartView{{ID: chartspec.Scatter}, {ID: chartspec.Histogram, Heading: query.HistogramTitle(s.cat.Target())}}
	}
	params := toQuery(sel).Encode()
	// The page only validates; aggregation happens once, in the image request.
	for i := range views {
		v := &views[i]
		v.Src = "/charts/" + string(v.ID) + ".svg?" + params
		p, err := query.Peek(s.cat, v.ID, sel)
		switch {
		case err != nil:
			v.Error = err.Error()
			s.metrics.QueryErrors.WithLabelValues(string(v.ID), reason(err)).Inc()
		case p.Empty:
			v.Error = "No data to display for this selection."
			v.Title = p.Title
		default:
			v.Title = p.Title
		}
	}
	data.Charts = views

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		logger.WithContext(ctx).Error("render dashboard", zap.Error(err))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleChartImage serves /charts/{id}.{svg|png}.
func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ext := path.Ext(name)
	id := chartspec.ID(strings.TrimSuffix(name, ext))
	format, err := render.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil || ext == "" {
		http.Error(w, "unsupported image format: use .svg or .png", http.StatusBadRequest)
		return
	}

	start := time.Now()
	spec, err := query.Build(s.cat, id, s.peekSelection(r), s.cfg.HistogramBins)
	if err != nil {
		s.queryError(w, r, id, err, false)
		return
	}
	var buf bytes.Buffer
	opt := render.Options{Format: format, Width: s.cfg.ChartWidth, Height: s.cfg.ChartHeight}
	if err := render.Render(&buf, spec, opt); err != nil {
		s.queryError(w, r, id, err, false)
		return
	}
	s.metrics.ObserveRender(string(id), string(format), time.Since(start))
	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

type catalogResponse struct {
	Dataset                     string                  `json:"dataset"`
	Rows                        int                     `json:"rows"`
	Target                      string                  `json:"target"`
	Categorical                 []string                `json:"categorical"`
	AllFeaturesPlusTarget       []string                `json:"all_features_plus_target"`
	NumericalForComparison      []string                `json:"numerical_for_comparison"`
	NumericalFeaturesPlusTarget []string                `json:"numerical_features_plus_target"`
	Dropped                     []dataset.DroppedColumn `json:"dropped"`
	Defaults                    query.Selection         `json:"defaults"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ds := s.cat.Dataset()
	writeJSON(w, http.StatusOK, catalogResponse{
		Dataset:                     ds.Name(),
		Rows:                        ds.Rows(),
		Target:                      s.cat.Target(),
		Categorical:                 s.cat.CategoricalColumns(),
		AllFeaturesPlusTarget:       s.cat.AllFeaturesPlusTarget(),
		NumericalForComparison:      s.cat.NumericalForComparison(),
		NumericalFeaturesPlusTarget: s.cat.NumericalFeaturesPlusTarget(),
		Dropped:                     ds.Dropped(),
		Defaults:                    s.defaults,
	})
}

func (s *Server) handleChartSpec(w http.ResponseWriter, r *http.Request) {
	id := chartspec.ID(chi.URLParam(r, "id"))
	spec, err := query.Build(s.cat, id, s.peekSelection(r), s.cfg.HistogramBins)
	if err != nil {
		s.queryError(w, r, id, err, true)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": s.cat.Dataset().Rows()})
}

// queryError maps query and render failures onto HTTP statuses.
func (s *Server) queryError(w http.ResponseWriter, r *http.Request, id chartspec.ID, err error, asJSON bool) {
	status := http.StatusInternalServerError
	var nf *catalog.ColumnNotFoundError
	switch {
	case errors.As(err, &nf), errors.Is(err, query.ErrUnknownChart):
		status = http.StatusNotFound
	case errors.Is(err, render.ErrEmptyChart):
		status = http.StatusUnprocessableEntity
	default:
		logger.WithContext(r.Context()).Error("chart failed", zap.String("chart", string(id)), zap.Error(err))
	}
	s.metrics.QueryErrors.WithLabelValues(chartLabel(id), reason(err)).Inc()
	if asJSON {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, err.Error(), status)
}

// chartLabel keeps arbitrary URL segments out of metric labels.
func chartLabel(id chartspec.ID) string {
	if id.Valid() {
		return string(id)
	}
	return "unknown"
}

func reason(err error) string {
	var nf *catalog.ColumnNotFoundError
	switch {
	case errors.As(err, &nf):
		return "column_not_found"
	case errors.Is(err, query.ErrUnknownChart):
		return "unknown_chart"
	case errors.Is(err, render.ErrEmptyChart):
		return "empty"
	}
	return "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
