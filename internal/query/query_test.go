package query

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/housedash/internal/catalog"
	"github.com/KaramelBytes/housedash/internal/chartspec"
	"github.com/KaramelBytes/housedash/internal/dataset"
)

// housingCSV has 100 rows: Neighborhood A/B/C with 10/20/70 rows in that
// order of appearance, GrLivArea missing on every tenth row and GarageType
// missing on every third.
func housingCSV() string {
	var b strings.Builder
	b.WriteString("Id,Neighborhood,GarageType,GrLivArea,SalePrice,MSSubClass\n")
	garage := []string{"Attchd", "Detchd", "NA"}
	for i := 0; i < 100; i++ {
		hood := "C"
		switch {
		case i < 10:
			hood = "A"
		case i < 30:
			hood = "B"
		}
		area := fmt.Sprintf("%d", 800+i*10)
		if i%10 == 9 {
			area = "NA"
		}
		fmt.Fprintf(&b, "%d,%s,%s,%s,%d,%d\n", i+1, hood, garage[i%3], area, 100000+i*1000, []int{20, 60}[i%2])
	}
	return b.String()
}

func newCatalog(t *testing.T, csv string) *catalog.Catalog {
	t.Helper()
	ds, err := dataset.Read("train.csv", strings.NewReader(csv), dataset.DefaultOptions())
	require.NoError(t, err)
	c, err := catalog.New(ds, catalog.DefaultNominal, catalog.DefaultTarget)
	require.NoError(t, err)
	return c
}

func TestCountBy_FrequencyOrder(t *testing.T) {
	c := newCatalog(t, housingCSV())
	spec, err := CountBy(c, "Neighborhood")
	require.NoError(t, err)

	assert.Equal(t, chartspec.KindBar, spec.Kind)
	assert.Equal(t, "Count of Properties by Neighborhood", spec.Title)
	assert.Equal(t, []string{"C", "B", "A"}, spec.Categories)
	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{70, 20, 10}, spec.Series[0].Values)
	assert.Equal(t, 100.0, spec.TotalCount())
}

func TestCountBy_MissingValuesGroupAsNA(t *testing.T) {
	c := newCatalog(t, housingCSV())
	spec, err := CountBy(c, "GarageType")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Attchd", "Detchd", MissingLabel}, spec.Categories)
	assert.Equal(t, 100.0, spec.TotalCount())
}

func TestCompare_CategoricalPairCounts(t *testing.T) {
	c := newCatalog(t, housingCSV())
	spec, err := Compare(c, "Neighborhood", "MSSubClass")
	require.NoError(t, err)

	assert.Equal(t, chartspec.KindStackedBar, spec.Kind)
	assert.Equal(t, "Count of Neighborhood by MSSubClass", spec.Title)
	assert.Equal(t, []string{"A", "B", "C"}, spec.Categories)
	require.Len(t, spec.Series, 2)
	assert.Equal(t, "20", spec.Series[0].Name)
	assert.Equal(t, []float64{5, 10, 35}, spec.Series[0].Values)
	assert.Equal(t, "60", spec.Series[1].Name)
	assert.Equal(t, []float64{5, 10, 35}, spec.Series[1].Values)
	assert.Equal(t, 100.0, spec.TotalCount())
}

func TestCompare_NumericalBoxes(t *testing.T) {
	c := newCatalog(t, housingCSV())
	spec, err := Compare(c, "Neighborhood", "GrLivArea")
	require.NoError(t, err)

	assert.Equal(t, chartspec.KindBox, spec.Kind)
	assert.Equal(t, "GrLivArea Distribution by Neighborhood", spec.Title)
	assert.Equal(t, "Neighborhood", spec.XLabel)
	assert.Equal(t, "GrLivArea", spec.YLabel)
	require.Len(t, spec.Boxes, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{spec.Boxes[0].Label, spec.Boxes[1].Label, spec.Boxes[2].Label})
	assert.Equal(t, []int{9, 18, 63}, []int{spec.Boxes[0].N, spec.Boxes[1].N, spec.Boxes[2].N})
	assert.Equal(t, 100-10, spec.BoxSizes())

	spec, err = Compare(c, "Neighborhood", "SalePrice")
	require.NoError(t, err)
	assert.Equal(t, 100, spec.BoxSizes())
}

func TestCompare_SingleCategoryIsValid(t *testing.T) {
	c := newCatalog(t, "Neighborhood,SalePrice\nNAmes,1\nNAmes,2\nNAmes,3\n")
	spec, err := Compare(c, "Neighborhood", "SalePrice")
	require.NoError(t, err)
	require.Len(t, spec.Boxes, 1)
	assert.Equal(t, 3, spec.Boxes[0].N)
	assert.Equal(t, 2.0, spec.Boxes[0].Median)
}

func TestScatter_SkipsMissing(t *testing.T) {
	c := newCatalog(t, housingCSV())
	spec, err := Scatter(c, "GrLivArea", "SalePrice")
	require.NoError(t, err)

	assert.Equal(t, chartspec.KindScatter, spec.Kind)
	assert.Equal(t, "SalePrice vs GrLivArea", spec.Title)
	assert.Len(t, spec.Points, 90)
	assert.Equal(t, chartspec.Point{X: 800, Y: 100000}, spec.Points[0])
}

func TestHistogram_FixedTarget(t *testing.T) {
	c := newCatalog(t, housingCSV())
	spec, err := Histogram(c, 50)
	require.NoError(t, err)

	assert.Equal(t, chartspec.KindHistogram, spec.Kind)
	assert.Equal(t, "Distribution of Sale Price", spec.Title)
	assert.Equal(t, "Sale Price", spec.XLabel)
	assert.Equal(t, "Count", spec.YLabel)
	require.Len(t, spec.Bins, 50)
	assert.Equal(t, 100000.0, spec.Bins[0].Lo)
	assert.Equal(t, 199000.0, spec.Bins[49].Hi)
	assert.Equal(t, 100, spec.BinTotal())
	for i := 1; i < len(spec.Bins); i++ {
		assert.InDelta(t, spec.Bins[i-1].Hi, spec.Bins[i].Lo, 1e-6)
		assert.InDelta(t, 1980.0, spec.Bins[i].Hi-spec.Bins[i].Lo, 1e-6)
	}
	require.NotNil(t, spec.Marginal)
	assert.Equal(t, 100, spec.Marginal.N)

	spec, err = Histogram(c, 0)
	require.NoError(t, err)
	assert.Len(t, spec.Bins, DefaultBins)
}

func TestHistogram_ConstantTarget(t *testing.T) {
	c := newCatalog(t, "Street,SalePrice\nPave,5\nGrvl,5\nPave,NA\n")
	spec, err := Histogram(c, 4)
	require.NoError(t, err)
	require.Len(t, spec.Bins, 4)
	assert.Equal(t, 4.5, spec.Bins[0].Lo)
	assert.Equal(t, 5.5, spec.Bins[3].Hi)
	assert.Equal(t, 2, spec.BinTotal())
}

func TestQueries_SkipInfiniteValues(t *testing.T) {
	c := newCatalog(t, "Neighborhood,LotArea,SalePrice\nA,1,5\nB,2,inf\nA,3,7\nB,-Inf,9\n")

	spec, err := Histogram(c, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, spec.BinTotal())
	assert.Equal(t, 5.0, spec.Bins[0].Lo)
	assert.Equal(t, 9.0, spec.Bins[9].Hi)
	assert.Equal(t, 3, spec.Marginal.N)

	spec, err = Scatter(c, "LotArea", "SalePrice")
	require.NoError(t, err)
	assert.Equal(t, []chartspec.Point{{X: 1, Y: 5}, {X: 3, Y: 7}}, spec.Points)

	spec, err = Compare(c, "Neighborhood", "SalePrice")
	require.NoError(t, err)
	require.Len(t, spec.Boxes, 2)
	assert.Equal(t, 2, spec.Boxes[0].N)
	assert.Equal(t, 1, spec.Boxes[1].N)
	assert.Equal(t, 9.0, spec.Boxes[1].Values[len(spec.Boxes[1].Values)-1])
}

func TestQueries_RejectUnknownColumns(t *testing.T) {
	c := newCatalog(t, housingCSV())
	calls := map[string]func() error{
		"compare cat":    func() error { _, err := Compare(c, "PoolQC", "SalePrice"); return err },
		"compare num":    func() error { _, err := Compare(c, "GrLivArea", "SalePrice"); return err },
		"compare target": func() error { _, err := Compare(c, "Neighborhood", "Alley"); return err },
		"count":          func() error { _, err := CountBy(c, "SalePrice"); return err },
		"scatter x":      func() error { _, err := Scatter(c, "Neighborhood", "SalePrice"); return err },
		"scatter y":      func() error { _, err := Scatter(c, "GrLivArea", ""); return err },
		"scatter x=y":    func() error { _, err := Scatter(c, "SalePrice", "GrLivArea"); return err },
	}
	for name, call := range calls {
		var nf *catalog.ColumnNotFoundError
		assert.True(t, errors.As(call(), &nf), name)
	}
}

func TestBuild_Dispatch(t *testing.T) {
	c := newCatalog(t, housingCSV())
	sel := Resolve(c, DefaultSelection())
	for _, id := range chartspec.IDs {
		spec, err := Build(c, id, sel, 10)
		require.NoError(t, err, id)
		assert.Equal(t, id, spec.ID)
	}
	_, err := Build(c, chartspec.ID("pie"), sel, 10)
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestPeek_AgreesWithBuild(t *testing.T) {
	// LotArea and GrLivArea never share a row; keep every column so the
	// scatter of the two comes out empty.
	sparse := "Id,Neighborhood,GarageType,LotArea,GrLivArea,SalePrice\n" +
		"1,A,NA,1,NA,NA\n" +
		"2,B,NA,NA,2,NA\n" +
		"3,A,Attchd,3,NA,NA\n" +
		"4,B,Detchd,NA,4,10\n"
	ds, err := dataset.Read("sparse.csv", strings.NewReader(sparse), dataset.Options{MissingThreshold: 1.01})
	require.NoError(t, err)
	require.Len(t, ds.Names(), 6)
	sparseCat, err := catalog.New(ds, nil, catalog.DefaultTarget)
	require.NoError(t, err)

	catalogs := map[string]*catalog.Catalog{
		"housing": newCatalog(t, housingCSV()),
		"sparse":  sparseCat,
	}
	selections := []Selection{
		{Categorical: "Neighborhood", Comparison: "SalePrice", X: "GrLivArea", Y: "SalePrice"},
		{Categorical: "Neighborhood", Comparison: "GarageType", X: "Id", Y: "GrLivArea"},
		{Categorical: "GarageType", Comparison: "GrLivArea", X: "Id", Y: "SalePrice"},
	}
	for name, c := range catalogs {
		for _, sel := range selections {
			for _, id := range chartspec.IDs {
				spec, err := Build(c, id, sel, 10)
				require.NoError(t, err, "%s %s %+v", name, id, sel)
				p, err := Peek(c, id, sel)
				require.NoError(t, err)
				assert.Equal(t, Preview{Title: spec.Title, Empty: spec.Empty()}, p, "%s %s %+v", name, id, sel)
			}
		}
	}

	sel := Selection{X: "LotArea", Y: "GrLivArea"}
	spec, err := Build(sparseCat, chartspec.Scatter, sel, 10)
	require.NoError(t, err)
	require.True(t, spec.Empty())
	p, err := Peek(sparseCat, chartspec.Scatter, sel)
	require.NoError(t, err)
	assert.True(t, p.Empty)
}

func TestPeek_Errors(t *testing.T) {
	c := newCatalog(t, housingCSV())
	sel := Resolve(c, DefaultSelection())

	_, err := Peek(c, chartspec.ID("pie"), sel)
	assert.ErrorIs(t, err, ErrUnknownChart)

	bad := sel
	bad.X = "SalePrice"
	_, err = Peek(c, chartspec.Scatter, bad)
	var nf *catalog.ColumnNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, catalog.ListXAxis, nf.List)

	bad = sel
	bad.Categorical = "GrLivArea"
	for _, id := range []chartspec.ID{chartspec.Comparison, chartspec.Count} {
		_, err = Peek(c, id, bad)
		assert.True(t, errors.As(err, &nf), id)
	}
}

func TestHistogramTitle(t *testing.T) {
	assert.Equal(t, "Distribution of Sale Price", HistogramTitle("SalePrice"))
	assert.Equal(t, "Distribution of Lot Area", HistogramTitle("LotArea"))
}

func TestResolve_FallsBackToOfferedColumns(t *testing.T) {
	c := newCatalog(t, housingCSV())
	sel := Resolve(c, DefaultSelection())
	assert.Equal(t, Selection{Categorical: "Neighborhood", Comparison: "SalePrice", X: "GrLivArea", Y: "SalePrice"}, sel)

	c = newCatalog(t, "Street,LotArea,SalePrice\nPave,1,2\nGrvl,3,4\n")
	sel = Resolve(c, DefaultSelection())
	assert.Equal(t, Selection{Categorical: "Street", Comparison: "SalePrice", X: "LotArea", Y: "SalePrice"}, sel)
}

func TestSelectionMerge(t *testing.T) {
	got := Selection{X: "LotArea"}.Merge(DefaultSelection())
	assert.Equal(t, "LotArea", got.X)
	assert.Equal(t, "Neighborhood", got.Categorical)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Sale Price", humanize("SalePrice"))
	assert.Equal(t, "Gr Liv Area", humanize("GrLivArea"))
	assert.Equal(t, "MSSub Class", humanize("MSSubClass"))
}
