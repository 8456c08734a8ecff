package services

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/apache/arrow/go/v14/arrow/memory"
	"golang.org/x/sync/errgroup"

	"sales-insight/internal/models"
	"sales-insight/internal/table"
)

const (
	batchSize  = 10000
	maxWorkers = 10
	topN       = 10

	highValueQuantile   = 0.8
	mediumValueQuantile = 0.5
)

// Aggregator computes the sales rollup for a dataset that has already passed
// validation. Counting and summing run per partition; partial sums are merged
// by addition before any quantile is taken.
type Aggregator struct {
	mem           memory.Allocator
	partitionSize int
	workers       int
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		mem:           memory.NewGoAllocator(),
		partitionSize: batchSize,
		workers:       maxWorkers,
	}
}

// partial holds the additive aggregates for one contiguous run of rows.
type partial struct {
	revenue  float64
	quantity float64

	productRevenue  *groupSums
	productQuantity *groupSums
	customerRevenue *groupSums
	dailyRevenue    *groupSums
	monthlyRevenue  *groupSums
	datedRows       int
}

func newPartial() *partial {
	return &partial{
		productRevenue:  newGroupSums(),
		productQuantity: newGroupSums(),
		customerRevenue: newGroupSums(),
		dailyRevenue:    newGroupSums(),
		monthlyRevenue:  newGroupSums(),
	}
}

func (p *partial) merge(other *partial) {
	p.revenue += other.revenue
	p.quantity += other.quantity
	p.productRevenue.merge(other.productRevenue)
	p.productQuantity.merge(other.productQuantity)
	p.customerRevenue.merge(other.customerRevenue)
	p.dailyRevenue.merge(other.dailyRevenue)
	p.monthlyRevenue.merge(other.monthlyRevenue)
	p.datedRows += other.datedRows
}

// Aggregate builds the analytics report. The dataset must carry the product,
// quantity, price and customer columns; the date column is optional.
func (a *Aggregator) Aggregate(ds *models.Dataset) (*models.AnalyticsReport, error) {
	tbl, err := table.FromDataset(a.mem, ds)
	if err != nil {
		return nil, fmt.Errorf("build typed table: %w", err)
	}
	defer tbl.Release()

	n := tbl.Len()
	bounds := partitions(n, a.partitionSize)
	partials := make([]*partial, len(bounds))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, b := range bounds {
		g.Go(func() error {
			partials[i] = scan(tbl, b[0], b[1])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in row order so first-encountered group order is preserved.
	total := newPartial()
	for _, p := range partials {
		total.merge(p)
	}

	report := &models.AnalyticsReport{
		TotalRevenue:          total.revenue,
		TotalQuantity:         total.quantity,
		TotalOrders:           n,
		TopProductsByRevenue:  topTotals(total.productRevenue.totals(), topN),
		TopProductsByQuantity: topTotals(total.productQuantity.totals(), topN),
		CustomerSegments:      segmentCustomers(total.customerRevenue.totals()),
	}
	if n > 0 {
		report.AverageOrderValue = total.revenue / float64(n)
	}

	if tbl.Date != nil && total.datedRows > 0 {
		report.TimeAnalysis = models.TimeAnalysis{
			DailyRevenue:   sortedByKey(total.dailyRevenue.totals()),
			MonthlyRevenue: sortedByKey(total.monthlyRevenue.totals()),
		}
	}

	return report, nil
}

func scan(tbl *table.Table, start, end int) *partial {
	p := newPartial()
	for i := start; i < end; i++ {
		rev := math.NaN()
		if r, ok := tbl.Revenue(i); ok {
			rev = r
			p.revenue += r
		}

		qty := math.NaN()
		if tbl.Quantity.Valid(i) {
			qty = tbl.Quantity.Value(i)
			p.quantity += qty
		}

		if tbl.Product.Valid(i) {
			product := tbl.Product.Value(i)
			p.productRevenue.add(product, rev)
			p.productQuantity.add(product, qty)
		}
		if tbl.Customer.Valid(i) {
			p.customerRevenue.add(tbl.Customer.Value(i), rev)
		}

		if tbl.Date != nil && tbl.Date.Valid(i) {
			p.datedRows++
			day := tbl.Date.Time(i)
			p.dailyRevenue.add(day.Format(dateLayout), rev)
			p.monthlyRevenue.add(day.Format("2006-01"), rev)
		}
	}
	return p
}

// partitions splits [0, n) into contiguous [start, end) ranges of at most size rows.
func partitions(n, size int) [][2]int {
	if size <= 0 {
		size = n
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	if len(out) == 0 {
		out = append(out, [2]int{0, 0})
	}
	return out
}

// groupSums accumulates per-key sums in first-encountered key order.
// NaN values register the key without contributing to its sum.
type groupSums struct {
	index map[string]int
	keys  []string
	sums  []float64
}

func newGroupSums() *groupSums {
	return &groupSums{index: make(map[string]int)}
}

func (g *groupSums) slot(key string) int {
	i, ok := g.index[key]
	if !ok {
		i = len(g.keys)
		g.index[key] = i
		g.keys = append(g.keys, key)
		g.sums = append(g.sums, 0)
	}
	return i
}

func (g *groupSums) add(key string, v float64) {
	i := g.slot(key)
	if !math.IsNaN(v) {
		g.sums[i] += v
	}
}

func (g *groupSums) merge(other *groupSums) {
	for j, key := range other.keys {
		g.sums[g.slot(key)] += other.sums[j]
	}
}

func (g *groupSums) totals() models.Totals {
	out := make(models.Totals, len(g.keys))
	for i, key := range g.keys {
		out[i] = models.Total{Key: key, Value: g.sums[i]}
	}
	return out
}

// sortDescending orders by value, largest first; ties keep their current order.
func sortDescending(t models.Totals) models.Totals {
	out := slices.Clone(t)
	slices.SortStableFunc(out, func(a, b models.Total) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}

func topTotals(t models.Totals, n int) models.Totals {
	out := sortDescending(t)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortedByKey(t models.Totals) models.Totals {
	out := slices.Clone(t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// segmentCustomers splits customers into high (>= p80), medium ([p50, p80))
// and low (< p50) value tiers. Each tier is ordered by revenue, largest first.
func segmentCustomers(customers models.Totals) models.CustomerSegments {
	segments := models.CustomerSegments{
		HighValue:   models.Totals{},
		MediumValue: models.Totals{},
		LowValue:    models.Totals{},
	}
	if len(customers) == 0 {
		return segments
	}

	ranked := sortDescending(customers)

	values := make([]float64, len(ranked))
	for i, c := range ranked {
		values[i] = c.Value
	}
	slices.Sort(values)
	high := quantile(values, highValueQuantile)
	medium := quantile(values, mediumValueQuantile)

	for _, c := range ranked {
		switch {
		case c.Value >= high:
			segments.HighValue = append(segments.HighValue, c)
		case c.Value >= medium:
			segments.MediumValue = append(segments.MediumValue, c)
		default:
			segments.LowValue = append(segments.LowValue, c)
		}
	}
	return segments
}

// quantile returns the q-th quantile of ascending values using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
