package entity

import (
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// Period selects the analysis window.
type Period string

const (
	PeriodDay    Period = "day"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

// PresetPeriods are the periods that need no explicit bounds.
var PresetPeriods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// SnapshotRequest is what a presentation layer asks for.
type SnapshotRequest struct {
	Period Period    `valid:"-"`
	From   time.Time `valid:"-"`
	To     time.Time `valid:"-"`
	// TopN caps the ranked lists, zero means the configured default.
	TopN int `valid:"range(0|100)"`
}

func (r *SnapshotRequest) Validate() error {
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return fmt.Errorf("invalid snapshot request: %w", err)
	}
	return nil
}

// TimeWindow is the current analysis range and its comparison range.
// All bounds are inclusive.
type TimeWindow struct {
	Period    Period
	Start     time.Time
	End       time.Time
	PrevStart time.Time
	PrevEnd   time.Time
	Label     string
	PrevLabel string
}

// Contains reports whether t falls in the current range.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ContainsPrev reports whether t falls in the previous range.
func (w TimeWindow) ContainsPrev(t time.Time) bool {
	return !t.Before(w.PrevStart) && !t.After(w.PrevEnd)
}

// Current returns the current range as a TimeRange.
func (w TimeWindow) Current() TimeRange {
	return TimeRange{From: w.Start, To: w.End}
}

// Previous returns the comparison range as a TimeRange.
func (w TimeWindow) Previous() TimeRange {
	return TimeRange{From: w.PrevStart, To: w.PrevEnd}
}

type TimeRange struct {
	From time.Time
	To   time.Time
}

// SourceData is everything fetched from collaborators for one snapshot.
type SourceData struct {
	Orders []RawOrder
	// Details holds line items keyed by order id. Only orders that matter
	// for the requested window are present.
	Details map[int]OrderDetail
	// FailedOrders holds ids of orders whose detail fetch failed.
	FailedOrders []int
	Products     []ProductDetail
	// FailedProducts holds ids of products whose detail fetch failed.
	FailedProducts []int
}

// MetricsSnapshot is the engine's only output. It is built fresh per query
// and never mutated afterwards.
type MetricsSnapshot struct {
	ID          string
	GeneratedAt time.Time
	Window      TimeWindow

	// Headline figures with period-over-period comparison.
	Revenue       MetricWithComparison
	GrossRevenue  MetricWithComparison
	Cost          MetricWithComparison
	Profit        MetricWithComparison
	UnitsSold     MetricWithComparison
	OrdersCount   MetricWithComparison
	AvgOrderValue MetricWithComparison
	NewCustomers  MetricWithComparison

	Current  WindowMetrics
	Previous WindowMetrics

	// Live covers revenue-recognized orders created in the trailing live window.
	Live RevenueSummary

	Customers CustomerSummary
	Inventory InventorySummary

	FetchFailures FetchFailures
}

// MetricWithComparison carries a value, its previous-window value and the
// percentage change between them.
type MetricWithComparison struct {
	Value        decimal.Decimal
	CompareValue decimal.Decimal
	ChangePct    decimal.Decimal
}

// WindowMetrics holds every aggregate computed for one range.
type WindowMetrics struct {
	Range TimeRange
	// Revenue is the sum of authoritative totals of revenue-recognized orders.
	Revenue            int64
	RecognizedOrders   int
	AvgOrderValue      decimal.Decimal
	Sales              RevenueSummary
	RevenueByCategory  []CategoryRevenue
	TopProducts        []ProductRevenue
	TopCategories      []CategoryRanking
	OrdersByStatus     []StatusCount
	RevenueSeries      []TimeSeriesPoint
	NewCustomers       int
	ReturningCustomers int
}

// RevenueSummary is the line-level revenue and profit aggregate.
type RevenueSummary struct {
	GrossRevenue int64
	TotalCost    int64
	Profit       int64
	UnitsSold    int
	Orders       int
	AvgSellPrice decimal.Decimal
	AvgCost      decimal.Decimal
}

type CategoryRevenue struct {
	Category string
	Revenue  int64
}

type CategoryRanking struct {
	Category  string
	Revenue   int64
	UnitsSold int
}

type ProductRevenue struct {
	ProductID   int
	ProductName string
	Revenue     int64
	UnitsSold   int
	StockStatus StockStatus
}

type StatusCount struct {
	Status OrderStatus
	Count  int
}

type TimeSeriesPoint struct {
	Date  time.Time
	Value int64
	Count int
}

// MetricsGranularity controls the bucket size of revenue series.
type MetricsGranularity int

const (
	MetricsGranularityHour  MetricsGranularity = 1
	MetricsGranularityDay   MetricsGranularity = 2
	MetricsGranularityMonth MetricsGranularity = 3
)

// Tier is a loyalty classification.
type Tier string

const (
	TierBronze  Tier = "Bronze"
	TierSilver  Tier = "Silver"
	TierGold    Tier = "Gold"
	TierDiamond Tier = "Diamond"
)

// Customer is derived from orders sharing a user reference.
type Customer struct {
	ID           string
	Spend        int64
	FirstOrderAt time.Time
	Orders       int
	Tier         Tier
}

type TierCount struct {
	Tier      Tier
	Customers int
}

type CustomerSummary struct {
	Total int
	Tiers []TierCount
}

type StockBucketCount struct {
	Status   StockStatus
	Variants int
}

// ProductStock is the per-product inventory rollup.
type ProductStock struct {
	ProductID   int
	ProductName string
	TotalStock  int
	Variants    int
	Status      StockStatus
	Buckets     []StockBucketCount
}

type InventorySummary struct {
	TotalVariants int
	TotalStock    int
	Buckets       []StockBucketCount
	Products      []ProductStock
}

type FetchFailures struct {
	Orders   []int
	Products []int
}
