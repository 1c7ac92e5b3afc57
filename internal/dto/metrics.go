package dto

import (
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// Amounts are integer minor units. Ratios and percentages are decimal
// strings.

type MetricsSnapshot struct {
	ID            string               `json:"id"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Window        TimeWindow           `json:"window"`
	Revenue       MetricWithComparison `json:"revenue"`
	GrossRevenue  MetricWithComparison `json:"gross_revenue"`
	Cost          MetricWithComparison `json:"cost"`
	Profit        MetricWithComparison `json:"profit"`
	UnitsSold     MetricWithComparison `json:"units_sold"`
	OrdersCount   MetricWithComparison `json:"orders_count"`
	AvgOrderValue MetricWithComparison `json:"avg_order_value"`
	NewCustomers  MetricWithComparison `json:"new_customers"`
	Current       WindowMetrics        `json:"current"`
	Previous      WindowMetrics        `json:"previous"`
	Live          RevenueSummary       `json:"live"`
	Customers     CustomerSummary      `json:"customers"`
	Inventory     InventorySummary     `json:"inventory"`
	FetchFailures FetchFailures        `json:"fetch_failures"`
}

type TimeWindow struct {
	Period    string    `json:"period"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	PrevStart time.Time `json:"prev_start"`
	PrevEnd   time.Time `json:"prev_end"`
	Label     string    `json:"label"`
	PrevLabel string    `json:"prev_label"`
}

type MetricWithComparison struct {
	Value        decimal.Decimal `json:"value"`
	CompareValue decimal.Decimal `json:"compare_value"`
	ChangePct    decimal.Decimal `json:"change_pct"`
}

type WindowMetrics struct {
	From               time.Time         `json:"from"`
	To                 time.Time         `json:"to"`
	Revenue            int64             `json:"revenue"`
	RecognizedOrders   int               `json:"recognized_orders"`
	AvgOrderValue      decimal.Decimal   `json:"avg_order_value"`
	Sales              RevenueSummary    `json:"sales"`
	RevenueByCategory  []CategoryRevenue `json:"revenue_by_category"`
	TopProducts        []ProductRevenue  `json:"top_products"`
	TopCategories      []CategoryRanking `json:"top_categories"`
	OrdersByStatus     []StatusCount     `json:"orders_by_status"`
	RevenueSeries      []TimeSeriesPoint `json:"revenue_series"`
	NewCustomers       int               `json:"new_customers"`
	ReturningCustomers int               `json:"returning_customers"`
}

type RevenueSummary struct {
	GrossRevenue int64           `json:"gross_revenue"`
	TotalCost    int64           `json:"total_cost"`
	Profit       int64           `json:"profit"`
	UnitsSold    int             `json:"units_sold"`
	Orders       int             `json:"orders"`
	AvgSellPrice decimal.Decimal `json:"avg_sell_price"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
}

type CategoryRevenue struct {
	Category string `json:"category"`
	Revenue  int64  `json:"revenue"`
}

type CategoryRanking struct {
	Category  string `json:"category"`
	Revenue   int64  `json:"revenue"`
	UnitsSold int    `json:"units_sold"`
}

type ProductRevenue struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Revenue     int64  `json:"revenue"`
	UnitsSold   int    `json:"units_sold"`
	StockStatus string `json:"stock_status,omitempty"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value int64     `json:"value"`
	Count int       `json:"count"`
}

type TierCount struct {
	Tier      string `json:"tier"`
	Customers int    `json:"customers"`
}

type CustomerSummary struct {
	Total int         `json:"total"`
	Tiers []TierCount `json:"tiers"`
}

type StockBucketCount struct {
	Status   string `json:"status"`
	Variants int    `json:"variants"`
}

type ProductStock struct {
	ProductID   int                `json:"product_id"`
	ProductName string             `json:"product_name"`
	TotalStock  int                `json:"total_stock"`
	Variants    int                `json:"variants"`
	Status      string             `json:"status"`
	Buckets     []StockBucketCount `json:"buckets"`
}

type InventorySummary struct {
	TotalVariants int                `json:"total_variants"`
	TotalStock    int                `json:"total_stock"`
	Buckets       []StockBucketCount `json:"buckets"`
	Products      []ProductStock     `json:"products"`
}

type FetchFailures struct {
	Orders   []int `json:"orders"`
	Products []int `json:"products"`
}

func ConvertEntitySnapshotToDto(s *entity.MetricsSnapshot) *MetricsSnapshot {
	if s == nil {
		return nil
	}
	return &MetricsSnapshot{
		ID:          s.ID,
		GeneratedAt: s.GeneratedAt,
		Window: TimeWindow{
			Period:    string(s.Window.Period),
			Start:     s.Window.Start,
			End:       s.Window.End,
			PrevStart: s.Window.PrevStart,
			PrevEnd:   s.Window.PrevEnd,
			Label:     s.Window.Label,
			PrevLabel: s.Window.PrevLabel,
		},
		Revenue:       metricWithComparisonToDto(s.Revenue),
		GrossRevenue:  metricWithComparisonToDto(s.GrossRevenue),
		Cost:          metricWithComparisonToDto(s.Cost),
		Profit:        metricWithComparisonToDto(s.Profit),
		UnitsSold:     metricWithComparisonToDto(s.UnitsSold),
		OrdersCount:   metricWithComparisonToDto(s.OrdersCount),
		AvgOrderValue: metricWithComparisonToDto(s.AvgOrderValue),
		NewCustomers:  metricWithComparisonToDto(s.NewCustomers),
		Current:       windowMetricsToDto(s.Current),
		Previous:      windowMetricsToDto(s.Previous),
		Live:          revenueSummaryToDto(s.Live),
		Customers:     customerSummaryToDto(s.Customers),
		Inventory:     ConvertEntityInventoryToDto(s.Inventory),
		FetchFailures: FetchFailures{
			Orders:   nonNilInts(s.FetchFailures.Orders),
			Products: nonNilInts(s.FetchFailures.Products),
		},
	}
}

func ConvertEntityInventoryToDto(inv entity.InventorySummary) InventorySummary {
	products := make([]ProductStock, 0, len(inv.Products))
	for _, p := range inv.Products {
		products = append(products, ProductStock{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			TotalStock:  p.TotalStock,
			Variants:    p.Variants,
			Status:      string(p.Status),
			Buckets:     stockBucketsToDto(p.Buckets),
		})
	}
	return InventorySummary{
		TotalVariants: inv.TotalVariants,
		TotalStock:    inv.TotalStock,
		Buckets:       stockBucketsToDto(inv.Buckets),
		Products:      products,
	}
}

func metricWithComparisonToDto(m entity.MetricWithComparison) MetricWithComparison {
	return MetricWithComparison{
		Value:        m.Value,
		CompareValue: m.CompareValue,
		ChangePct:    m.ChangePct,
	}
}

func windowMetricsToDto(m entity.WindowMetrics) WindowMetrics {
	out := WindowMetrics{
		From:               m.Range.From,
		To:                 m.Range.To,
		Revenue:            m.Revenue,
		RecognizedOrders:   m.RecognizedOrders,
		AvgOrderValue:      m.AvgOrderValue,
		Sales:              revenueSummaryToDto(m.Sales),
		RevenueByCategory:  make([]CategoryRevenue, 0, len(m.RevenueByCategory)),
		TopProducts:        make([]ProductRevenue, 0, len(m.TopProducts)),
		TopCategories:      make([]CategoryRanking, 0, len(m.TopCategories)),
		OrdersByStatus:     make([]StatusCount, 0, len(m.OrdersByStatus)),
		RevenueSeries:      make([]TimeSeriesPoint, 0, len(m.RevenueSeries)),
		NewCustomers:       m.NewCustomers,
		ReturningCustomers: m.ReturningCustomers,
	}
	for _, c := range m.RevenueByCategory {
		out.RevenueByCategory = append(out.RevenueByCategory, CategoryRevenue{Category: c.Category, Revenue: c.Revenue})
	}
	for _, p := range m.TopProducts {
		out.TopProducts = append(out.TopProducts, ProductRevenue{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Revenue:     p.Revenue,
			UnitsSold:   p.UnitsSold,
			StockStatus: string(p.StockStatus),
		})
	}
	for _, c := range m.TopCategories {
		out.TopCategories = append(out.TopCategories, CategoryRanking{Category: c.Category, Revenue: c.Revenue, UnitsSold: c.UnitsSold})
	}
	for _, s := range m.OrdersByStatus {
		out.OrdersByStatus = append(out.OrdersByStatus, StatusCount{Status: string(s.Status), Count: s.Count})
	}
	for _, p := range m.RevenueSeries {
		out.RevenueSeries = append(out.RevenueSeries, TimeSeriesPoint{Date: p.Date, Value: p.Value, Count: p.Count})
	}
	return out
}

func revenueSummaryToDto(s entity.RevenueSummary) RevenueSummary {
	return RevenueSummary{
		GrossRevenue: s.GrossRevenue,
		TotalCost:    s.TotalCost,
		Profit:       s.Profit,
		UnitsSold:    s.UnitsSold,
		Orders:       s.Orders,
		AvgSellPrice: s.AvgSellPrice,
		AvgCost:      s.AvgCost,
	}
}

func customerSummaryToDto(s entity.CustomerSummary) CustomerSummary {
	tiers := make([]TierCount, 0, len(s.Tiers))
	for _, t := range s.Tiers {
		tiers = append(tiers, TierCount{Tier: string(t.Tier), Customers: t.Customers})
	}
	return CustomerSummary{Total: s.Total, Tiers: tiers}
}

func stockBucketsToDto(b []entity.StockBucketCount) []StockBucketCount {
	out := make([]StockBucketCount, 0, len(b))
	for _, s := range b {
		out = append(out, StockBucketCount{Status: string(s.Status), Variants: s.Variants})
	}
	return out
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
