package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductSales struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type SalesMetrics struct {
	TotalSales        int             `json:"totalSales"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	SalesGrowth       float64         `json:"salesGrowth"`
	TopProducts       []ProductSales  `json:"topProducts"`
}

type DailySales struct {
	Date    string          `json:"date"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type InventorySummary struct {
	TotalProducts   int             `json:"totalProducts"`
	LowStockCount   int             `json:"lowStockCount"`
	OutOfStockCount int             `json:"outOfStockCount"`
	TotalValue      decimal.Decimal `json:"totalValue"`
}

type RealTimeStats struct {
	TodaySales      int             `json:"todaySales"`
	TodayRevenue    decimal.Decimal `json:"todayRevenue"`
	CurrentVisitors int             `json:"currentVisitors"`
	ConversionRate  float64         `json:"conversionRate"`
}

type DashboardMetrics struct {
	Sales         SalesMetrics     `json:"sales"`
	Inventory     InventorySummary `json:"inventory"`
	RealTimeStats RealTimeStats    `json:"realTimeStats"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

type ConversionFunnel struct {
	Visitors       int     `json:"visitors"`
	ProductViews   int     `json:"productViews"`
	AddToCart      int     `json:"addToCart"`
	Checkout       int     `json:"checkout"`
	Purchases      int     `json:"purchases"`
	ConversionRate float64 `json:"conversionRate"`
}

type ChannelRevenue struct {
	Channel    string          `json:"channel"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage float64         `json:"percentage"`
}

type ForecastPoint struct {
	Date             string          `json:"date"`
	PredictedSales   int             `json:"predictedSales"`
	PredictedRevenue decimal.Decimal `json:"predictedRevenue"`
	Confidence       float64         `json:"confidence"`
}

type Forecast struct {
	Days                  int             `json:"days"`
	TotalPredictedSales   int             `json:"totalPredictedSales"`
	TotalPredictedRevenue decimal.Decimal `json:"totalPredictedRevenue"`
	AverageConfidence     float64         `json:"averageConfidence"`
	Points                []ForecastPoint `json:"predictions"`
	GeneratedAt           time.Time       `json:"generatedAt"`
}
