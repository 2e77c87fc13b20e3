package cache

import (
	"fmt"
	"time"
)

const (
	InventorySummaryKey = "inventory:summary"
	DashboardKey        = "analytics:dashboard"
	FunnelKey           = "analytics:funnel"
	RevenueByChannelKey = "analytics:revenue-by-channel"

	SalesMetricsPattern = "sales:metrics:*"
	AnalyticsPattern    = "analytics:*"
	PredictionsPattern  = "predictions:*"
)

func SalesMetricsKey(start, end time.Time) string {
	return fmt.Sprintf("sales:metrics:%s:%s",
		start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
}

func PredictionsKey(days int) string {
	return fmt.Sprintf("predictions:%d", days)
}
