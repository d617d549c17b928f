package aggregate

import (
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdCTR is the click-through and conversion performance of one ad.
type AdCTR struct {
	AdID           uuid.UUID       `json:"ad_id"`
	UnitID         uuid.UUID       `json:"unit_id"`
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	Clicks         int64           `json:"clicks"`
	Impressions    int64           `json:"impressions"`
	Conversions    int64           `json:"conversions"`
	Budget         decimal.Decimal `json:"budget"`
	CTR            float64         `json:"ctr"`
	ConversionRate float64         `json:"conversion_rate"`
}

// AdSummary aggregates a tenant's ads.
type AdSummary struct {
	TotalAds         int             `json:"total_ads"`
	ActiveAds        int             `json:"active_ads"`
	TotalClicks      int64           `json:"total_clicks"`
	TotalImpressions int64           `json:"total_impressions"`
	TotalConversions int64           `json:"total_conversions"`
	TotalSpend       decimal.Decimal `json:"total_spend"`
	OverallCTR       float64         `json:"overall_ctr"`
	CTRByAd          []AdCTR         `json:"ctr_by_ad"`
}

// AdPerformance sums ad counters and budgets. CTR is clicks over
// impressions and is 0 for an ad with no impressions.
func AdPerformance(ads []records.Ad) AdSummary {
	out := AdSummary{TotalAds: len(ads), TotalSpend: decimal.Zero, CTRByAd: make([]AdCTR, 0, len(ads))}
	for _, a := range ads {
		if a.Status == records.AdActive {
			out.ActiveAds++
		}
		out.TotalClicks += a.Clicks
		out.TotalImpressions += a.Impressions
		out.TotalConversions += a.Conversions
		out.TotalSpend = out.TotalSpend.Add(a.Budget)
		out.CTRByAd = append(out.CTRByAd, AdCTR{
			AdID:           a.ID,
			UnitID:         a.UnitID,
			Title:          a.Title,
			Status:         a.Status,
			Clicks:         a.Clicks,
			Impressions:    a.Impressions,
			Conversions:    a.Conversions,
			Budget:         a.Budget,
			CTR:            Rate(float64(a.Clicks), float64(a.Impressions)),
			ConversionRate: Rate(float64(a.Conversions), float64(a.Clicks)),
		})
	}
	out.OverallCTR = Rate(float64(out.TotalClicks), float64(out.TotalImpressions))
	return out
}

// ConversionFunnel is inquiries over views, clamped to [0, 100].
func ConversionFunnel(views, inquiries int64) float64 {
	return Rate(float64(inquiries), float64(views))
}
