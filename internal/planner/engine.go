package planner

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/apollostores/poplanner/internal/domain/models"
)

// Defaults applied when an optional policy field is missing from the most
// recent record of an item.
const (
	defaultMinStockDays = 7
	defaultMaxStockDays = 30
	defaultLeadDays     = 7
	defaultTransitDays  = 0
)

const daysPerMonth = 30

// Engine computes per-item two-month PO recommendations. It is stateless;
// item groups share nothing and are planned concurrently.
type Engine struct {
	now func() time.Time
}

// NewEngine builds an engine using the supplied clock. A nil clock falls back
// to time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Plan groups records by item code and produces exactly one POPlan per item,
// sorted by item code for stable display. It never fails: missing optional
// fields take their documented defaults.
func (e *Engine) Plan(records []models.HistoryRecord) []models.POPlan {
	groups := make(map[string][]models.HistoryRecord)
	for _, r := range records {
		groups[r.ItemCode] = append(groups[r.ItemCode], r)
	}

	today := e.now().Truncate(24 * time.Hour)

	plans := make([]models.POPlan, 0, len(groups))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, group := range groups {
		wg.Add(1)
		go func(group []models.HistoryRecord) {
			defer wg.Done()
			plan := planItem(group, today)
			mu.Lock()
			plans = append(plans, plan)
			mu.Unlock()
		}(group)
	}
	wg.Wait()

	sort.Slice(plans, func(i, j int) bool { return plans[i].ItemCode < plans[j].ItemCode })
	return plans
}

// planItem runs the full per-item algorithm on one item's history, ordered by
// period ascending. The most recent record's policy fields are authoritative;
// older records only feed the sales average.
func planItem(group []models.HistoryRecord, today time.Time) models.POPlan {
	sort.SliceStable(group, func(i, j int) bool { return group[i].Period.Before(group[j].Period) })
	latest := group[len(group)-1]

	avgMonthly := averageSales(group)
	dailyDemand := avgMonthly / daysPerMonth

	minDays := resolveOr(latest.MinStockDays, defaultMinStockDays)
	minStockQty := dailyDemand * minDays

	lead := resolveOr(latest.LeadDays, defaultLeadDays)
	transit := resolveOr(latest.TransitDays, defaultTransitDays)
	tat := resolveOr(latest.TATDays, lead)
	supplyTime := lead + transit

	stock := lastKnownStock(group)

	// Sequential depletion: month 2 sees stock drawn down by forecast demand
	// only, not topped up by the month-1 order.
	reqM1 := math.Max(avgMonthly+minStockQty-stock, 0)
	remaining := math.Max(stock-avgMonthly, 0)
	reqM2 := math.Max(avgMonthly+minStockQty-remaining, 0)

	moq := math.Max(resolveOr(latest.MOQ, 1), 1)
	pack := math.Max(resolveOr(latest.PackSize, 1), 1)

	poM1 := roundToOrder(reqM1, moq, pack)
	poM2 := roundToOrder(reqM2, moq, pack)

	name := latest.ItemName
	if name == "" {
		name = latest.ItemCode
	}
	vendor := latest.Vendor
	if vendor == "" {
		vendor = "UNKNOWN"
	}

	return models.POPlan{
		ItemCode:             latest.ItemCode,
		ItemName:             name,
		Vendor:               vendor,
		AvgMonthlyDemand:     int(math.Round(avgMonthly)),
		CurrentStock:         int(stock),
		MinStockQty:          int(math.Round(minStockQty)),
		POMonth1Qty:          int(poM1),
		POMonth2Qty:          int(poM2),
		PORaiseDate:          today,
		DeliveryRequiredDate: today.AddDate(0, 0, int(supplyTime)),
		VendorRisk:           classifyRisk(tat, lead),
		Status:               classifyStatus(stock, minStockQty),
	}
}

// averageSales means the parseable sales cells of the group. A group with no
// parseable sales averages to zero.
func averageSales(group []models.HistoryRecord) float64 {
	var sum float64
	var n int
	for _, r := range group {
		if r.Sales == nil {
			continue
		}
		sum += *r.Sales
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// lastKnownStock walks the period-ordered group backwards for the most recent
// non-missing stock value, defaulting to zero.
func lastKnownStock(group []models.HistoryRecord) float64 {
	for i := len(group) - 1; i >= 0; i-- {
		if group[i].Stock != nil {
			return *group[i].Stock
		}
	}
	return 0
}

// roundToOrder rounds a positive requirement up to the next MOQ multiple,
// then rounds that result up to the next pack multiple. Zero requirements
// stay zero: already-sufficient items get no minimum-order padding.
func roundToOrder(req, moq, pack float64) float64 {
	if req <= 0 {
		return 0
	}
	qty := math.Ceil(req/moq) * moq
	return math.Ceil(qty/pack) * pack
}

func classifyRisk(tat, lead float64) models.VendorRisk {
	switch {
	case tat <= lead:
		return models.RiskLow
	case tat <= lead+5:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func classifyStatus(stock, minStockQty float64) models.StockStatus {
	if stock < minStockQty {
		return models.StatusDeficit
	}
	return models.StatusSufficient
}
