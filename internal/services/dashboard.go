package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/program-ledger/internal/models"
)

// ErrInvalidAsOfDate is returned before any query when the as_of_date input
// does not parse as YYYY-MM-DD.
var ErrInvalidAsOfDate = errors.New("invalid as_of_date, expected YYYY-MM-DD")

const (
	varianceAlertThreshold = 1000.0
	topVendorCount         = 5
	monthKeyLayout         = "2006-01"
)

type CashFlowBucket struct {
	Baseline float64 `json:"baseline"`
	Planned  float64 `json:"planned"`
	Actual   float64 `json:"actual"`
}

type VarianceAlert struct {
	WbsCategoryID uint    `json:"wbs_category_id"`
	Planned       float64 `json:"planned"`
	Actual        float64 `json:"actual"`
	Variance      float64 `json:"variance"`
}

type VendorSpend struct {
	Vendor string  `json:"vendor"`
	Spend  float64 `json:"spend"`
}

// DashboardSummary is the earned-value style rollup for one program as of a
// given date. All figures are display-only float approximations of the
// decimal ledger amounts.
type DashboardSummary struct {
	ProgramID       uint                       `json:"program_id"`
	AsOfDate        string                     `json:"as_of_date"`
	ActualsToDate   float64                    `json:"actuals_to_date"`
	PlannedToDate   float64                    `json:"planned_to_date"`
	ETC             float64                    `json:"etc"`
	EAC             float64                    `json:"eac"`
	MonthlyCashFlow map[string]*CashFlowBucket `json:"monthly_cash_flow"`
	VarianceAlerts  []VarianceAlert            `json:"variance_alerts"`
	TopVendors      []VendorSpend              `json:"top_vendors"`
}

// DashboardService computes read-only financial rollups from the ledger.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Summary scans every ledger transaction of the program and derives
// actuals/planned to date, ETC, EAC, per-category variance alerts, top
// vendors by actual spend and monthly cash flow curves.
//
// Known quirk carried over from the original rollup: planned_to_go filters
// planned_date >= as_of while planned_to_date filters <=, so a row planned
// exactly on the as-of date contributes to both sides (and therefore to both
// planned_to_date and etc). Confirm with stakeholders before tightening.
func (s *DashboardService) Summary(ctx context.Context, programID uint, asOfDate string) (*DashboardSummary, error) {
	asOf, err := time.Parse("2006-01-02", asOfDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAsOfDate, asOfDate)
	}

	var transactions []models.LedgerTransaction
	if err := s.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("load transactions for program %d: %w", programID, err)
	}

	var actualsToDate, plannedToDate, plannedToGo float64

	type categoryTotals struct {
		planned float64
		actual  float64
	}
	categories := make(map[uint]*categoryTotals)
	var categoryOrder []uint

	vendors := make(map[string]float64)
	var vendorOrder []string

	cashFlow := make(map[string]*CashFlowBucket)
	bucket := func(key string) *CashFlowBucket {
		b, ok := cashFlow[key]
		if !ok {
			b = &CashFlowBucket{}
			cashFlow[key] = b
		}
		return b
	}

	for i := range transactions {
		t := &transactions[i]

		if t.ActualDate != nil && !t.ActualDate.Time.After(asOf) {
			actualsToDate += amount(t.ActualAmount)
		}
		if t.PlannedDate != nil && !t.PlannedDate.Time.After(asOf) {
			plannedToDate += amount(t.PlannedAmount)
		}
		if t.PlannedDate != nil && !t.PlannedDate.Time.Before(asOf) {
			plannedToGo += amount(t.PlannedAmount)
		}

		if t.WbsCategoryID != nil {
			totals, ok := categories[*t.WbsCategoryID]
			if !ok {
				totals = &categoryTotals{}
				categories[*t.WbsCategoryID] = totals
				categoryOrder = append(categoryOrder, *t.WbsCategoryID)
			}
			totals.planned += amount(t.PlannedAmount)
			totals.actual += amount(t.ActualAmount)
		}

		if t.VendorName != "" {
			if _, ok := vendors[t.VendorName]; !ok {
				vendorOrder = append(vendorOrder, t.VendorName)
			}
			vendors[t.VendorName] += amount(t.ActualAmount)
		}

		if t.BaselineDate != nil {
			bucket(t.BaselineDate.Format(monthKeyLayout)).Baseline += amount(t.BaselineAmount)
		}
		if t.PlannedDate != nil {
			bucket(t.PlannedDate.Format(monthKeyLayout)).Planned += amount(t.PlannedAmount)
		}
		if t.ActualDate != nil {
			bucket(t.ActualDate.Format(monthKeyLayout)).Actual += amount(t.ActualAmount)
		}
	}

	alerts := make([]VarianceAlert, 0)
	for _, id := range categoryOrder {
		totals := categories[id]
		variance := totals.planned - totals.actual
		if variance < 0 {
			variance = -variance
		}
		if variance > varianceAlertThreshold {
			alerts = append(alerts, VarianceAlert{
				WbsCategoryID: id,
				Planned:       totals.planned,
				Actual:        totals.actual,
				Variance:      variance,
			})
		}
	}

	// Descending by spend; the stable sort keeps first-encounter order on ties.
	sort.SliceStable(vendorOrder, func(i, j int) bool {
		return vendors[vendorOrder[i]] > vendors[vendorOrder[j]]
	})
	if len(vendorOrder) > topVendorCount {
		vendorOrder = vendorOrder[:topVendorCount]
	}
	topVendors := make([]VendorSpend, 0, len(vendorOrder))
	for _, vendor := range vendorOrder {
		topVendors = append(topVendors, VendorSpend{Vendor: vendor, Spend: vendors[vendor]})
	}

	etc := plannedToGo
	return &DashboardSummary{
		ProgramID:       programID,
		AsOfDate:        asOfDate,
		ActualsToDate:   actualsToDate,
		PlannedToDate:   plannedToDate,
		ETC:             etc,
		EAC:             actualsToDate + etc,
		MonthlyCashFlow: cashFlow,
		VarianceAlerts:  alerts,
		TopVendors:      topVendors,
	}, nil
}

// amount converts an optional decimal amount to float for the rollup;
// missing amounts contribute zero.
func amount(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	f, _ := d.Decimal.Float64()
	return f
}
