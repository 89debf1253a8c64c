package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/program-ledger/internal/db"
	"github.com/diewo77/program-ledger/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbConn
}

func money(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func day(year int, month time.Month, dom int) *models.Date {
	d := models.NewDate(year, month, dom)
	return &d
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestSummaryEmptyProgram(t *testing.T) {
	svc := NewDashboardService(setupTestDB(t))
	summary, err := svc.Summary(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	approx(t, "actuals_to_date", summary.ActualsToDate, 0)
	approx(t, "planned_to_date", summary.PlannedToDate, 0)
	approx(t, "etc", summary.ETC, 0)
	approx(t, "eac", summary.EAC, 0)
	if len(summary.VarianceAlerts) != 0 || len(summary.TopVendors) != 0 || len(summary.MonthlyCashFlow) != 0 {
		t.Errorf("collections should be empty: %+v", summary)
	}
	if summary.VarianceAlerts == nil || summary.TopVendors == nil || summary.MonthlyCashFlow == nil {
		t.Errorf("collections should be empty, not null")
	}
	if summary.ProgramID != 1 || summary.AsOfDate != "2024-06-01" {
		t.Errorf("echoed inputs wrong: %+v", summary)
	}
}

func TestSummaryInvalidAsOfDateFailsFast(t *testing.T) {
	svc := NewDashboardService(setupTestDB(t))
	if _, err := svc.Summary(context.Background(), 1, "06/01/2024"); !errors.Is(err, ErrInvalidAsOfDate) {
		t.Fatalf("expected ErrInvalidAsOfDate, got %v", err)
	}
}

func TestSummaryBoundaryDateCountsBothSides(t *testing.T) {
	dbConn := setupTestDB(t)
	txn := models.LedgerTransaction{
		ProgramID:          1,
		VendorName:         "Acme",
		ExpenseDescription: "boundary",
		PlannedDate:        day(2024, time.June, 1),
		PlannedAmount:      money("100"),
	}
	if err := dbConn.Create(&txn).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := NewDashboardService(dbConn)
	summary, err := svc.Summary(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// A row planned exactly on the as-of date lands on both sides of the
	// split, so it shows up in planned_to_date and in etc.
	approx(t, "planned_to_date", summary.PlannedToDate, 100)
	approx(t, "etc", summary.ETC, 100)
	approx(t, "eac", summary.EAC, 100)
}

func TestSummaryActualsAndPlannedRespectAsOf(t *testing.T) {
	dbConn := setupTestDB(t)
	rows := []models.LedgerTransaction{
		{ProgramID: 1, VendorName: "Acme", ExpenseDescription: "past actual",
			ActualDate: day(2024, time.May, 10), ActualAmount: money("40")},
		{ProgramID: 1, VendorName: "Acme", ExpenseDescription: "future actual",
			ActualDate: day(2024, time.July, 10), ActualAmount: money("60")},
		{ProgramID: 1, VendorName: "Acme", ExpenseDescription: "missing amount",
			ActualDate: day(2024, time.May, 11)},
		{ProgramID: 2, VendorName: "Acme", ExpenseDescription: "other program",
			ActualDate: day(2024, time.May, 12), ActualAmount: money("500")},
	}
	for i := range rows {
		if err := dbConn.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewDashboardService(dbConn)
	summary, err := svc.Summary(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	approx(t, "actuals_to_date", summary.ActualsToDate, 40)
}

func TestSummaryVarianceAlertsThreshold(t *testing.T) {
	dbConn := setupTestDB(t)
	cat1, cat2 := uint(11), uint(12)
	rows := []models.LedgerTransaction{
		{ProgramID: 1, VendorName: "Acme", ExpenseDescription: "big gap", WbsCategoryID: &cat1,
			PlannedDate: day(2024, time.May, 1), PlannedAmount: money("500"),
			ActualDate: day(2024, time.May, 2), ActualAmount: money("2000")},
		{ProgramID: 1, VendorName: "Acme", ExpenseDescription: "small gap", WbsCategoryID: &cat2,
			PlannedDate: day(2024, time.May, 1), PlannedAmount: money("100"),
			ActualDate: day(2024, time.May, 2), ActualAmount: money("150")},
	}
	for i := range rows {
		if err := dbConn.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewDashboardService(dbConn)
	summary, err := svc.Summary(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.VarianceAlerts) != 1 {
		t.Fatalf("expected 1 alert, got %+v", summary.VarianceAlerts)
	}
	alert := summary.VarianceAlerts[0]
	if alert.WbsCategoryID != cat1 {
		t.Errorf("alert category = %d, want %d", alert.WbsCategoryID, cat1)
	}
	approx(t, "alert.planned", alert.Planned, 500)
	approx(t, "alert.actual", alert.Actual, 2000)
	approx(t, "alert.variance", alert.Variance, 1500)
}

func TestSummaryTopVendorsKeepsFiveHighest(t *testing.T) {
	dbConn := setupTestDB(t)
	spends := []string{"10", "60", "30", "50", "20", "40"}
	for i, spend := range spends {
		txn := models.LedgerTransaction{
			ProgramID:          1,
			VendorName:         fmt.Sprintf("vendor-%d", i),
			ExpenseDescription: "spend",
			ActualDate:         day(2024, time.May, 1),
			ActualAmount:       money(spend),
		}
		if err := dbConn.Create(&txn).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewDashboardService(dbConn)
	summary, err := svc.Summary(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.TopVendors) != 5 {
		t.Fatalf("expected 5 vendors, got %d", len(summary.TopVendors))
	}
	wantSpend := []float64{60, 50, 40, 30, 20}
	for i, want := range wantSpend {
		approx(t, fmt.Sprintf("top_vendors[%d].spend", i), summary.TopVendors[i].Spend, want)
	}
}

func TestSummaryMonthlyCashFlowBuckets(t *testing.T) {
	dbConn := setupTestDB(t)
	rows := []models.LedgerTransaction{
		{ProgramID: 1, VendorName: "Acme", ExpenseDescription: "baseline row",
			BaselineDate: day(2024, time.March, 5), BaselineAmount: money("100")},
		{ProgramID: 1, VendorName: "Acme", ExpenseDescription: "actual row",
			ActualDate: day(2024, time.March, 20), ActualAmount: money("80")},
	}
	for i := range rows {
		if err := dbConn.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewDashboardService(dbConn)
	summary, err := svc.Summary(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	bucket, ok := summary.MonthlyCashFlow["2024-03"]
	if !ok {
		t.Fatalf("missing 2024-03 bucket: %+v", summary.MonthlyCashFlow)
	}
	approx(t, "baseline", bucket.Baseline, 100)
	approx(t, "planned", bucket.Planned, 0)
	approx(t, "actual", bucket.Actual, 80)
}

func TestSummarySameRowFeedsAllThreeAxes(t *testing.T) {
	dbConn := setupTestDB(t)
	txn := models.LedgerTransaction{
		ProgramID:          1,
		VendorName:         "Acme",
		ExpenseDescription: "all axes",
		BaselineDate:       day(2024, time.February, 1), BaselineAmount: money("10"),
		PlannedDate: day(2024, time.March, 1), PlannedAmount: money("20"),
		ActualDate: day(2024, time.March, 15), ActualAmount: money("30"),
	}
	if err := dbConn.Create(&txn).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := NewDashboardService(dbConn)
	summary, err := svc.Summary(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	feb, mar := summary.MonthlyCashFlow["2024-02"], summary.MonthlyCashFlow["2024-03"]
	if feb == nil || mar == nil {
		t.Fatalf("expected buckets for 2024-02 and 2024-03: %+v", summary.MonthlyCashFlow)
	}
	approx(t, "feb.baseline", feb.Baseline, 10)
	approx(t, "mar.planned", mar.Planned, 20)
	approx(t, "mar.actual", mar.Actual, 30)
}
