package instruments_test

import (
	"testing"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/instruments"
	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/utils"
)

func TestParseTenor(t *testing.T) {
	t.Parallel()

	tn, err := instruments.ParseTenor("18M")
	if err != nil {
		t.Fatalf("ParseTenor error: %v", err)
	}
	if months, ok := tn.Months(); !ok || months != 18 {
		t.Fatalf("Months mismatch: got %d ok %v", months, ok)
	}

	tn, err = instruments.ParseTenor("10Y")
	if err != nil {
		t.Fatalf("ParseTenor error: %v", err)
	}
	if months, ok := tn.Months(); !ok || months != 120 {
		t.Fatalf("Months mismatch: got %d ok %v", months, ok)
	}

	tn, err = instruments.ParseTenor("2W")
	if err != nil {
		t.Fatalf("ParseTenor error: %v", err)
	}
	if days, ok := tn.Days(); !ok || days != 14 {
		t.Fatalf("Days mismatch: got %d ok %v", days, ok)
	}
	if _, ok := tn.Months(); ok {
		t.Fatalf("week tenor should have no month representation")
	}

	for _, bad := range []string{"", "M", "0Y", "-1M", "3Q"} {
		if _, err := instruments.ParseTenor(bad); err == nil {
			t.Fatalf("expected error for tenor %q", bad)
		}
	}
}

func TestSpotDateOverEaster(t *testing.T) {
	t.Parallel()

	// T+2 from the Wednesday before Good Friday 2026 lands after Easter.
	got := instruments.SpotDate(utils.MustDate("2026-04-01"), 2, calendar.TARGET)
	if !got.Equal(utils.MustDate("2026-04-07")) {
		t.Fatalf("SpotDate mismatch: got %s", got.Format(utils.DateLayout))
	}

	// Zero lag keeps the valuation date.
	got = instruments.SpotDate(utils.MustDate("2026-04-04"), 0, calendar.TARGET)
	if !got.Equal(utils.MustDate("2026-04-04")) {
		t.Fatalf("SpotDate mismatch: got %s", got.Format(utils.DateLayout))
	}
}

func TestScheduleAnnual5Y(t *testing.T) {
	t.Parallel()

	dates := instruments.Schedule(utils.MustDate("2026-07-17"), 60, 12, calendar.TARGET)
	want := []string{
		"2026-07-17", "2027-07-19", "2028-07-17",
		"2029-07-17", "2030-07-17", "2031-07-17",
	}
	if len(dates) != len(want) {
		t.Fatalf("expected %d boundaries, got %d", len(want), len(dates))
	}
	for i, w := range want {
		if !dates[i].Equal(utils.MustDate(w)) {
			t.Fatalf("boundary %d mismatch: got %s want %s",
				i, dates[i].Format(utils.DateLayout), w)
		}
	}
}

func TestScheduleFrontStub(t *testing.T) {
	t.Parallel()

	// 18M with annual coupons: the stub sits at the front.
	dates := instruments.Schedule(utils.MustDate("2026-07-17"), 18, 12, calendar.TARGET)
	want := []string{"2026-07-17", "2027-01-18", "2028-01-17"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d boundaries, got %d", len(want), len(dates))
	}
	for i, w := range want {
		if !dates[i].Equal(utils.MustDate(w)) {
			t.Fatalf("boundary %d mismatch: got %s want %s",
				i, dates[i].Format(utils.DateLayout), w)
		}
	}
}

func TestScheduleSinglePeriod(t *testing.T) {
	t.Parallel()

	dates := instruments.Schedule(utils.MustDate("2026-07-17"), 6, 12, calendar.TARGET)
	if len(dates) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(dates))
	}
	if !dates[1].Equal(utils.MustDate("2027-01-18")) {
		t.Fatalf("maturity mismatch: got %s", dates[1].Format(utils.DateLayout))
	}
}

func TestScheduleEndOfMonthRoll(t *testing.T) {
	t.Parallel()

	// A month-end effective date pins the anchors to month end.
	dates := instruments.Schedule(utils.MustDate("2026-11-30"), 12, 6, calendar.TARGET)
	want := []string{"2026-11-30", "2027-05-31", "2027-11-30"}
	if len(dates) != len(want) {
		t.Fatalf("expected %d boundaries, got %d", len(want), len(dates))
	}
	for i, w := range want {
		if !dates[i].Equal(utils.MustDate(w)) {
			t.Fatalf("boundary %d mismatch: got %s want %s",
				i, dates[i].Format(utils.DateLayout), w)
		}
	}
}

func TestOvernightSwapNodeDates(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	node := instruments.OvernightSwap(instruments.OisEonia, "1Y", "OIS1Y")

	if node.Kind() != instruments.KindOvernightSwap {
		t.Fatalf("Kind mismatch: got %s", node.Kind())
	}
	if node.QuoteKey() != market.QuoteKey("OIS1Y") {
		t.Fatalf("QuoteKey mismatch: got %s", node.QuoteKey())
	}

	fixed := node.FixedSchedule(valuation)
	if len(fixed) != 2 {
		t.Fatalf("expected single fixed period, got %d boundaries", len(fixed))
	}
	// Spot T+2 from Wed 2026-07-15 is Fri 2026-07-17; 1Y rolls to Monday.
	if !fixed[0].Equal(utils.MustDate("2026-07-17")) {
		t.Fatalf("effective mismatch: got %s", fixed[0].Format(utils.DateLayout))
	}
	if !fixed[1].Equal(utils.MustDate("2027-07-19")) {
		t.Fatalf("maturity mismatch: got %s", fixed[1].Format(utils.DateLayout))
	}
	if !node.PillarDate(valuation).Equal(utils.MustDate("2027-07-19")) {
		t.Fatalf("pillar mismatch: got %s", node.PillarDate(valuation).Format(utils.DateLayout))
	}
}

func TestFraNodeDates(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	node := instruments.Fra(market.EURIBOR3M, 3, 6, "FRA3Mx6M")

	if node.Label() != "FRA 3Mx6M" {
		t.Fatalf("Label mismatch: got %s", node.Label())
	}
	if !node.Start(valuation).Equal(utils.MustDate("2026-10-19")) {
		t.Fatalf("start mismatch: got %s", node.Start(valuation).Format(utils.DateLayout))
	}
	if !node.End(valuation).Equal(utils.MustDate("2027-01-18")) {
		t.Fatalf("end mismatch: got %s", node.End(valuation).Format(utils.DateLayout))
	}
}

func TestIborFixingNodeDates(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	node := instruments.IborFixing(market.EURIBOR3M, "FIXING3M")

	if !node.Start(valuation).Equal(utils.MustDate("2026-07-17")) {
		t.Fatalf("start mismatch: got %s", node.Start(valuation).Format(utils.DateLayout))
	}
	if !node.End(valuation).Equal(utils.MustDate("2026-10-19")) {
		t.Fatalf("end mismatch: got %s", node.End(valuation).Format(utils.DateLayout))
	}
}

func TestCdsNodeSchedule(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	node := instruments.Cds(instruments.CdsEurQuarterly, "ACME", "1Y", "CDS1Y")

	if !node.StepIn(valuation).Equal(utils.MustDate("2026-07-16")) {
		t.Fatalf("step-in mismatch: got %s", node.StepIn(valuation).Format(utils.DateLayout))
	}
	sched := node.Schedule(valuation)
	if len(sched) != 5 {
		t.Fatalf("expected 5 boundaries for quarterly 1Y, got %d", len(sched))
	}
	if !sched[0].Equal(utils.MustDate("2026-07-16")) {
		t.Fatalf("first boundary mismatch: got %s", sched[0].Format(utils.DateLayout))
	}
}

func TestTermDepositDefaults(t *testing.T) {
	t.Parallel()

	node := instruments.TermDeposit(market.EUR, "6M", "DEPO6M")
	if node.DayCount != market.Act360 || node.SpotLagDays != 2 || node.Calendar != calendar.TARGET {
		t.Fatalf("unexpected defaults: %+v", node)
	}
	if node.Label() != "DEPO EUR 6M" {
		t.Fatalf("Label mismatch: got %s", node.Label())
	}
}

func TestSwapConventionByName(t *testing.T) {
	t.Parallel()

	conv, err := instruments.SwapConventionByName("EUR-IRS-EURIBOR6M")
	if err != nil {
		t.Fatalf("SwapConventionByName error: %v", err)
	}
	if conv.Float.Index != market.EURIBOR6M || conv.Fixed.DayCount != market.Dc30360 {
		t.Fatalf("unexpected convention: %+v", conv)
	}
	if _, err := instruments.SwapConventionByName("EUR-IRS-WIBOR"); err == nil {
		t.Fatalf("expected error for unknown convention")
	}
}
