package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/multicurve/calibrate"
	"github.com/meenmo/multicurve/config"
	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/marketdata"
	"github.com/meenmo/multicurve/rates"
	"github.com/meenmo/multicurve/utils"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate a curve group from a quotes file",
	Long: `Calibrates every curve of a group against quoted market instruments
and writes a JSON report with the solved node values.

Example:
  curvectl calibrate --group eur.yaml --quotes quotes.csv \
    --valuation 2026-07-15 --fixings EURIBOR3M=fixings.csv --out curves.json`,
	RunE: runCalibrate,
}

var (
	calGroupPath string
	calQuotes    string
	calValuation string
	calFixings   []string
	calOut       string
)

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().StringVar(&calGroupPath, "group", "", "curve group YAML file (required)")
	calibrateCmd.Flags().StringVar(&calQuotes, "quotes", "", "quotes CSV file (required)")
	calibrateCmd.Flags().StringVar(&calValuation, "valuation", "", "valuation date, 2006-01-02 (default today)")
	calibrateCmd.Flags().StringArrayVar(&calFixings, "fixings", nil, "historical fixings as INDEX=file.csv, repeatable")
	calibrateCmd.Flags().StringVar(&calOut, "out", "", "report file (default stdout)")
	_ = calibrateCmd.MarkFlagRequired("group")
	_ = calibrateCmd.MarkFlagRequired("quotes")
}

// calibrationReport is the JSON output schema of the calibrate command.
type calibrationReport struct {
	Group        string        `json:"group"`
	Valuation    string        `json:"valuation"`
	Iterations   int           `json:"iterations"`
	ResidualNorm float64       `json:"residual_norm"`
	Elapsed      string        `json:"elapsed"`
	Curves       []curveReport `json:"curves"`
}

type curveReport struct {
	Name  string       `json:"name"`
	Nodes []nodeReport `json:"nodes"`
}

type nodeReport struct {
	Label          string  `json:"label"`
	Pillar         string  `json:"pillar"`
	Quote          float64 `json:"quote"`
	ZeroRate       float64 `json:"zero_rate"`
	DiscountFactor float64 `json:"discount_factor"`
	Residual       float64 `json:"residual"`
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	group, err := config.LoadGroupFile(calGroupPath)
	if err != nil {
		return err
	}

	f, err := os.Open(calQuotes)
	if err != nil {
		return fmt.Errorf("cannot read quotes file: %w", err)
	}
	records, err := marketdata.ReadQuotesCSV(f)
	f.Close()
	if err != nil {
		return err
	}
	snap, err := marketdata.BuildSnapshot(records)
	if err != nil {
		return err
	}

	valuation, err := parseValuation(calValuation)
	if err != nil {
		return err
	}
	fixings, err := loadFixings(calFixings)
	if err != nil {
		return err
	}

	log := newLogger()
	log.Info().
		Str("group", group.Name).
		Str("valuation", valuation.Format(utils.DateLayout)).
		Int("quotes", snap.Len()).
		Msg("calibrating")

	provider, err := calibrate.Calibrate(cmd.Context(), group, valuation, snap, fixings, market.FxMatrix{})
	if err != nil {
		return err
	}

	report := buildReport(group, valuation, snap, provider)
	out := cmd.OutOrStdout()
	if calOut != "" {
		of, err := os.Create(calOut)
		if err != nil {
			return fmt.Errorf("cannot write report: %w", err)
		}
		defer of.Close()
		out = of
	}
	return writeReport(out, report)
}

func parseValuation(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(utils.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad valuation date %q: want 2006-01-02", s)
	}
	return d, nil
}

// loadFixings reads INDEX=file.csv pairs into per-index fixing series.
func loadFixings(specs []string) (map[market.Index]market.FixingSeries, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[market.Index]market.FixingSeries, len(specs))
	for _, spec := range specs {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("bad fixings %q: want INDEX=file.csv", spec)
		}
		index := market.Index(name)
		if err := index.Validate(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read fixings file: %w", err)
		}
		series, err := marketdata.ReadFixingsCSV(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out[index] = series
	}
	return out, nil
}

func buildReport(group curve.GroupDefinition, valuation time.Time,
	snap *marketdata.Snapshot, provider *rates.Provider) calibrationReport {

	diag := provider.Diagnostics()
	residuals := make(map[string]float64, len(diag.NodeResiduals))
	for _, nr := range diag.NodeResiduals {
		residuals[nr.Curve+"\x00"+nr.Label] = nr.Residual
	}

	report := calibrationReport{
		Group:        group.Name,
		Valuation:    valuation.Format(utils.DateLayout),
		Iterations:   diag.Iterations,
		ResidualNorm: diag.ResidualNorm,
		Elapsed:      diag.Elapsed.String(),
	}
	for _, entry := range group.Entries {
		def := entry.Curve.WithDefaults()
		c, ok := provider.Curve(def.Name)
		if !ok {
			continue
		}
		cr := curveReport{Name: def.Name}
		for _, node := range def.Nodes {
			pillar := node.PillarDate(valuation)
			x := c.DayCount().YearFraction(valuation, pillar)
			quote, _ := snap.Value(node.QuoteKey())
			cr.Nodes = append(cr.Nodes, nodeReport{
				Label:          node.Label(),
				Pillar:         pillar.Format(utils.DateLayout),
				Quote:          quote,
				ZeroRate:       c.ZeroRate(x),
				DiscountFactor: c.DiscountFactor(x),
				Residual:       residuals[def.Name+"\x00"+node.Label()],
			})
		}
		report.Curves = append(report.Curves, cr)
	}
	return report
}

func writeReport(w io.Writer, report calibrationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
