package bench

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var csvHeader = []string{
	"run_id", "name", "planner", "environment", "repeats", "success_rate",
	"mean_path_length", "std_path_length", "ci_path_length_low", "ci_path_length_high",
	"mean_time_ms", "std_time_ms", "ci_time_ms_low", "ci_time_ms_high",
	"mean_nodes", "std_nodes", "mean_smoothness", "mean_clearance", "mean_energy",
}

// WriteResults writes <base>_results.json and <base>_results.csv
func WriteResults(base string, report *Report, logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	jsonPath := base + "_results.json"
	if err := writeJSON(jsonPath, report); err != nil {
		return err
	}
	csvPath := base + "_results.csv"
	if err := writeCSV(csvPath, report); err != nil {
		return err
	}
	logger.Infof("results written to %s and %s", jsonPath, csvPath)
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func writeCSV(path string, report *Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range report.Results {
		if err := w.Write(csvRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func csvRow(r Result) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{
		r.RunID, r.Name, r.Planner, string(r.Environment), strconv.Itoa(r.Runs), f(r.SuccessRate),
		f(r.PathLength.Mean), f(r.PathLength.Std), f(r.PathLength.CI[0]), f(r.PathLength.CI[1]),
		f(r.TimeMs.Mean), f(r.TimeMs.Std), f(r.TimeMs.CI[0]), f(r.TimeMs.CI[1]),
		f(r.NodesExpanded.Mean), f(r.NodesExpanded.Std), f(r.Smoothness.Mean), f(r.Clearance.Mean), f(r.Energy.Mean),
	}
}
