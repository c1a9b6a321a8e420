package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const metaFile = "meta.json"

func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

func ScenarioDir(runDir, model, transport, testID string) string {
	return filepath.Join(runDir, "scenarios", model, transport, testID)
}

// TrialLogPath is where the raw benchmark output of one trial is kept.
func TrialLogPath(scenarioDir string, trial int) string {
	return filepath.Join(scenarioDir, fmt.Sprintf("trial-%d.log", trial))
}

func WriteRecord(scenarioDir string, rec *ScenarioRecord) error {
	if err := os.MkdirAll(scenarioDir, 0o755); err != nil {
		return fmt.Errorf("creating scenario dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return os.WriteFile(filepath.Join(scenarioDir, metaFile), data, 0o644)
}

func ReadRecord(path string) (*ScenarioRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var rec ScenarioRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return &rec, nil
}

// RecordPaths finds every meta.json under runDir.
func RecordPaths(runDir string) ([]string, error) {
	var paths []string
	err := filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == metaFile {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// Collect reads every record under runDir, ordered by start time then test
// ID. Unreadable records are skipped.
func Collect(runDir string) ([]*ScenarioRecord, error) {
	paths, err := RecordPaths(runDir)
	if err != nil {
		return nil, err
	}
	var recs []*ScenarioRecord
	for _, p := range paths {
		rec, err := ReadRecord(p)
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].StartedAt.Equal(recs[j].StartedAt) {
			return recs[i].StartedAt.Before(recs[j].StartedAt)
		}
		return recs[i].TestID < recs[j].TestID
	})
	return recs, nil
}
