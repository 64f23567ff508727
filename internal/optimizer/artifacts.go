package optimizer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

const studyIndexFile = "study_index.json"

// StudyIndexEntry summarizes one exported study in the artifacts index.
type StudyIndexEntry struct {
	StudyID      string   `json:"study_id"`
	State        string   `json:"state"`
	Sampler      string   `json:"sampler"`
	Objectives   []string `json:"objectives"`
	Trials       int      `json:"trials"`
	BestScore    float64  `json:"best_score"`
	CreatedAtUTC string   `json:"created_at_utc"`
}

// WriteStudyArtifacts writes a study's artifact files under baseDir/<id> and
// upserts its entry in the index file.
func WriteStudyArtifacts(baseDir string, study model.Study) (string, error) {
	if study.ID == "" {
		return "", fmt.Errorf("study id is required")
	}

	studyDir := filepath.Join(baseDir, study.ID)
	if err := os.MkdirAll(studyDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(studyDir, "study.json"), study); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(studyDir, "config.json"), study.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(studyDir, "best_trials.json"), study.BestTrials); err != nil {
		return "", err
	}
	if len(study.Importance) > 0 {
		if err := writeJSON(filepath.Join(studyDir, "importance.json"), study.Importance); err != nil {
			return "", err
		}
	}
	if err := writeScoreSeries(filepath.Join(studyDir, "score_series.csv"), study.Trials); err != nil {
		return "", err
	}

	objectives := make([]string, 0, len(study.Config.Objectives))
	for _, obj := range study.Config.Objectives {
		objectives = append(objectives, obj.Name)
	}
	entry := StudyIndexEntry{
		StudyID:      study.ID,
		State:        study.State,
		Sampler:      study.Config.Sampler,
		Objectives:   objectives,
		Trials:       len(study.Trials),
		BestScore:    bestScore(study.Trials),
		CreatedAtUTC: time.Unix(study.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
	if err := AppendStudyIndex(baseDir, entry); err != nil {
		return "", err
	}

	return studyDir, nil
}

// AppendStudyIndex upserts an index entry keyed by study id.
func AppendStudyIndex(baseDir string, entry StudyIndexEntry) error {
	if entry.StudyID == "" {
		return fmt.Errorf("study id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListStudyIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].StudyID == entry.StudyID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, studyIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, studyIndexFile), index)
}

// ListStudyIndex returns the index entries newest first.
func ListStudyIndex(baseDir string) ([]StudyIndexEntry, error) {
	path := filepath.Join(baseDir, studyIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []StudyIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []StudyIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry StudyIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]StudyIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportStudyArtifacts copies a study's artifact files into outDir/<id>.
func ExportStudyArtifacts(baseDir, studyID, outDir string) (string, error) {
	if studyID == "" {
		return "", fmt.Errorf("study id is required")
	}

	src := filepath.Join(baseDir, studyID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, studyID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"study.json", "config.json", "best_trials.json", "score_series.csv"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	importancePath := filepath.Join(src, "importance.json")
	if _, err := os.Stat(importancePath); err == nil {
		if err := copyFile(importancePath, filepath.Join(dst, "importance.json")); err != nil {
			return "", err
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func writeScoreSeries(path string, trials []model.Trial) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"trial", "score", "best_score"}); err != nil {
		return err
	}
	best := math.Inf(1)
	for _, trial := range trials {
		if trial.Error == "" && trial.Score < best {
			best = trial.Score
		}
		running := best
		if math.IsInf(running, 1) {
			running = PenaltyScore
		}
		if err := writer.Write([]string{
			strconv.Itoa(trial.Number),
			strconv.FormatFloat(trial.Score, 'f', -1, 64),
			strconv.FormatFloat(running, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
