package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/scene"
)

// ErrRunNotFound indicates no recording exists under the given id.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectories.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Apps         []string           `json:"apps"`
	Script       string             `json:"script"`
	Timestamp    time.Time          `json:"timestamp"`
	Frames       int                `json:"frames"`
	Skipped      int                `json:"skipped"`
	Warnings     int                `json:"warnings"`
	FixedDt      float64            `json:"fixed_dt"`
	PhysicsSpeed float64            `json:"physics_speed"`
	Gravity      [3]float64         `json:"gravity"`
	Events       scene.Events       `json:"events"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes meta and the result's samples under a fresh run id.
func (s *Store) Save(meta RunMetadata, result *frame.Result) (string, error) {
	meta.ID = fmt.Sprintf("%s_%s", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Frames = result.Frames
	meta.Skipped = result.Skipped
	meta.Warnings = result.Warnings
	meta.Events = result.Events
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"frame", "time", "app", "index", "state", "x", "y", "z", "qx", "qy", "qz", "qw"}); err != nil {
		return "", err
	}
	for _, sample := range result.Samples {
		for _, o := range sample.Objects {
			p, q := o.Pose.Position, o.Pose.Rotation
			row := []string{
				strconv.Itoa(sample.Frame),
				formatFloat(sample.Time),
				o.App,
				strconv.Itoa(o.Index),
				o.State.String(),
			}
			for _, v := range []float64{p[0], p[1], p[2], q.V[0], q.V[1], q.V[2], q.W} {
				row = append(row, formatFloat(v))
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// TrajectoryRow is one object in one recorded frame.
type TrajectoryRow struct {
	Frame int
	Time  float64
	App   string
	Index int
	State string
	Pose  geom.Pose
}

// LoadTrajectories reads a run's recorded object poses. Malformed rows are
// skipped.
func (s *Store) LoadTrajectories(runID string) ([]TrajectoryRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TrajectoryRow{}, nil
	}

	rows := make([]TrajectoryRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row, ok := parseRow(record)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) (TrajectoryRow, bool) {
	if len(record) != 12 {
		return TrajectoryRow{}, false
	}
	frameNo, err1 := strconv.Atoi(record[0])
	index, err2 := strconv.Atoi(record[3])
	if err1 != nil || err2 != nil {
		return TrajectoryRow{}, false
	}
	vals := make([]float64, 8)
	for i, field := range append([]string{record[1]}, record[5:]...) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return TrajectoryRow{}, false
		}
		vals[i] = v
	}
	var p geom.Pose
	p.Position = [3]float64{vals[1], vals[2], vals[3]}
	p.Rotation.V = [3]float64{vals[4], vals[5], vals[6]}
	p.Rotation.W = vals[7]
	return TrajectoryRow{Frame: frameNo, Time: vals[0], App: record[2], Index: index, State: record[4], Pose: p}, true
}

// Heights extracts the height series of one object, in frame order.
func Heights(rows []TrajectoryRow, app string, index int) []float64 {
	out := make([]float64, 0)
	for _, r := range rows {
		if r.App == app && r.Index == index {
			out = append(out, r.Pose.Position[1])
		}
	}
	return out
}

// HeldFrames counts the frames an object spent held.
func HeldFrames(rows []TrajectoryRow, app string, index int) int {
	n := 0
	held := grab.Held.String()
	for _, r := range rows {
		if r.App == app && r.Index == index && r.State == held {
			n++
		}
	}
	return n
}
