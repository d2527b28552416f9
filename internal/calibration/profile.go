package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// CurrentProfileVersion changes whenever the profile layout does.
	CurrentProfileVersion = 1
	// DefaultProfileFileName is the file name used in the home directory.
	DefaultProfileFileName = ".fibengine_calibration.json"
)

// CalibrationProfile is the persisted outcome of a calibration, tied to the
// hardware and toolchain it was measured on.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	NumCPU    int    `json:"num_cpu"`
	GOARCH    string `json:"goarch"`
	GOOS      string `json:"goos"`
	GoVersion string `json:"go_version"`
	WordSize  int    `json:"word_size"`

	OptimalWorkers   int    `json:"optimal_workers"`
	CalibrationN     uint32 `json:"calibration_n"`
	CalibrationCount uint32 `json:"calibration_count"`
	CalibrationTime  string `json:"calibration_time"`
}

// NewProfile returns a profile describing the current machine, with no
// measurement yet.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		CalibratedAt:   time.Now(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
	}
}

// IsValid reports whether the profile was produced on hardware matching the
// current process. The Go version is not compared: a toolchain upgrade does
// not change the shape of the curve.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63)
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	return fmt.Sprintf("calibration profile v%d (%s/%s, %d CPUs, %s): workers=%d for %d x F(%d), measured in %s",
		p.ProfileVersion, p.GOOS, p.GOARCH, p.NumCPU, p.CalibratedAt.Format(time.RFC3339),
		p.OptimalWorkers, p.CalibrationCount, p.CalibrationN, p.CalibrationTime)
}

// SaveProfile writes the profile as indented JSON, creating parent
// directories.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create profile directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadOrCreateProfile returns the valid profile stored at path, or a fresh
// one. loaded tells which.
func LoadOrCreateProfile(path string) (profile *CalibrationProfile, loaded bool) {
	if p, err := loadProfile(path); err == nil && p.IsValid() {
		return p, true
	}
	return NewProfile(), false
}

// GetDefaultProfilePath returns DefaultProfileFileName in the user's home
// directory, or in the working directory when there is none.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}
