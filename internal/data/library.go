package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/parser"
)

// Library is the loaded reference dataset: bundled defaults overlaid with any
// YAML records found in the data directory fallback chain. It is read-only
// after construction.
type Library struct {
	secondaries map[string]*Secondary // lowercased name → record
	missions    map[string]*Mission   // id → record
	datasheets  map[string]*Datasheet // id → record
	log         *zap.Logger
}

// NewLibrary builds a Library from the bundled defaults plus any overrides
// found under dataDirs (searched in order: secondaries/, missions/,
// datasheets/ subdirectories holding one YAML file per record).
func NewLibrary(dataDirs []string, log *zap.Logger) (*Library, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Library{
		secondaries: make(map[string]*Secondary),
		missions:    make(map[string]*Mission),
		datasheets:  make(map[string]*Datasheet),
		log:         log,
	}

	for _, s := range defaultSecondaries() {
		l.secondaries[strings.ToLower(s.Name)] = s
	}
	for _, m := range defaultMissions() {
		l.missions[m.ID] = m
	}

	for _, dir := range dataDirs {
		if err := loadDir(filepath.Join(dir, "secondaries"), func(s *Secondary) {
			l.secondaries[strings.ToLower(s.Name)] = s
		}); err != nil {
			return nil, err
		}
		if err := loadDir(filepath.Join(dir, "missions"), func(m *Mission) {
			l.missions[m.ID] = m
		}); err != nil {
			return nil, err
		}
		if err := loadDir(filepath.Join(dir, "datasheets"), func(d *Datasheet) {
			l.datasheets[d.ID] = d
		}); err != nil {
			return nil, err
		}
	}

	// Formulas are parsed exactly once, here. Scoring re-uses the AST.
	for _, m := range l.missions {
		m.Formula = parser.ParseFormula(m.ScoringFormula)
		if !m.Formula.Recognized() {
			l.log.Warn("unrecognized mission scoring formula, using default multiplier",
				zap.String("mission", m.ID),
				zap.String("formula", m.ScoringFormula),
				zap.Int("default_multiplier", parser.DefaultMultiplier))
		}
	}

	return l, nil
}

// loadDir decodes every *.yaml file in dir into T and hands it to add.
// A missing directory is not an error; the bundled defaults stand.
func loadDir[T any](dir string, add func(*T)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open reference file %s: %w", path, err)
		}
		var rec T
		err = yaml.NewDecoder(f).Decode(&rec)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to decode yaml reference %s: %w", path, err)
		}
		add(&rec)
	}
	return nil
}

// Secondary looks up a secondary card by name, case-insensitively.
func (l *Library) Secondary(name string) (*Secondary, bool) {
	s, ok := l.secondaries[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// AllSecondaries returns every known secondary card.
func (l *Library) AllSecondaries() []*Secondary {
	out := make([]*Secondary, 0, len(l.secondaries))
	for _, s := range l.secondaries {
		out = append(out, s)
	}
	return out
}

// Mission looks up a primary mission by id.
func (l *Library) Mission(id string) (*Mission, bool) {
	m, ok := l.missions[id]
	return m, ok
}

// Datasheet looks up a unit datasheet by id.
func (l *Library) Datasheet(id string) (*Datasheet, bool) {
	d, ok := l.datasheets[id]
	return d, ok
}

// AllDatasheets returns every loaded datasheet.
func (l *Library) AllDatasheets() []*Datasheet {
	out := make([]*Datasheet, 0, len(l.datasheets))
	for _, d := range l.datasheets {
		out = append(out, d)
	}
	return out
}
