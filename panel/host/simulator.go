package host

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNoProject        = errors.New("no project is open")
	ErrNoActiveSequence = errors.New("no active sequence")
)

// Simulator is an in-memory stand-in for the real editor, used for local
// development and tests. It keeps just enough state for every API call to
// have observable effects.
type Simulator struct {
	mu             sync.Mutex
	project        *Project
	sequences      map[string]*Sequence
	sequenceOrder  []string
	activeSequence string
	playerPosition float64
	dirty          bool
}

var _ API = (*Simulator)(nil)

func NewSimulator() *Simulator {
	return &Simulator{
		sequences: make(map[string]*Sequence),
	}
}

func projectNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Simulator) ActiveProject() (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	p := *s.project
	return &p, nil
}

func (s *Simulator) OpenProject(path string, _ map[string]interface{}) (*Project, error) {
	if path == "" {
		return nil, errors.New("project path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetProjectState()
	s.project = &Project{
		ID:   uuid.NewString(),
		Name: projectNameFromPath(path),
		Path: path,
	}
	p := *s.project
	return &p, nil
}

func (s *Simulator) CreateProject(path string) (*Project, error) {
	if path == "" {
		return nil, errors.New("project path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetProjectState()
	s.project = &Project{
		ID:   uuid.NewString(),
		Name: projectNameFromPath(path),
		Path: path,
	}
	s.dirty = true
	p := *s.project
	return &p, nil
}

func (s *Simulator) SaveProject() (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	s.dirty = false
	p := *s.project
	return &p, nil
}

func (s *Simulator) SaveProjectAs(path string) (*Project, error) {
	if path == "" {
		return nil, errors.New("project path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	s.project.Path = path
	s.project.Name = projectNameFromPath(path)
	s.dirty = false
	p := *s.project
	return &p, nil
}

func (s *Simulator) CloseProject(_ map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}
	s.project = nil
	s.resetProjectState()
	return nil
}

// resetProjectState clears per-project state; callers hold the lock.
func (s *Simulator) resetProjectState() {
	s.sequences = make(map[string]*Sequence)
	s.sequenceOrder = nil
	s.activeSequence = ""
	s.playerPosition = 0
	s.dirty = false
}

func (s *Simulator) ActiveSequence() (*Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	seq, ok := s.sequences[s.activeSequence]
	if !ok {
		return nil, ErrNoActiveSequence
	}
	out := *seq
	return &out, nil
}

func (s *Simulator) CreateSequence(name, presetPath string) (*Sequence, error) {
	if name == "" {
		return nil, errors.New("sequence name is required")
	}
	_ = presetPath // the simulator has no presets to apply
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	return s.addSequenceLocked(name), nil
}

func (s *Simulator) CreateSequenceFromMedia(name string, clipProjectItems []string, _ string) (*Sequence, error) {
	if name == "" {
		return nil, errors.New("sequence name is required")
	}
	if len(clipProjectItems) == 0 {
		return nil, errors.New("at least one clip project item is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	return s.addSequenceLocked(name), nil
}

// addSequenceLocked creates a sequence and makes it active; callers hold the
// lock.
func (s *Simulator) addSequenceLocked(name string) *Sequence {
	seq := &Sequence{
		ID:   uuid.NewString(),
		Name: name,
	}
	s.sequences[seq.ID] = seq
	s.sequenceOrder = append(s.sequenceOrder, seq.ID)
	s.activeSequence = seq.ID
	s.playerPosition = 0
	s.dirty = true
	out := *seq
	return &out
}

func (s *Simulator) SetActiveSequence(sequenceID string) (*Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	seq, ok := s.sequences[sequenceID]
	if !ok {
		return nil, fmt.Errorf("sequence not found: %s", sequenceID)
	}
	s.activeSequence = sequenceID
	s.playerPosition = 0
	out := *seq
	return &out, nil
}

func (s *Simulator) SequenceList() ([]Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	list := make([]Sequence, 0, len(s.sequenceOrder))
	for _, id := range s.sequenceOrder {
		list = append(list, *s.sequences[id])
	}
	return list, nil
}

func (s *Simulator) PlayerPosition() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return 0, ErrNoProject
	}
	if _, ok := s.sequences[s.activeSequence]; !ok {
		return 0, ErrNoActiveSequence
	}
	return s.playerPosition, nil
}

func (s *Simulator) SetPlayerPosition(position float64) error {
	if position < 0 {
		return errors.New("position must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}
	if _, ok := s.sequences[s.activeSequence]; !ok {
		return ErrNoActiveSequence
	}
	s.playerPosition = position
	return nil
}

func (s *Simulator) ImportFiles(filePaths []string, _ bool, targetBin string, _ bool) (*ImportResult, error) {
	if len(filePaths) == 0 {
		return nil, errors.New("at least one file path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	s.dirty = true
	return &ImportResult{
		Imported:  append([]string(nil), filePaths...),
		TargetBin: targetBin,
	}, nil
}

func (s *Simulator) ImportSequences(projectPath string, sequenceIDs []string) (*ImportResult, error) {
	if projectPath == "" {
		return nil, errors.New("project path is required")
	}
	if len(sequenceIDs) == 0 {
		return nil, errors.New("at least one sequence ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	imported := make([]string, 0, len(sequenceIDs))
	for _, id := range sequenceIDs {
		seq := s.addSequenceLocked(fmt.Sprintf("%s (%s)", projectNameFromPath(projectPath), id))
		imported = append(imported, seq.ID)
	}
	return &ImportResult{Imported: imported}, nil
}

func (s *Simulator) ImportAEComps(aepPath string, compNames []string, targetBin string) (*ImportResult, error) {
	if aepPath == "" {
		return nil, errors.New("composition project path is required")
	}
	if len(compNames) == 0 {
		return nil, errors.New("at least one composition name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	s.dirty = true
	return &ImportResult{
		Imported:  append([]string(nil), compNames...),
		TargetBin: targetBin,
	}, nil
}

func (s *Simulator) ImportAllAEComps(aepPath string, targetBin string) (*ImportResult, error) {
	if aepPath == "" {
		return nil, errors.New("composition project path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, ErrNoProject
	}
	s.dirty = true
	// The simulator has no .aep parser; it pretends the file held one comp.
	return &ImportResult{
		Imported:  []string{projectNameFromPath(aepPath)},
		TargetBin: targetBin,
	}, nil
}
