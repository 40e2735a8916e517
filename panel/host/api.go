// Package host abstracts the video editor's scripting API. The relay treats
// every call as an opaque remote procedure; implementations own all editing
// semantics.
package host

// Project describes the project document the editor currently has open.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Sequence describes a timeline sequence inside the open project.
type Sequence struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImportResult reports which items an import operation added to the project.
type ImportResult struct {
	Imported  []string `json:"imported"`
	TargetBin string   `json:"targetBin,omitempty"`
}

// API is the surface the action dispatcher calls into. Methods return an
// error for anything the host refuses to do; the dispatcher stringifies it
// into the response envelope.
type API interface {
	ActiveProject() (*Project, error)
	OpenProject(path string, options map[string]interface{}) (*Project, error)
	CreateProject(path string) (*Project, error)
	SaveProject() (*Project, error)
	SaveProjectAs(path string) (*Project, error)
	CloseProject(options map[string]interface{}) error

	ActiveSequence() (*Sequence, error)
	CreateSequence(name, presetPath string) (*Sequence, error)
	CreateSequenceFromMedia(name string, clipProjectItems []string, targetBin string) (*Sequence, error)
	SetActiveSequence(sequenceID string) (*Sequence, error)
	SequenceList() ([]Sequence, error)
	PlayerPosition() (float64, error)
	SetPlayerPosition(position float64) error

	ImportFiles(filePaths []string, suppressUI bool, targetBin string, asNumberedStills bool) (*ImportResult, error)
	ImportSequences(projectPath string, sequenceIDs []string) (*ImportResult, error)
	ImportAEComps(aepPath string, compNames []string, targetBin string) (*ImportResult, error)
	ImportAllAEComps(aepPath string, targetBin string) (*ImportResult, error)
}
