package prompt

// FragmentType categorizes a prompt fragment.
type FragmentType string

const (
	TypeSubject     FragmentType = "subject"
	TypeStyle       FragmentType = "style"
	TypeLighting    FragmentType = "lighting"
	TypeComposition FragmentType = "composition"
	TypeTechnique   FragmentType = "technique"
	TypeCustom      FragmentType = "custom"
)

// Fragment is a single weighted text tag inside a prompt.
// Text is the semantic identity used by diffing, not ID.
type Fragment struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Translation string       `json:"translation,omitempty"`
	Type        FragmentType `json:"type"`
	Weight      float64      `json:"weight"` // default 1.0, no enforced bounds
	IsLocked    bool         `json:"isLocked"`
}

// Parameter is an opaque generation-system setting (e.g. "--ar 16:9").
type Parameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Label string `json:"label"` // display name, e.g. "Aspect Ratio"
}

// Content holds the instruction data of a project.
type Content struct {
	Positive []Fragment  `json:"positive"`
	Negative []Fragment  `json:"negative"`
	Params   []Parameter `json:"params"`
}

// Project is the mutable working document that gets snapshotted.
// Description distinguishes "unset" (nil) from "empty" (pointer to "").
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	CoverURL    string   `json:"coverUrl,omitempty"`
	CreatedAt   int64    `json:"createdAt"` // Unix milliseconds
	UpdatedAt   int64    `json:"updatedAt"`
	Content     Content  `json:"content"`
	Tags        []string `json:"tags"`
	Starred     bool     `json:"starred"`
}

// Payload is the frozen capture of a project's content inside a snapshot.
type Payload struct {
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Positive    []Fragment  `json:"positive"`
	Negative    []Fragment  `json:"negative"`
	Params      []Parameter `json:"params"`
	Tags        []string    `json:"tags"`
}

// FullString caches the rendered prompt per target format.
// Never recomputed after snapshot creation; the source fragments are frozen.
type FullString struct {
	Midjourney      string `json:"midjourney"`
	StableDiffusion string `json:"stableDiffusion"`
}

// Metrics is user annotation attached to a snapshot. Unlike the payload it
// may be updated after creation.
type Metrics struct {
	Rating         int     `json:"rating,omitempty"` // 1..5, 0 means unset
	ModelName      string  `json:"modelName"`
	GenerationTime float64 `json:"generationTime,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// Snapshot is an immutable, versioned capture of a project at a point in
// time. Payload never changes after creation; only Metrics, ImageURL and
// ImageFile may be mutated (annotation, not history rewriting).
type Snapshot struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	Version    int        `json:"version"` // >=1, per-project creation order
	Payload    Payload    `json:"snapshot"`
	FullString FullString `json:"fullString"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	ImageFile  string     `json:"imageFile,omitempty"`
	Metrics    *Metrics   `json:"metrics,omitempty"`
	CreatedAt  int64      `json:"createdAt"`
}

// Settings holds application preferences persisted alongside the data.
type Settings struct {
	DefaultModel string `json:"defaultModel"` // midjourney, stable-diffusion, dalle
	Theme        string `json:"theme"`        // light, dark, auto
	AutoSave     bool   `json:"autoSave"`
	ShowTutorial bool   `json:"showTutorial"`
}

// DefaultSettings returns the settings used for a fresh state.
func DefaultSettings() Settings {
	return Settings{
		DefaultModel: "midjourney",
		Theme:        "auto",
		AutoSave:     true,
		ShowTutorial: true,
	}
}

// State is the whole persisted blob. It is read and written as one unit;
// the shape must stay stable for import/export compatibility.
type State struct {
	Projects  []Project  `json:"projects"`
	Snapshots []Snapshot `json:"snapshots"`
	Settings  Settings   `json:"settings"`
}

// NewState returns an empty state with default settings.
func NewState() *State {
	return &State{
		Projects:  []Project{},
		Snapshots: []Snapshot{},
		Settings:  DefaultSettings(),
	}
}
