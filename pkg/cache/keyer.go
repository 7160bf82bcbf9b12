package cache

// DiagramKeyOpts carries the extraction settings that affect the
// extracted diagram and therefore belong in its cache key.
type DiagramKeyOpts struct {
	ProximityTolerance float64 `json:"proximity_tolerance"`
	DiagramType        string  `json:"diagram_type,omitempty"`
	Title              string  `json:"title,omitempty"`
}

// ArtifactKeyOpts carries the render settings that affect one artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Layout string `json:"layout"`
}

// Keyer generates cache keys for the two cacheable stages.
type Keyer interface {
	// DiagramKey generates a key for an extracted diagram, from the hash
	// of the raw scene plus the extraction options.
	DiagramKey(sceneHash string, opts DiagramKeyOpts) string

	// ArtifactKey generates a key for one rendered artifact, from the
	// hash of the diagram plus the render options.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DiagramKey generates a key for an extracted diagram.
func (k *DefaultKeyer) DiagramKey(sceneHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", sceneHash, opts)
}

// ArtifactKey generates a key for one rendered artifact.
func (k *DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", diagramHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so several tenants or test
// runs can share one backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DiagramKey generates a prefixed diagram key.
func (k *ScopedKeyer) DiagramKey(sceneHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(sceneHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(diagramHash, opts)
}
