package centroid

// Analyzer turns a color frame into its connected groups, largest first.
type Analyzer interface {
	Analyze(frame ColorGrid) ([]Group, error)
}

// Pipeline binarizes a frame against a target color and groups the
// foreground pixels. It holds no per-frame state and is safe for concurrent
// use.
type Pipeline struct {
	binarizer *Binarizer
}

// NewPipeline creates a pipeline using Euclidean color distance.
func NewPipeline(target RGB, threshold float64) *Pipeline {
	return &Pipeline{binarizer: NewBinarizer(Euclidean{}, target, threshold)}
}

// NewPipelineWith creates a pipeline around an existing binarizer.
func NewPipelineWith(b *Binarizer) *Pipeline {
	return &Pipeline{binarizer: b}
}

// Binarizer returns the pipeline's binarizer.
func (p *Pipeline) Binarizer() *Binarizer { return p.binarizer }

// Analyze returns FindConnectedGroups(ToBinary(frame)).
func (p *Pipeline) Analyze(frame ColorGrid) ([]Group, error) {
	bin, err := p.binarizer.ToBinary(frame)
	if err != nil {
		return nil, err
	}
	return FindConnectedGroups(bin)
}

// Largest returns the centroid of the first group, or false when there are
// no groups.
func Largest(groups []Group) (Coordinate, bool) {
	if len(groups) == 0 {
		return Coordinate{}, false
	}
	return groups[0].Centroid, true
}
