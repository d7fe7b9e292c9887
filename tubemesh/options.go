package tubemesh

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Options configure mesh generation. Segment keys in AroundCounts and
// FixedElementsCountAlong are indexes into network.Segments().
type Options struct {
	// ElementsCountAround is the default number of elements around a tube.
	ElementsCountAround int `validate:"min=4"`
	// AroundCounts overrides ElementsCountAround per segment.
	AroundCounts map[int]int `validate:"omitempty,dive,min=4"`
	// Wall selects 3D elements between the inner and outer layer, which
	// requires inner layer path parameters for every segment.
	Wall                     bool
	ElementsCountThroughWall int `validate:"min=1"`
	// TargetElementLength along tubes. If 0, it is derived from
	// ElementDensityAlongLongestSegment.
	TargetElementLength               float64 `validate:"gte=0"`
	ElementDensityAlongLongestSegment float64 `validate:"gt=0"`
	// FixedElementsCountAlong overrides the element count along per segment.
	FixedElementsCountAlong map[int]int `validate:"omitempty,dive,min=1"`
	// Radius scales the tube cross sections given by path directors d2, d3.
	Radius float64 `validate:"gt=0"`
	// PhaseAngle in degrees of the first node around, measured from d2 towards d3.
	PhaseAngle float64 `validate:"gte=-360,lte=360"`
	// AlignmentSearchLimit caps the number of offset combinations searched
	// exhaustively when aligning tubes at a junction.
	AlignmentSearchLimit int `validate:"min=1"`
	FirstNodeID          int `validate:"min=1"`
	FirstElementID       int `validate:"min=1"`
}

// DefaultOptions returns options for 2D tubes of 8 elements around.
func DefaultOptions() Options {
	return Options{
		ElementsCountAround:               8,
		ElementsCountThroughWall:          1,
		ElementDensityAlongLongestSegment: 4.0,
		Radius:                            1.0,
		AlignmentSearchLimit:              200000,
		FirstNodeID:                       1,
		FirstElementID:                    1,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("tube mesh options: %w", err)
	}
	return nil
}

// aroundCount is the number of elements around segment s.
func (o Options) aroundCount(s int) int {
	if c, ok := o.AroundCounts[s]; ok {
		return c
	}
	return o.ElementsCountAround
}

// throughWall is the number of element layers through the wall, 0 for 2D.
func (o Options) throughWall() int {
	if o.Wall {
		return o.ElementsCountThroughWall
	}
	return 0
}
