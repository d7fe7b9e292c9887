package network

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/npillmayer/tubenet"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LayoutDocument is the YAML representation of a network layout.
type LayoutDocument struct {
	Structure     string         `yaml:"structure" validate:"required"`
	DefaultRadius float64        `yaml:"defaultRadius" validate:"gte=0"`
	Nodes         []NodeDocument `yaml:"nodes" validate:"dive"`
}

// NodeDocument holds the parameter versions of one node.
type NodeDocument struct {
	ID       int               `yaml:"id" validate:"required"`
	Versions []VersionDocument `yaml:"versions" validate:"required,min=1,dive"`
}

// VersionDocument holds the path parameters of one node version.
type VersionDocument struct {
	Version        int `yaml:"version" validate:"gte=0"`
	ParamsDocument `yaml:",inline"`
	Inner          *ParamsDocument `yaml:"inner" validate:"omitempty"`
}

// ParamsDocument holds path parameters as 3-component lists.
type ParamsDocument struct {
	X   []float64 `yaml:"x" validate:"len=3"`
	D1  []float64 `yaml:"d1" validate:"len=3"`
	D2  []float64 `yaml:"d2" validate:"len=3"`
	D3  []float64 `yaml:"d3" validate:"len=3"`
	D12 []float64 `yaml:"d12" validate:"omitempty,len=3"`
	D13 []float64 `yaml:"d13" validate:"omitempty,len=3"`
}

func vec(c []float64) tubenet.Vec3 {
	if len(c) != 3 {
		return tubenet.Vec3{}
	}
	return tubenet.V(c[0], c[1], c[2])
}

// PathParameters converts the document to path parameters.
func (p ParamsDocument) PathParameters() PathParameters {
	return PathParameters{
		X: vec(p.X), D1: vec(p.D1), D2: vec(p.D2), D3: vec(p.D3),
		D12: vec(p.D12), D13: vec(p.D13),
	}
}

// Load reads a network layout in YAML format: a structure string (see
// Parse) and path parameters per node version. Versions not listed get
// default layout parameters if defaultRadius is set.
func Load(r io.Reader) (*Network, error) {
	var doc LayoutDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("network layout: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("network layout: %w", err)
	}
	nw, err := Parse(doc.Structure)
	if err != nil {
		return nil, err
	}
	for _, nd := range doc.Nodes {
		for _, vd := range nd.Versions {
			version := vd.Version
			if version == 0 {
				version = 1
			}
			id := NodeID(nd.ID)
			if err := nw.SetPathParameters(id, version, Outer, vd.ParamsDocument.PathParameters()); err != nil {
				return nil, fmt.Errorf("network layout: %w", err)
			}
			if vd.Inner != nil {
				if err := nw.SetPathParameters(id, version, Inner, vd.Inner.PathParameters()); err != nil {
					return nil, fmt.Errorf("network layout: %w", err)
				}
			}
		}
	}
	if doc.DefaultRadius > 0 {
		n := nw.SetDefaultParameters(doc.DefaultRadius)
		tracer().Debugf("network layout: %d node versions from default layout", n)
	}
	return nw, nil
}
