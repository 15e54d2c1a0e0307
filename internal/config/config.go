// Package config loads generation jobs from YAML files.
//
// A job names what to build and overrides any of the standard parameters:
//
//	kind: bin
//	material: pla
//	bin:
//	  width: 2
//	  length: 1
//	  height: 3
//	  compartments_x: 2
//
// Parameters left out keep their standard values. A bin without an
// explicit compartment list is divided uniformly over its compartment grid.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/soypat/gridfinity"
	"github.com/soypat/gridfinity/matter"
	"gopkg.in/yaml.v3"
)

// Kind selects the composer a job runs.
type Kind string

const (
	KindBaseplate Kind = "baseplate"
	KindBin       Kind = "bin"
)

// UnmarshalYAML rejects unknown kinds.
func (k *Kind) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	switch Kind(s) {
	case KindBaseplate, KindBin:
		*k = Kind(s)
		return nil
	}
	return fmt.Errorf("line %d: unknown kind %q, want %q or %q", n.Line, s, KindBaseplate, KindBin)
}

// Job is one generation request.
type Job struct {
	Kind Kind `yaml:"kind"`
	// Material, when set, enlarges holes to compensate print shrinkage.
	Material  string                   `yaml:"material,omitempty"`
	Baseplate gridfinity.BaseplateSpec `yaml:"baseplate"`
	Bin       gridfinity.BinSpec       `yaml:"bin"`
	// Depth is the default depth of uniform compartments.
	Depth float64 `yaml:"compartment_depth,omitempty"`
}

func defaultJob() Job {
	bin := gridfinity.DefaultBinSpec(1, 1, 3)
	bin.Compartments = nil
	return Job{
		Baseplate: gridfinity.DefaultBaseplateSpec(1, 1),
		Bin:       bin,
	}
}

// Load reads the job file at path.
func Load(path string) (Job, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Job{}, err
	}
	defer fp.Close()
	job, err := Parse(fp)
	if err != nil {
		return Job{}, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// Parse decodes a job from r and applies defaults and material
// compensation.
func Parse(r io.Reader) (Job, error) {
	job := defaultJob()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if job.Kind == "" {
		return Job{}, fmt.Errorf("job has no kind")
	}
	if job.Bin.Compartments == nil {
		job.Bin.Compartments = gridfinity.UniformCompartments(job.Bin.CompartmentsX, job.Bin.CompartmentsY, job.Depth)
	}
	if job.Material != "" {
		m, err := matter.Lookup(job.Material)
		if err != nil {
			return Job{}, err
		}
		job.compensate(m)
	}
	return job, nil
}

// compensate enlarges every hole of the job for material m.
func (job *Job) compensate(m matter.ViscousMaterial) {
	bp := &job.Baseplate
	for _, d := range []*float64{
		&bp.MagnetCutoutDiameter, &bp.ScrewHoleDiameter,
		&bp.ScrewHeadCutoutDiameter, &bp.ConnectionHoleDiameter,
		&job.Bin.MagnetCutoutDiameter, &job.Bin.ScrewHoleDiameter,
	} {
		*d = m.InternalDimScale(*d)
	}
}

// Validate checks the spec the job builds.
func (job Job) Validate() error {
	if job.Kind == KindBaseplate {
		return job.Baseplate.Validate()
	}
	return job.Bin.Validate()
}
