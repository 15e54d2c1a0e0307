package csg

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OpKind names a recorded kernel operation.
type OpKind string

const (
	OpBox         OpKind = "box"
	OpCylinder    OpKind = "cylinder"
	OpExtrude     OpKind = "extrude"
	OpFillet      OpKind = "fillet"
	OpChamfer     OpKind = "chamfer"
	OpShell       OpKind = "shell"
	OpJoin        OpKind = "join"
	OpCut         OpKind = "cut"
	OpIntersect   OpKind = "intersect"
	OpCopy        OpKind = "copy"
	OpRemove      OpKind = "remove"
	OpRectPattern OpKind = "rect-pattern"
	OpCircPattern OpKind = "circ-pattern"
	OpMirror      OpKind = "mirror"
)

// Op is one recorded kernel call. Body references are kernel IDs.
type Op struct {
	Seq     int                `yaml:"seq"`
	Kind    OpKind             `yaml:"op"`
	Name    string             `yaml:"name,omitempty"`
	Target  string             `yaml:"target,omitempty"`
	Tools   []string           `yaml:"tools,omitempty"`
	Results []string           `yaml:"results,omitempty"`
	Query   string             `yaml:"query,omitempty"`
	Profile string             `yaml:"profile,omitempty"`
	Keep    bool               `yaml:"keep,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`
}

// Program is the ordered sequence of operations that builds a solid.
type Program struct {
	Ops []Op `yaml:"ops"`
}

// Count returns the number of ops of the given kind.
func (p Program) Count(kind OpKind) int {
	n := 0
	for _, op := range p.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the ops of the given kind in program order.
func (p Program) Filter(kind OpKind) []Op {
	var ops []Op
	for _, op := range p.Ops {
		if op.Kind == kind {
			ops = append(ops, op)
		}
	}
	return ops
}

// Normalized returns a copy of p with body IDs replaced by short labels
// numbered in order of first appearance. Two runs over identical input
// produce equal normalized programs.
func (p Program) Normalized() Program {
	labels := make(map[string]string)
	label := func(id string) string {
		if id == "" {
			return ""
		}
		l, ok := labels[id]
		if !ok {
			l = "b" + strconv.Itoa(len(labels)+1)
			labels[id] = l
		}
		return l
	}
	labelAll := func(ids []string) []string {
		if ids == nil {
			return nil
		}
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = label(id)
		}
		return out
	}
	out := Program{Ops: make([]Op, len(p.Ops))}
	for i, op := range p.Ops {
		op.Target = label(op.Target)
		op.Tools = labelAll(op.Tools)
		op.Results = labelAll(op.Results)
		params := make(map[string]float64, len(op.Params))
		for k, v := range op.Params {
			params[k] = v
		}
		op.Params = params
		out.Ops[i] = op
	}
	return out
}

// WriteYAML encodes the program as a YAML document.
func (p Program) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("csg: encode program: %w", err)
	}
	return enc.Close()
}

// ReadProgram decodes a program written by WriteYAML.
func ReadProgram(r io.Reader) (Program, error) {
	var p Program
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return Program{}, fmt.Errorf("csg: decode program: %w", err)
	}
	return p, nil
}
