// Command gridfinity builds a baseplate or bin from a YAML job file.
//
// With the csg kernel the recorded operation program is written as YAML,
// ready to be replayed on a CAD kernel. The sdf kernel checks the
// composition evaluates and reports its bounds.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/soypat/gridfinity"
	"github.com/soypat/gridfinity/internal/config"
	"github.com/soypat/gridfinity/kernel"
	"github.com/soypat/gridfinity/kernel/csg"
	"github.com/soypat/gridfinity/sdf"
)

func main() {
	var (
		jobPath    = flag.String("config", "", "YAML job file")
		kernelName = flag.String("kernel", "csg", "solid kernel: csg or sdf")
		output     = flag.String("o", "-", "program output file for the csg kernel, - for stdout")
		verbose    = flag.Bool("v", false, "log every stage")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if *jobPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*jobPath, *kernelName, *output); err != nil {
		log.Fatal().Err(err).Msg("generation failed")
	}
}

func run(jobPath, kernelName, output string) error {
	job, err := config.Load(jobPath)
	if err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%s: %w", jobPath, err)
	}
	g, rec, err := newGenerator(kernelName)
	if err != nil {
		return err
	}
	var body kernel.Body
	switch job.Kind {
	case config.KindBaseplate:
		body, err = g.Baseplate(job.Baseplate)
	case config.KindBin:
		body, err = g.Bin(job.Bin)
	}
	if err != nil {
		return err
	}
	bb, err := g.Kernel().Bounds(body)
	if err != nil {
		return err
	}
	log.Info().Str("kind", string(job.Kind)).Str("material", job.Material).
		Floats64("min", []float64{bb.Min.X, bb.Min.Y, bb.Min.Z}).
		Floats64("max", []float64{bb.Max.X, bb.Max.Y, bb.Max.Z}).
		Msg("built")
	if rec == nil {
		return nil
	}
	return writeProgram(rec.Program(), output)
}

// newGenerator returns a generator on the named kernel. rec is set when
// the kernel records a program.
func newGenerator(kernelName string) (g *gridfinity.Generator, rec *csg.Kernel, err error) {
	var k kernel.Kernel
	switch kernelName {
	case "csg":
		rec = csg.New()
		k = rec
	case "sdf":
		k = sdf.New()
	default:
		return nil, nil, fmt.Errorf("unknown kernel %q", kernelName)
	}
	return gridfinity.New(k, gridfinity.WithLogger(log.Logger)), rec, nil
}

func writeProgram(p csg.Program, output string) error {
	var w io.Writer = os.Stdout
	if output != "-" {
		fp, err := os.Create(output)
		if err != nil {
			return err
		}
		defer fp.Close()
		w = fp
	}
	if err := p.WriteYAML(w); err != nil {
		return err
	}
	log.Info().Int("ops", len(p.Ops)).Str("output", output).Msg("program written")
	return nil
}
