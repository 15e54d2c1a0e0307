package gridfinity

// stage is one optional step of a composer pipeline.
type stage struct {
	name string
	// enabled reports whether the stage runs. Nil means always.
	enabled func() bool
	run     func() error
}

// runStages runs stages in order. The first failure aborts the pipeline.
func (g *Generator) runStages(composer string, stages []stage) error {
	for _, s := range stages {
		if s.enabled != nil && !s.enabled() {
			g.log.Debug().Str("composer", composer).Str("stage", s.name).Bool("skip", true).Msg("stage")
			continue
		}
		if err := s.run(); err != nil {
			g.log.Error().Str("composer", composer).Str("stage", s.name).Err(err).Msg("stage failed")
			return &StageError{Composer: composer, Stage: s.name, Err: err}
		}
		g.log.Debug().Str("composer", composer).Str("stage", s.name).Msg("stage")
	}
	return nil
}
