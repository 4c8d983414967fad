package loom

import "go.uber.org/zap"

// Config holds process-wide defaults, mirroring the teacher's package-level
// config singleton. Unlike the teacher's table.TableEvents hook, the only
// global knob loom needs is a default logger -- everything else (locks,
// schema, archetypes) is World-scoped per spec.md §9's "no process-global
// state" note.
var Config config = config{Logger: zap.NewNop()}

type config struct {
	Logger *zap.Logger
}

// SetLogger installs the process-wide default logger used by any World
// built with NewWorld and no explicit WithLogger option.
func (c *config) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.Logger = l
}

// WorldOption configures a World at construction time.
type WorldOption func(*worldOptions)

type worldOptions struct {
	logger *zap.Logger
}

// WithLogger overrides the world's logger; defaults to Config.Logger.
func WithLogger(l *zap.Logger) WorldOption {
	return func(o *worldOptions) { o.logger = l }
}
