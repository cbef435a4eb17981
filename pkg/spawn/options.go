package spawn

import (
	loggerpkg "github.com/minhyannv/spawn-go/pkg/logger"
	"github.com/minhyannv/spawn-go/pkg/locale"
	"github.com/minhyannv/spawn-go/pkg/render"
	"github.com/minhyannv/spawn-go/pkg/runner"
	"github.com/minhyannv/spawn-go/pkg/session"
)

// Option configures optional runtime dependencies for Handler.
type Option func(*deps)

type deps struct {
	logger   loggerpkg.Logger
	runner   runner.Runner
	renderer render.Renderer
	store    *session.Store
	catalog  *locale.Catalog
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *deps) {
		d.logger = l
	}
}

// WithRunner replaces the process runner.
func WithRunner(r runner.Runner) Option {
	return func(d *deps) {
		d.runner = r
	}
}

// WithRenderer sets the renderer used when render_image is enabled.
func WithRenderer(r render.Renderer) Option {
	return func(d *deps) {
		d.renderer = r
	}
}

// WithStore shares a session directory store between handlers.
func WithStore(s *session.Store) Option {
	return func(d *deps) {
		d.store = s
	}
}

// WithCatalog pins the message catalog. The configured locale is ignored.
func WithCatalog(c *locale.Catalog) Option {
	return func(d *deps) {
		d.catalog = c
	}
}
