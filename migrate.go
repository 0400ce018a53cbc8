package deck

import (
	"slices"

	"github.com/samber/lo"

	"github.com/sky-flux/deck/content"
)

// Templates returns the content of every item, pool first then recall.
func (f *Facade[T, S]) Templates() []content.Template {
	return lo.Map(slices.Concat(f.pool.entries, f.recall), func(e entry[T], _ int) content.Template {
		return e.Task.Template()
	})
}

// Migrate rebuilds src under another algorithm. Only templates carry over:
// each item is recreated with factory under a new ID, the shared state
// starts from its defaults, and all review history is dropped. The name and
// target retention are kept. Without opts the new facade inherits the
// clock, random source, lookahead and logger of src.
//
// The destination types must be given explicitly:
//
//	dst, err := deck.Migrate[*leitner.Card, leitner.Schedule](src, leitner.NewCard)
func Migrate[U Item[U, S2], S2 any, T Item[T, S], S any](src *Facade[T, S], factory Factory[U], opts ...Option) (*Facade[U, S2], error) {
	dst, err := New[U, S2](src.name, src.retention, factory, append([]Option{inheritOptions(src.opts)}, opts...)...)
	if err != nil {
		return nil, err
	}
	for _, tmpl := range src.Templates() {
		dst.Create(tmpl)
	}
	dst.log.Debug().Int("items", dst.Len()).Msg("migrated deck")
	return dst, nil
}
