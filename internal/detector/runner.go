package detector

import (
	"fmt"

	"github.com/example/authguard/internal/media"
)

// Registry maps media categories to generator constructors.
type Registry map[media.Category]Factory

// Factory builds a generator instance.
type Factory func(opts Options) Generator

// DefaultRegistry contains the simulated generators.
var DefaultRegistry = Registry{
	media.Image: func(opts Options) Generator { return NewImageGenerator(opts) },
	media.Video: func(opts Options) Generator { return NewVideoGenerator(opts) },
	media.Audio: func(opts Options) Generator { return NewAudioGenerator(opts) },
	media.Text:  func(opts Options) Generator { return NewTextGenerator(opts) },
}

// Generator instantiates the generator registered for category.
func (r Registry) Generator(category media.Category, opts Options) (Generator, error) {
	factory, ok := r[category]
	if !ok {
		return nil, fmt.Errorf("no generator registered for %q", category)
	}
	return factory(opts), nil
}

// BuildGenerators instantiates generators for the provided categories,
// skipping duplicates.
func (r Registry) BuildGenerators(categories []media.Category, opts Options) ([]Generator, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	var generators []Generator
	seen := map[media.Category]struct{}{}
	for _, category := range categories {
		if _, dup := seen[category]; dup {
			continue
		}
		g, err := r.Generator(category, opts)
		if err != nil {
			return nil, err
		}
		seen[category] = struct{}{}
		generators = append(generators, g)
	}
	return generators, nil
}
