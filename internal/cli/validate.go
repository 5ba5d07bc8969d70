package cli

import (
	"io"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/internal/validator"
	"github.com/aretw0/capstan/pkg/recipe"
)

// Validate compiles the recipe and lints it for hooks and rollbacks that can never fire.
func Validate(opts Options, w io.Writer) error {
	engine, err := createEngine(opts, logging.NewNop(), io.Discard)
	if err != nil {
		return err
	}
	path, err := resolveRecipe(opts.RecipePath)
	if err != nil {
		return err
	}
	r, err := recipe.Load(path)
	if err != nil {
		return err
	}
	if err := validator.ValidateRecipe(r); err != nil {
		return err
	}
	printSystemMessage(w, "Recipe '%s' is valid (%d tasks).", engine.Name, len(engine.Tasks()))
	return nil
}
