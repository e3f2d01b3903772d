// Package recipe bundles ingredients into ready-to-eat bowls.
//
// A recipe is the only way applications are expected to interact with the
// pipeline: it fixes the ingredient order once, so every tool built on the
// stock recipe behaves the same way.
package recipe

import "github.com/roach88/guac"

// Recipe produces the ordered ingredient list for one kind of application.
type Recipe interface {
	// Ingredients returns initialized ingredients in pipeline order.
	Ingredients() []guac.Ingredient
}

// Prepare builds a single-use bowl from a recipe.
func Prepare(r Recipe) *guac.Bowl {
	return guac.NewBowl(r.Ingredients()...)
}

// Main prepares a bowl and eats it, returning the process exit code. A
// nil argv means os.Args[1:].
func Main(r Recipe, argv []string) int {
	return Prepare(r).Eat(argv)
}
