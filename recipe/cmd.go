package recipe

import (
	"github.com/roach88/guac"
	"github.com/roach88/guac/ansi"
	"github.com/roach88/guac/cmdtree"
	"github.com/roach88/guac/crash"
	"github.com/roach88/guac/i18n"
	"github.com/roach88/guac/logging"
	"github.com/roach88/guac/parser"
	"github.com/roach88/guac/terminal"
	"github.com/roach88/guac/xdg"
)

// CommandRecipe is the stock recipe for running a command tree.
//
// The order is part of the contract: the tree builder comes first so every
// later ingredient can read the tree at its own added phase, the parser
// precedes the dispatcher, and the crash reporter is last so every other
// ingredient has had a chance to enrich the context before a report is
// rendered.
type CommandRecipe struct {
	Root cmdtree.Command
}

// Ingredients returns the stock ingredient list.
func (r CommandRecipe) Ingredients() []guac.Ingredient {
	return []guac.Ingredient{
		cmdtree.NewBuilder(r.Root),
		i18n.New(),
		xdg.New(),
		ansi.New(),
		logging.New(),
		terminal.New(),
		parser.New(),
		cmdtree.NewDispatcher(),
		crash.New(),
	}
}

// Run executes a root command with the stock recipe and returns the
// process exit code. Typical main functions are one line:
//
//	func main() { os.Exit(recipe.Run(&rootCmd{}, nil)) }
func Run(root cmdtree.Command, argv []string) int {
	return Main(CommandRecipe{Root: root}, argv)
}
