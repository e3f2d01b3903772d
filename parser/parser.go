// Package parser adapts spf13/pflag to the command tree.
//
// The ingredient builds one flag set per tree node at the build-parser
// phase, then at the parse phase walks argv selecting sub-commands by
// name. Its one obligation to the dispatcher is writing the ordered chain
// of selected command instances under cmdtree.KeyChain.
//
// Help, version and usage errors are clean short-circuits: they print and
// return a *guac.ExitError before the dispatch phase ever runs, so the
// process still exits through the ordinary code path.
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/roach88/guac"
	"github.com/roach88/guac/cmdtree"
)

// Context keys owned by this package.
const (
	// KeyArgs holds the []string positional arguments left after the last
	// selected command consumed its flags.
	KeyArgs = "parser.args"

	// KeyEarlyArgs holds the EarlyArgs from the pre-parse scan.
	KeyEarlyArgs = "parser.early_args"
)

// EarlyArgs is the result of the cheap pre-parse scan. It exists so later
// phases can skip work (e.g. not instantiating heavyweight resources when
// the user only asked for --help).
type EarlyArgs struct {
	Help    bool
	Version bool
	Rest    []string
}

// ArgumentRegistrar is implemented by commands that declare flags. The
// parser calls it once per node while building the grammar; commands
// typically bind flag values to their own fields.
type ArgumentRegistrar interface {
	RegisterArguments(fs *pflag.FlagSet)
}

// Ingredient is the pflag argument adapter.
//
// Context keys read: cmdtree.KeyTree, guac.KeyArgv.
// Context keys written: KeyEarlyArgs, cmdtree.KeyChain, KeyArgs.
type Ingredient struct {
	guac.Base

	// Stdout and Stderr default to the process streams; tests override.
	Stdout io.Writer
	Stderr io.Writer

	flags map[*cmdtree.Node]*pflag.FlagSet
}

// New creates the parser ingredient.
func New() *Ingredient {
	return &Ingredient{Stdout: os.Stdout, Stderr: os.Stderr}
}

// BuildEarlyParser is a no-op: the early grammar is fixed (help, version,
// rest) and needs no construction step. The phase is kept so ingredients
// that extend the early grammar have a defined slot.
func (p *Ingredient) BuildEarlyParser(ctx *guac.Context) error {
	return nil
}

// Preparse scans argv for --help and --version without tree knowledge and
// stores the result under KeyEarlyArgs.
func (p *Ingredient) Preparse(ctx *guac.Context) error {
	argv := argvFromContext(ctx)
	early := EarlyArgs{}
	for _, arg := range argv {
		switch arg {
		case "--":
			ctx.Set(KeyEarlyArgs, early)
			return nil
		case "-h", "--help":
			early.Help = true
		case "--version":
			early.Version = true
		default:
			early.Rest = append(early.Rest, arg)
		}
	}
	ctx.Set(KeyEarlyArgs, early)
	return nil
}

// BuildParser creates one flag set per tree node and lets each command
// register its arguments.
func (p *Ingredient) BuildParser(ctx *guac.Context) error {
	tree, err := cmdtree.TreeFromContext(ctx)
	if err != nil {
		return err
	}
	p.flags = make(map[*cmdtree.Node]*pflag.FlagSet)
	p.buildNode(tree, true)
	return nil
}

func (p *Ingredient) buildNode(node *cmdtree.Node, root bool) {
	fs := pflag.NewFlagSet(node.Name, pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.BoolP("help", "h", false, "show this help and exit")
	if root && node.Command.Info().Version != "" {
		fs.Bool("version", false, "show the version and exit")
	}
	if reg, ok := node.Command.(ArgumentRegistrar); ok {
		reg.RegisterArguments(fs)
	}
	p.flags[node] = fs
	for _, child := range node.Children {
		p.buildNode(child, false)
	}
}

// Parse walks argv against the tree, consuming each selected command's
// flags and descending into sub-commands by name. The selected chain goes
// to cmdtree.KeyChain and the leftover positionals to KeyArgs.
func (p *Ingredient) Parse(ctx *guac.Context) error {
	tree, err := cmdtree.TreeFromContext(ctx)
	if err != nil {
		return err
	}
	if p.flags == nil {
		return guac.Configf("parser: Parse ran before BuildParser")
	}
	prog := progName(tree)
	chain := []cmdtree.Command{tree.Command}
	path := []string{prog}
	node := tree
	args := argvFromContext(ctx)

	for {
		fs := p.flags[node]
		if err := fs.Parse(args); err != nil {
			fmt.Fprintf(p.Stderr, "%s: error: %v\n", prog, err)
			fmt.Fprintf(p.Stderr, "Try '%s --help' for more information.\n", joinPath(path))
			return guac.Exitf(guac.ExitUsageError, "cannot parse arguments: %v", err)
		}
		if help, _ := fs.GetBool("help"); help {
			p.printHelp(ctx, node, path, fs)
			return guac.Exit(guac.ExitSuccess)
		}
		if node == tree {
			if version, err := fs.GetBool("version"); err == nil && version {
				fmt.Fprintf(p.Stdout, "%s %s\n", prog, tree.Command.Info().Version)
				return guac.Exit(guac.ExitSuccess)
			}
		}
		rest := fs.Args()
		if len(node.Children) > 0 && len(rest) > 0 {
			child := node.Child(rest[0])
			if child == nil {
				fmt.Fprintf(p.Stderr, "%s: error: unknown command %q\n", prog, rest[0])
				fmt.Fprintf(p.Stderr, "Try '%s --help' for more information.\n", joinPath(path))
				return guac.Exitf(guac.ExitUsageError, "unknown command %q", rest[0])
			}
			chain = append(chain, child.Command)
			path = append(path, child.Name)
			node = child
			args = rest[1:]
			continue
		}
		ctx.Set(cmdtree.KeyChain, chain)
		ctx.Set(KeyArgs, rest)
		return nil
	}
}

func argvFromContext(ctx *guac.Context) []string {
	if v, err := ctx.Get(guac.KeyArgv); err == nil {
		if argv, ok := v.([]string); ok {
			return argv
		}
	}
	return nil
}

// progName resolves the executable's display name: the root command's
// declared name, a name derived from its type, or the process name.
func progName(tree *cmdtree.Node) string {
	if name := tree.Command.Info().Name; name != "" {
		return name
	}
	if name, err := cmdtree.DeriveName(tree.Command); err == nil {
		return name
	}
	return filepath.Base(os.Args[0])
}
