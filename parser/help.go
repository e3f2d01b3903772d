package parser

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/roach88/guac"
	"github.com/roach88/guac/ansi"
	"github.com/roach88/guac/cmdtree"
)

// printHelp renders the help screen for one node: usage line, description,
// options, sub-command table, epilog. Section headers go through the ansi
// palette; with styling disabled the output is plain text.
func (p *Ingredient) printHelp(ctx *guac.Context, node *cmdtree.Node, path []string, fs *pflag.FlagSet) {
	pal := ansi.FromContext(ctx)
	info := node.Command.Info()
	out := p.Stdout

	fmt.Fprintf(out, "usage: %s\n", usageLine(info, path, node))
	if info.Description != "" {
		fmt.Fprintf(out, "\n%s\n", info.Description)
	}
	if usages := fs.FlagUsages(); usages != "" {
		fmt.Fprintf(out, "\n%s\n%s", pal.Title("options:"), usages)
	}
	if len(node.Children) > 0 {
		fmt.Fprintf(out, "\n%s\n", pal.Title("commands:"))
		width := 0
		for _, child := range node.Children {
			if len(child.Name) > width {
				width = len(child.Name)
			}
		}
		for _, child := range node.Children {
			help := child.Command.Info().Help
			if help == "" {
				fmt.Fprintf(out, "  %s\n", child.Name)
				continue
			}
			fmt.Fprintf(out, "  %-*s  %s\n", width, child.Name, pal.Muted(help))
		}
	}
	if info.Epilog != "" {
		fmt.Fprintf(out, "\n%s\n", info.Epilog)
	}
}

// usageLine computes the one-line syntax summary unless the command
// declared an explicit one.
func usageLine(info cmdtree.Info, path []string, node *cmdtree.Node) string {
	if info.Usage != "" {
		return info.Usage
	}
	line := joinPath(path) + " [options]"
	if len(node.Children) > 0 {
		line += " <command> [args]"
	}
	return line
}

func joinPath(path []string) string {
	return strings.Join(path, " ")
}
