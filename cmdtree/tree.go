package cmdtree

import (
	"fmt"
	"strings"

	"github.com/roach88/guac"
)

// Context keys owned by this package.
const (
	// KeyTree holds the *Node tree root, written by the Builder at the
	// added phase.
	KeyTree = "cmdtree.tree"

	// KeyChain holds the []Command dispatch chain, written by the
	// argument adapter before the dispatch phase. It always starts with
	// the root command.
	KeyChain = "cmdtree.chain"
)

// Node is one command instance in the built tree. The root node has an
// empty name; every other node has a non-empty name unique among its
// siblings. Nodes are immutable after Build returns.
type Node struct {
	Name     string
	Command  Command
	Children []*Node
}

// Child returns the child with the given effective name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Build instantiates the declared command tree rooted at root. Factories
// run exactly once per node, in declaration order. Declaration faults
// (nil factories, name collisions among siblings, underivable names) are
// *guac.ConfigError values.
func Build(root Command) (*Node, error) {
	if root == nil {
		return nil, guac.Configf("root command is nil")
	}
	return buildNode("", root)
}

func buildNode(name string, cmd Command) (*Node, error) {
	node := &Node{Name: name, Command: cmd}
	seen := make(map[string]struct{})
	for i, sub := range cmd.Info().SubCommands {
		if sub.New == nil {
			return nil, guac.Configf("sub-command %d of %T has a nil factory", i, cmd)
		}
		child := sub.New()
		if child == nil {
			return nil, guac.Configf("sub-command %d of %T: factory returned nil", i, cmd)
		}
		childName, err := effectiveName(sub, child)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[childName]; dup {
			return nil, guac.Configf("duplicate sub-command name %q under %T", childName, cmd)
		}
		seen[childName] = struct{}{}
		childNode, err := buildNode(childName, child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// effectiveName resolves a child's name: explicit override, then the
// child's own declared name, then a name derived from its type.
func effectiveName(sub SubCommand, child Command) (string, error) {
	if sub.Name != "" {
		return sub.Name, nil
	}
	if name := child.Info().Name; name != "" {
		return name, nil
	}
	return DeriveName(child)
}

// Outline renders a deterministic textual outline of the tree, one node
// per line, children indented under their parent. Used for debugging and
// golden comparisons.
func Outline(root *Node) string {
	var b strings.Builder
	outline(&b, root, 0)
	return b.String()
}

func outline(b *strings.Builder, n *Node, depth int) {
	fmt.Fprintf(b, "%s%q %T\n", strings.Repeat("  ", depth), n.Name, n.Command)
	for _, c := range n.Children {
		outline(b, c, depth+1)
	}
}

// Builder is the ingredient that builds the command tree at the added
// phase and registers the root command's spices on the bowl. It must come
// before the argument adapter in a recipe.
//
// Context keys written: KeyTree.
type Builder struct {
	guac.Base
	root Command
}

// NewBuilder creates a Builder for the given root command instance.
func NewBuilder(root Command) *Builder {
	return &Builder{root: root}
}

// Added builds the tree, stores it in the context and collects the root
// command's feature flags. This is a one-time, run-start side effect.
func (b *Builder) Added(ctx *guac.Context) error {
	tree, err := Build(b.root)
	if err != nil {
		return err
	}
	ctx.Set(KeyTree, tree)
	for _, spice := range b.root.Info().Spices {
		ctx.Bowl().AddSpice(spice)
	}
	return nil
}

// TreeFromContext returns the built tree, or a configuration error when
// the Builder did not run.
func TreeFromContext(ctx *guac.Context) (*Node, error) {
	v, err := ctx.Get(KeyTree)
	if err != nil {
		return nil, guac.Configf("command tree missing; is the Builder ingredient in the recipe? (%v)", err)
	}
	tree, ok := v.(*Node)
	if !ok {
		return nil, guac.Configf("context key %q holds %T, want *cmdtree.Node", KeyTree, v)
	}
	return tree, nil
}
