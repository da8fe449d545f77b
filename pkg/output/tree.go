package output

import (
	"strings"

	"github.com/fatih/color"
	"github.com/sonemaro/finditor/pkg/logger"
)

// treeNode is one path segment. entry is nil for segments that were not
// themselves results.
type treeNode struct {
	name     string
	entry    *Entry
	children []*treeNode
	index    map[string]*treeNode
}

func (n *treeNode) child(name string) *treeNode {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := &treeNode{name: name, index: map[string]*treeNode{}}
	n.index[name] = c
	n.children = append(n.children, c)
	return c
}

// buildTree nests entries by path segment, keeping result order among siblings.
func buildTree(entries []Entry) *treeNode {
	root := &treeNode{index: map[string]*treeNode{}}

	for i := range entries {
		path := entries[i].Path
		node := root
		if strings.HasPrefix(path, "/") {
			node = root.child("/")
			path = strings.TrimPrefix(path, "/")
		}
		for _, segment := range strings.Split(path, "/") {
			if segment == "" {
				continue
			}
			node = node.child(segment)
		}
		node.entry = &entries[i]
	}

	return root
}

// formatTree formats the results in a tree-like structure
func (f *formatter) formatTree(entries []Entry) string {
	f.log.Debug("Formatting tree output")

	var builder strings.Builder
	root := buildTree(entries)

	dirColor := f.newColor(color.FgBlue, color.Bold)
	linkColor := f.newColor(color.FgCyan)

	for _, top := range root.children {
		f.formatTreeNode(&builder, top, "", true, true, dirColor, linkColor)
	}

	if f.config.WithStats {
		f.log.Debug("Adding statistics to output")
		builder.WriteString("\n")
		writeStatsText(&builder, f.calculateStats(entries))
	}

	return builder.String()
}

func (f *formatter) formatTreeNode(builder *strings.Builder, node *treeNode, prefix string, isLast, isRoot bool, dirColor, linkColor *color.Color) {
	f.log.WithFields(logger.Fields{
		"node":   node.name,
		"prefix": prefix,
		"isLast": isLast,
	}).Trace("Formatting tree node")

	if !isRoot {
		if isLast {
			builder.WriteString(prefix + "└── ")
		} else {
			builder.WriteString(prefix + "├── ")
		}
	}

	isDir := len(node.children) > 0 || (node.entry != nil && node.entry.Type == TypeDirectory)

	name := node.name
	switch {
	case node.entry != nil && node.entry.Type == TypeSymlink:
		name = linkColor.Sprint(name)
	case isDir:
		name = dirColor.Sprint(name)
	}
	builder.WriteString(name)
	if isDir && node.name != "/" {
		builder.WriteString("/")
	}
	if node.entry != nil && node.entry.Digest != "" {
		builder.WriteString("  [" + node.entry.Digest + "]")
	}
	builder.WriteString("\n")

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	for i, child := range node.children {
		f.formatTreeNode(builder, child, childPrefix, i == len(node.children)-1, false, dirColor, linkColor)
	}
}
