/*
Package genson expands declarative schemas into procedurally generated trees.

A schema maps node keys to generation rules. Each node carries a title and a
line written in TGL (the Text Generation Language), optional props that its
descendants inherit, and a slot describing which children to produce: a bare
list of keys to pick from, a sequence of terms, or a set of weighted branches.

# Concept

Nothing is generated up front. The Accessor describes one node; its Expand
method produces the next level on demand, so arbitrarily deep (even
recursive) schemas can be drilled lazily. Every expansion runs in a lexical
scope chained to its parent, which is how props and TGL variables flow down
the tree. Given the same seed, the same schema always yields the same tree.

# Sources

A schema can be read from a single JSON or YAML document, from a directory of
Markdown/YAML/JSON documents (one per node, via Loam), from Redis, or built in
code with the dsl package.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/genson"
	)

	func main() {
		eng, err := genson.New("./world.yaml", genson.WithSeed(42))
		if err != nil {
			log.Fatal(err)
		}

		// 1. Describe the root (the first key of the document)
		root, err := eng.Accessor()("")
		if err != nil {
			log.Fatal(err)
		}

		// 2. Drill one level
		children, err := root.Expand(nil)
		if err != nil {
			log.Fatal(err)
		}
		for _, c := range children {
			fmt.Println(c.Title)
		}
	}
*/
package genson
