/*
Package dsl provides a Go DSL for programmatically constructing GenSON schemas.

It replaces hand-written JSON with a type-safe builder. A node's slot moves
through explicit states: every node starts Unset, and Seq, Branch or List
move it to exactly one shape. The builders returned for each shape only
expose the operations valid for it, so a sequence cannot grow branches.

Example usage:

	b := dsl.New()

	b.Node("town").
		Title(map[string]any{"type": "seq", "items": []any{"Town of ", map[string]any{"type": "ref", "to": "name"}}}).
		Prop("name", "Ada").
		Seq(dsl.Times("house", 2, 4), dsl.Title("Market"))

	b.Node("house").Title("House").
		Branch().
		Option(3, dsl.Key("garden")).
		Option(1)

	loader, err := b.Build()
	// ... pass loader to genson.New("", genson.WithLoader(loader))
*/
package dsl
