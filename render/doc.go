// Package render turns pipelines into text: Graphviz DOT for diagrams and
// plan or run tables for terminals and Markdown.
//
//	fmt.Println(render.DOT(p))
//	fmt.Println(render.Plan(p, render.ASCII))
//	fmt.Println(render.Run(result, render.Markdown))
package render
