// Package args binds call arguments to a declared parameter list.
//
// Go has no runtime parameter names, so every deferred call declares a
// Signature up front. Binding follows the usual positional-or-keyword rules:
// positional values fill positional parameters in order, overflow goes to a
// variadic parameter, keyword values bind by name, and unknown keywords land
// in a variadic-keyword parameter when one exists.
//
//	sig := args.MustSignature(args.Pos("x"), args.Opt("scale", 1), args.Rest("more"))
//	b, err := sig.Bind([]any{3}, map[string]any{"scale": 2})
//	pos, kw, err := b.Complete()
//
// Binding is partial: parameters may stay unbound until Complete, which fills
// defaults and reports anything still missing.
package args
