package args

import (
	stderrors "errors"
	"testing"
)

func TestNewSignature_Valid(t *testing.T) {
	sig, err := NewSignature(Pos("x"), Opt("scale", 1), Rest("more"), Kw("mode"), Extra("opts"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sig.HasVariadic() || !sig.HasVarKeyword() {
		t.Error("expected variadic and var-keyword parameters")
	}
	if got := sig.String(); got != "(x, scale=1, *more, mode, **opts)" {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestNewSignature_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
	}{
		{"empty name", []Param{Pos("")}},
		{"duplicate", []Param{Pos("x"), Pos("x")}},
		{"positional after variadic", []Param{Rest("a"), Pos("x")}},
		{"required after default", []Param{Opt("a", 1), Pos("b")}},
		{"two var-keyword", []Param{Extra("a"), Extra("b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSignature(tt.params...)
			if !stderrors.Is(err, ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

func TestMustSignature_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustSignature(Pos("x"), Pos("x"))
}

func TestSignature_Param(t *testing.T) {
	sig := Names("a", "b")
	p, ok := sig.Param("b")
	if !ok || p.Kind != Positional {
		t.Fatalf("expected positional b, got %+v (%v)", p, ok)
	}
	if _, ok := sig.Param("c"); ok {
		t.Error("did not expect parameter c")
	}
	if len(sig.Params()) != 2 {
		t.Errorf("expected 2 params, got %d", len(sig.Params()))
	}
}

func TestKind_String(t *testing.T) {
	if KeywordOnly.String() != "keyword-only" {
		t.Errorf("unexpected %q", KeywordOnly.String())
	}
	if Kind(9).String() != "kind(9)" {
		t.Errorf("unexpected %q", Kind(9).String())
	}
}
