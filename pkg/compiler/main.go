// Package compiler provides the lexer, parser, type checker and code
// generator for a small imperative language with int and bool variables,
// assignment, if/else, while and print.
//
// Pipeline: source → Lex → Parse → Analyze → Generate → three-address code
package compiler
