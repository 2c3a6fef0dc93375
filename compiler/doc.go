/*

Process of compilation

Jack Source Text ->
	lex ->
Tokens ->
	parse ->
Abstract Syntax Tree (ast, one class per file) ->
	format ->
Parse Tree (xml)

Abstract Syntax Tree ->
	back (with symtab) ->
Stack Machine Instructions (vm)

*/
package compiler
