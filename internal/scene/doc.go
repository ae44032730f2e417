// Package scene holds the scene settings record passed to the generation
// collaborator, expressed as enumerated types.
//
// The core never interprets these fields beyond validation; the generation
// package switches over them exhaustively when building directives. Style is
// the one open enum: the three house styles are named constants and any other
// non-empty string is accepted as a custom style.
package scene
