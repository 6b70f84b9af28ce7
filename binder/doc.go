// Package binder fills request structs from HTTP requests. Each binder reads
// one source: JSON reads the body, Path reads router parameters through
// `path:"name"` tags.
package binder
