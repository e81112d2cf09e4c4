// Package formats provides readers and writers for polygon mesh file formats.
package formats
