// Package formats provides parsers for the third-party 3D asset formats
// consumed by the engine: Wavefront OBJ geometry with MTL material
// libraries, and legacy 3D Studio (.3ds) chunked binaries.
package formats

// Note: the text directive reader shared by OBJ and MTL lives in directive.go
// Note: bounding volume computation shared by both formats lives in bounds.go
