// Package formats provides parsers for the binary asset formats the sketch
// loads: binary FBX scenes and Radiance RGBE images.
package formats
