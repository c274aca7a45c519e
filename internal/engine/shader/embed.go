package shader

import _ "embed"

// StandardVertexShader transforms meshes for the lit forward pass.
//
//go:embed glsl/standard.vert
var StandardVertexShader string

// StandardFragmentShader shades metallic-roughness materials with shadows.
//
//go:embed glsl/standard.frag
var StandardFragmentShader string

// DepthVertexShader transforms meshes into light space for the shadow pass.
//
//go:embed glsl/depth.vert
var DepthVertexShader string

// DepthFragmentShader writes depth only.
//
//go:embed glsl/depth.frag
var DepthFragmentShader string

// UIVertexShader places 2D overlay quads in screen coordinates.
//
//go:embed glsl/ui.vert
var UIVertexShader string

// UIFragmentShader fills overlay quads with a flat color or glyph coverage.
//
//go:embed glsl/ui.frag
var UIFragmentShader string
