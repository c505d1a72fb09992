// Package shader holds the vertex/fragment GLSL source and the full-screen
// quad geometry every OutputRenderer compiles against. The shader pair is
// small and fixed, so it lives as compile-time constants rather than files
// loaded off disk.
package shader

// VertexSource passes clip-space position through untouched and forwards
// the texcoord to the fragment stage.
const VertexSource = `#version 400 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aTexCoord;

out vec2 vTexCoord;

void main() {
    vTexCoord = aTexCoord;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
`

// FragmentSource samples both bound textures and mixes them linearly by the
// ratio uniform. No depth, no blending, no stencil.
const FragmentSource = `#version 400 core
in vec2 vTexCoord;
out vec4 FragColor;

uniform sampler2D from;
uniform sampler2D to;
uniform float ratio;

void main() {
    vec4 a = texture(from, vTexCoord);
    vec4 b = texture(to, vTexCoord);
    FragColor = mix(a, b, ratio);
}
`

// QuadVertices interleaves clip-space position (x, y) and texcoord (u, v)
// for the four corners of a full-screen quad: top-left, top-right,
// bottom-right, bottom-left, clockwise. Texcoord (0,0) maps to top-left.
var QuadVertices = [...]float32{
	// x, y, u, v
	-1, 1, 0, 0, // top-left
	1, 1, 1, 0, // top-right
	1, -1, 1, 1, // bottom-right
	-1, -1, 0, 1, // bottom-left
}

// QuadIndices draws the quad as two triangles: (0,1,2) and (0,2,3).
var QuadIndices = [...]uint32{0, 1, 2, 0, 2, 3}
