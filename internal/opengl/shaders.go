package opengl

import (
	"fmt"
	"strings"

	"ao-engine/hbao"
)

// Pixel rows are uploaded and read back in memory order, so fragUV.y grows
// with the image row index exactly like the CPU uv. No flip is applied
// anywhere in the pipeline.

// fullscreenVertSrc draws one oversized triangle from gl_VertexID.
const fullscreenVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// generateFragSrc reconstructs view positions from depth, estimates the
// normal from derivatives and marches the jittered horizon directions.
var generateFragSrc = fmt.Sprintf(`
#version 410 core
in  vec2 fragUV;
out vec4 outAO;

uniform sampler2D colorTex;   // unit 0
uniform sampler2D depthTex;   // unit 1
uniform sampler2D noiseTex;   // unit 2, repeat
uniform mat4  invProj;
uniform vec2  viewport;
uniform vec2  noiseScale;
uniform float intensity;
uniform float bias;
uniform float lenCap;
uniform float stepSize;

const int   DIRECTIONS = %d;
const int   STEPS      = %d;
const float GAP_ANGLE  = %.9f;

vec3 viewPos(vec2 uv) {
    float depth = texture(depthTex, uv).r;
    vec4 clip = vec4(uv.x * 2.0 - 1.0, (1.0 - uv.y) * 2.0 - 1.0, depth, 1.0);
    vec4 p = invProj * clip;
    return p.xyz / p.w;
}

vec3 safeNormalize(vec3 v) {
    float l = length(v);
    return l > 0.0 ? v / l : vec3(0.0);
}

void main() {
    vec3 origin = viewPos(fragUV);
    vec3 normal = safeNormalize(cross(dFdy(origin), dFdx(origin)));
    float random = clamp(texture(noiseTex, fragUV * noiseScale).r, 0.0, 1.0);

    float ao = 0.0;
    for (int i = 0; i < DIRECTIONS; i++) {
        float angle = GAP_ANGLE * (float(i) + random);
        vec2 dir = vec2(cos(angle), sin(angle));

        float local = 0.0;
        float dist = stepSize;
        for (int j = 0; j < STEPS; j++) {
            vec2 coords = fragUV + dir * dist / viewport;
            if (coords.x < 0.0 || coords.x > 1.0 || coords.y < 0.0 || coords.y > 1.0) {
                break;
            }

            vec3 diff = viewPos(coords) - origin;
            float len = length(diff);
            if (!(len <= lenCap)) {
                break;
            }

            float d = clamp(dot(normal, safeNormalize(diff)), 0.0, 1.0);
            float weight = len / lenCap;
            weight = 1.0 - weight * weight;
            if (d < bias) {
                d = 0.0;
            }

            local = max(local, d * weight);
            dist += stepSize;
        }
        ao += local;
    }

    ao /= float(DIRECTIONS);
    ao = 1.0 - clamp(ao, 0.0, 1.0);
    ao = intensity == 0.0 ? 1.0 : pow(ao, intensity);
    outAO = vec4(vec3(ao), 1.0);
}
`+"\x00", hbao.Directions, hbao.Steps, 90*3.14159265358979/180)

// blurFragSrc is one axis of the separable binomial blur.
// texelDir = (kernelSize/w, 0) for X and (0, kernelSize/h) for Y.
var blurFragSrc = fmt.Sprintf(`
#version 410 core
in  vec2 fragUV;
out vec4 outAO;

uniform sampler2D srcTex;
uniform vec2      texelDir;

void main() {
    const float w[%d] = float[](%s);
    vec4 result = vec4(0.0);
    for (int k = -%d; k <= %d; k++) {
        result += texture(srcTex, fragUV + float(k) * texelDir) * w[k + %d];
    }
    outAO = result;
}
`+"\x00", len(hbao.BlurWeights), glslFloats(hbao.BlurWeights[:]),
	len(hbao.BlurWeights)/2, len(hbao.BlurWeights)/2, len(hbao.BlurWeights)/2)

// compositeFragSrc modulates the scene color by the blurred occlusion.
const compositeFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D colorTex;   // unit 0
uniform sampler2D aoTex;      // unit 1
uniform bool      aoOnly;

void main() {
    vec3 ao = texture(aoTex, fragUV).rgb;
    if (aoOnly) {
        outColor = vec4(ao, 1.0);
        return;
    }
    outColor = vec4(ao * texture(colorTex, fragUV).rgb, 1.0);
}
` + "\x00"

func glslFloats(vs []float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%.8f", v)
	}
	return strings.Join(parts, ", ")
}
