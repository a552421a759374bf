// Package shaders holds the GLSL sources for the product stage.
package shaders

// SurfaceVertexShader transforms product surfaces and carries the data
// the PBR fragment stage needs, including the shadow-space position.
const SurfaceVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aTexCoord;

uniform mat4 uMVP;
uniform mat4 uModel;
uniform mat4 uLightViewProj;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vTexCoord;
out vec4 vShadowPos;

void main() {
    vec4 world = uModel * vec4(aPosition, 1.0);
    vWorldPos = world.xyz;
    vNormal = mat3(uModel) * aNormal;
    vTexCoord = aTexCoord;
    vShadowPos = uLightViewProj * world;
    gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

// SurfaceFragmentShader shades one classified surface: ambient +
// hemisphere + sun/fill/rim directionals with shadowing, environment
// reflection scaled by metalness, exp2 fog, and a filmic tonemap.
const SurfaceFragmentShader = `#version 410 core
in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vTexCoord;
in vec4 vShadowPos;

uniform sampler2D uBaseColorTex;
uniform sampler2DShadow uShadowMap;
uniform samplerCube uEnvMap;

uniform vec4 uBaseColor;
uniform float uMetalness;
uniform float uRoughness;
uniform float uOpacity;
uniform float uEnvIntensity;
uniform int uHasTexture;
uniform int uIsGlass;

uniform vec3 uCameraPos;

uniform vec3 uAmbientColor;
uniform float uAmbientIntensity;
uniform vec3 uSunDir;
uniform vec3 uSunColor;
uniform float uSunIntensity;
uniform vec3 uFillDir;
uniform float uFillIntensity;
uniform vec3 uRimDir[2];
uniform vec3 uRimColor[2];
uniform float uRimIntensity[2];
uniform int uRimCount;
uniform vec3 uHemiSky;
uniform vec3 uHemiGround;
uniform float uHemiIntensity;
uniform int uShadowsEnabled;

uniform float uFogDensity;
uniform vec3 uFogColor;

out vec4 fragColor;

float shadowFactor() {
    if (uShadowsEnabled == 0) return 1.0;
    vec3 proj = vShadowPos.xyz / vShadowPos.w;
    proj = proj * 0.5 + 0.5;
    if (proj.z > 1.0) return 1.0;
    float bias = 0.0015;
    return texture(uShadowMap, vec3(proj.xy, proj.z - bias));
}

vec3 filmic(vec3 x) {
    // Hejl-Burgess approximation, exposure 1.0.
    x = max(vec3(0.0), x - 0.004);
    return (x * (6.2 * x + 0.5)) / (x * (6.2 * x + 1.7) + 0.06);
}

void main() {
    vec4 base = uBaseColor;
    if (uHasTexture == 1) {
        base *= texture(uBaseColorTex, vTexCoord);
    }

    vec3 n = normalize(vNormal);
    vec3 viewDir = normalize(uCameraPos - vWorldPos);

    // Hemisphere bounce.
    float hemiMix = n.y * 0.5 + 0.5;
    vec3 hemi = mix(uHemiGround, uHemiSky, hemiMix) * uHemiIntensity;

    vec3 lit = uAmbientColor * uAmbientIntensity + hemi;

    float sunNdL = max(dot(n, normalize(uSunDir)), 0.0);
    lit += uSunColor * uSunIntensity * sunNdL * shadowFactor();

    float fillNdL = max(dot(n, normalize(uFillDir)), 0.0);
    lit += vec3(uFillIntensity) * fillNdL;

    for (int i = 0; i < uRimCount; i++) {
        float rimNdL = max(dot(n, normalize(uRimDir[i])), 0.0);
        float rim = pow(1.0 - max(dot(n, viewDir), 0.0), 2.0);
        lit += uRimColor[i] * uRimIntensity[i] * rimNdL * rim;
    }

    vec3 color = base.rgb * lit;

    // Environment reflection, stronger on smooth metal.
    vec3 refl = reflect(-viewDir, n);
    vec3 env = texture(uEnvMap, refl).rgb;
    float reflectivity = mix(0.04, 1.0, uMetalness) * (1.0 - uRoughness) * uEnvIntensity;
    color = mix(color, env, clamp(reflectivity, 0.0, 1.0));

    float alpha = uOpacity * base.a;
    if (uIsGlass == 1) {
        // Transmission approximated by blending toward the environment
        // seen through the surface.
        vec3 through = texture(uEnvMap, -viewDir).rgb;
        color = mix(through * base.rgb, color, uOpacity);
        float fresnel = pow(1.0 - max(dot(n, viewDir), 0.0), 3.0);
        alpha = clamp(uOpacity + fresnel * 0.5, 0.0, 1.0);
    }

    // Exponential-squared fog.
    if (uFogDensity > 0.0) {
        float dist = length(uCameraPos - vWorldPos);
        float f = exp(-uFogDensity * uFogDensity * dist * dist);
        color = mix(uFogColor, color, clamp(f, 0.0, 1.0));
    }

    fragColor = vec4(filmic(color), alpha);
}
`

// DepthVertexShader renders shadow-caster depth only.
const DepthVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;

uniform mat4 uLightViewProj;
uniform mat4 uModel;

void main() {
    gl_Position = uLightViewProj * uModel * vec4(aPosition, 1.0);
}
`

// DepthFragmentShader writes nothing; depth comes from rasterization.
const DepthFragmentShader = `#version 410 core
void main() {}
`

// ParticleVertexShader renders rain/wind particles as camera-facing
// point sprites with distance-attenuated size.
const ParticleVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;

uniform mat4 uViewProj;
uniform vec3 uCameraPos;
uniform float uBaseSize;

void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
    float dist = max(length(uCameraPos - aPosition), 1.0);
    gl_PointSize = clamp(uBaseSize * 120.0 / dist, 1.0, 48.0);
}
`

// ParticleFragmentShader samples the sprite texture over the point and
// applies fog toward the particle tint.
const ParticleFragmentShader = `#version 410 core
uniform sampler2D uSprite;
uniform vec4 uTint;

out vec4 fragColor;

void main() {
    float a = texture(uSprite, gl_PointCoord).a;
    if (a < 0.01) discard;
    fragColor = vec4(uTint.rgb, uTint.a * a);
}
`

// LineVertexShader draws overlay and debug lines in world space.
const LineVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;

uniform mat4 uViewProj;

void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

// LineFragmentShader draws lines in a flat color.
const LineFragmentShader = `#version 410 core
uniform vec4 uColor;

out vec4 fragColor;

void main() {
    fragColor = uColor;
}
`
