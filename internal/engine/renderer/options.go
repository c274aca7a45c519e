package renderer

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/sketchbox/internal/engine/texture"
)

// ToneMapping selects the HDR to display mapping.
type ToneMapping int

const (
	NoToneMapping ToneMapping = iota
	LinearToneMapping
	ACESFilmicToneMapping
)

// String returns the operator name.
func (t ToneMapping) String() string {
	switch t {
	case NoToneMapping:
		return "none"
	case LinearToneMapping:
		return "linear"
	case ACESFilmicToneMapping:
		return "aces"
	default:
		return fmt.Sprintf("ToneMapping(%d)", int(t))
	}
}

// ShadowMapType selects the shadow filtering kernel.
type ShadowMapType int

const (
	BasicShadowMap ShadowMapType = iota
	PCFShadowMap
	PCFSoftShadowMap
)

// ShadowMapOptions configures shadow rendering.
type ShadowMapOptions struct {
	Enabled bool
	Type    ShadowMapType
}

// Options configures a Renderer at creation time.
type Options struct {
	Antialias               bool
	PhysicallyCorrectLights bool
	ToneMapping             ToneMapping
	ToneMappingExposure     float32
	OutputEncoding          texture.Encoding
	ShadowMap               ShadowMapOptions

	// MaxPixelRatio caps SetPixelRatio; 0 leaves it uncapped.
	MaxPixelRatio float32
}

// maxDirLights is the number of directional lights the standard shader accepts.
const maxDirLights = 4

// defines returns the preprocessor switches for the standard program.
func (o Options) defines() map[string]string {
	d := map[string]string{
		"MAX_DIR_LIGHTS": strconv.Itoa(maxDirLights),
	}
	if o.PhysicallyCorrectLights {
		d["PHYSICALLY_CORRECT_LIGHTS"] = ""
	}
	switch o.ToneMapping {
	case ACESFilmicToneMapping:
		d["TONE_MAPPING_ACES"] = ""
	case LinearToneMapping:
		d["TONE_MAPPING_LINEAR"] = ""
	}
	if o.OutputEncoding == texture.SRGBEncoding {
		d["OUTPUT_SRGB"] = ""
	}
	if o.ShadowMap.Enabled {
		d["USE_SHADOWMAP"] = ""
		d["SHADOWMAP_TYPE"] = strconv.Itoa(int(o.ShadowMap.Type))
	}
	return d
}
