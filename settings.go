package giprobe

import (
	"encoding/json"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// GISettings is the full configuration surface of the GI probe system.
//
// ReflectionProbesEnabled/ReflectionProbeIntensity belong to the specular
// IBL subsystem and only pass through here. RaysPerSample is declared for
// forward compatibility but the current bounce integrator takes a single
// direction per recursion step and never reads it.
type GISettings struct {
	LightProbesEnabled  bool    `json:"light_probes_enabled"`
	LightProbeIntensity float32 `json:"light_probe_intensity"`
	LightProbeSamples   int     `json:"light_probe_samples"`

	ReflectionProbesEnabled  bool    `json:"reflection_probes_enabled"`
	ReflectionProbeIntensity float32 `json:"reflection_probe_intensity"`

	AmbientSkyColor    mgl32.Vec3 `json:"ambient_sky_color"`
	AmbientGroundColor mgl32.Vec3 `json:"ambient_ground_color"`
	AmbientIntensity   float32    `json:"ambient_intensity"`

	Bounces       int     `json:"bounces"`
	RaysPerSample int     `json:"rays_per_sample"`
	RayLength     float32 `json:"ray_length"`
}

// DefaultGISettings returns a reasonable outdoor-scene baseline.
func DefaultGISettings() GISettings {
	return GISettings{
		LightProbesEnabled:       true,
		LightProbeIntensity:      1.0,
		LightProbeSamples:        64,
		ReflectionProbesEnabled:  true,
		ReflectionProbeIntensity: 1.0,
		AmbientSkyColor:          mgl32.Vec3{0.5, 0.7, 1.0},
		AmbientGroundColor:       mgl32.Vec3{0.3, 0.25, 0.2},
		AmbientIntensity:         1.0,
		Bounces:                  2,
		RaysPerSample:            1,
		RayLength:                100.0,
	}
}

// SaveGISettings writes the settings as indented JSON.
func SaveGISettings(settings GISettings, filename string) error {
	bytes, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0644)
}

// LoadGISettings reads settings saved by SaveGISettings. Fields missing
// from the file keep their zero value; callers wanting defaults for absent
// fields should unmarshal over DefaultGISettings via LoadGISettingsInto.
func LoadGISettings(filename string) (GISettings, error) {
	var settings GISettings
	err := LoadGISettingsInto(filename, &settings)
	return settings, err
}

// LoadGISettingsInto unmarshals over an existing settings value, keeping
// whatever the file does not mention.
func LoadGISettingsInto(filename string, settings *GISettings) error {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, settings)
}
