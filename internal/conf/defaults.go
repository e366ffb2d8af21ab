// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// DefaultSampleRate is the sample rate the suppression model is trained for.
const DefaultSampleRate = 48000

// DefaultSuppressionLevel is the initial suppression intensity.
const DefaultSuppressionLevel = 100

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("main.name", "Denoise-Go")
	viper.SetDefault("main.debug", false)
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "denoise.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("audio.samplerate", DefaultSampleRate)
	viper.SetDefault("audio.suppressionlevel", DefaultSuppressionLevel)

	viper.SetDefault("assets.baseurl", "")
	viper.SetDefault("assets.timeoutseconds", 0)
	viper.SetDefault("assets.useragent", "Denoise-Go")
}

// defaultSettings builds a Settings struct with the same values as the
// viper defaults, for use when no configuration file is loaded at all.
func defaultSettings() *Settings {
	return &Settings{
		Main: MainSettings{
			Name: "Denoise-Go",
			Log: LogConfig{
				Enabled:  false,
				Path:     "denoise.log",
				Rotation: RotationDaily,
				MaxSize:  1048576,
			},
		},
		Audio: AudioSettings{
			SampleRate:       DefaultSampleRate,
			SuppressionLevel: DefaultSuppressionLevel,
		},
		Assets: AssetSettings{
			UserAgent: "Denoise-Go",
		},
	}
}
