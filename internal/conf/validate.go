package conf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateSettings checks a Settings struct for values the processor cannot
// work with. It is called by Load and may be called directly on manually
// constructed settings.
func ValidateSettings(settings *Settings) error {
	if settings.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.samplerate must be positive, got %d", settings.Audio.SampleRate)
	}
	if settings.Audio.SuppressionLevel < 0 || settings.Audio.SuppressionLevel > 100 {
		return fmt.Errorf("audio.suppressionlevel must be within 0..100, got %d", settings.Audio.SuppressionLevel)
	}
	if settings.Assets.TimeoutSeconds < 0 {
		return fmt.Errorf("assets.timeoutseconds must not be negative, got %d", settings.Assets.TimeoutSeconds)
	}
	if base := settings.Assets.BaseURL; base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("assets.baseurl is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("assets.baseurl must use http or https, got %q", base)
		}
		if strings.TrimSuffix(u.Host, ".") == "" {
			return fmt.Errorf("assets.baseurl has no host: %q", base)
		}
	}
	return nil
}
