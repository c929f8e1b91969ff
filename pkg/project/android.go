package project

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

// AndroidSettings is the typed view of the android_settings object
type AndroidSettings struct {
	PackageName          string                       `mapstructure:"package_name"`
	VersionNumber        string                       `mapstructure:"version_number"`
	VersionName          string                       `mapstructure:"version_name"`
	Orientation          string                       `mapstructure:"orientation"`
	MultiWindow          *MultiWindowOptions          `mapstructure:"multi_window_options"`
	Icons                map[string]string            `mapstructure:"icons"`
	SplashScreen         map[string]map[string]string `mapstructure:"splash_screen"`
	EnableKeepScreenOn   bool                         `mapstructure:"enable_keep_screen_on"`
	DisableImmersiveMode bool                         `mapstructure:"disable_immersive_mode"`
}

// MultiWindowOptions mirrors multi_window_options. Dimensions stay untyped so that only
// integral JSON numbers are accepted where they are consumed.
type MultiWindowOptions struct {
	Enabled            bool               `mapstructure:"enabled"`
	LaunchInFullscreen bool               `mapstructure:"launch_in_fullscreen"`
	SamsungDex         *SamsungDexOptions `mapstructure:"samsung_dex_options"`
	DefaultWidth       interface{}        `mapstructure:"default_width"`
	DefaultHeight      interface{}        `mapstructure:"default_height"`
	MinWidth           interface{}        `mapstructure:"min_width"`
	MinHeight          interface{}        `mapstructure:"min_height"`
	Gravity            string             `mapstructure:"gravity"`
}

// SamsungDexOptions configures the DEX desktop launch window
type SamsungDexOptions struct {
	LaunchWidth  interface{} `mapstructure:"launch_width"`
	LaunchHeight interface{} `mapstructure:"launch_height"`
	KeepAlive    bool        `mapstructure:"keep_alive"`
}

var requiredAndroidKeys = []string{"package_name", "version_number", "version_name", "orientation"}

// DecodeAndroid checks the required android keys and decodes the settings. Numbers given for
// version_number or version_name are accepted and rendered as strings.
func (s *Settings) DecodeAndroid() (*AndroidSettings, error) {
	for _, key := range requiredAndroidKeys {
		if v, ok := s.Android[key]; !ok || v == nil {
			return nil, errors.NewProjectSettingsError(AndroidKey+"."+key, s.AndroidSource)
		}
	}

	var out AndroidSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, errors.NewInternalError("DECODER", err.Error())
	}
	if err := decoder.Decode(s.Android); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeProjectSettings, "MALFORMED_SETTINGS",
			fmt.Sprintf("invalid android settings in %s", s.AndroidSource)).
			WithContext("file", s.AndroidSource)
	}
	return &out, nil
}
