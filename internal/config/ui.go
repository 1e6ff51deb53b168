package config

// UIConfig configures the interactive dashboard.
type UIConfig struct {
	Theme         string `yaml:"theme"`          // auto, light, dark
	DebounceDelay string `yaml:"debounce_delay"` // tag search quiet period
	ShowMoreCount int    `yaml:"show_more_count"`

	// KeepModalOpenOnFailure leaves the disable-rule modal open when the
	// acknowledgement request fails.
	KeepModalOpenOnFailure bool `yaml:"keep_modal_open_on_failure"`
}

// FiltersConfig configures filter chip rendering.
type FiltersConfig struct {
	// StrictCatalog panics on filter values missing from the category
	// catalog instead of skipping the chip.
	StrictCatalog bool `yaml:"strict_catalog"`
}
