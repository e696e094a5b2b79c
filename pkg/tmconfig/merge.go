package tmconfig

// merge combines two configurations, with override taking precedence over base.
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *Config) *Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	result.Parse = mergeParseSettings(base.Parse, override.Parse)

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return &result
}

// mergeParseSettings merges parse settings. Booleans here follow the
// teacher's own tradeoff for Fix/DryRun: false is the zero value, so a
// config file cannot use "false" to unset something a less specific layer
// already turned on. Only "true" propagates; layers compose by turning
// features on, never by turning them back off.
func mergeParseSettings(base, override ParseSettings) ParseSettings {
	result := base

	if override.Sanitize {
		result.Sanitize = override.Sanitize
	}
	if override.SimpleCodeBlocks {
		result.SimpleCodeBlocks = override.SimpleCodeBlocks
	}
	if override.WrapSections {
		result.WrapSections = override.WrapSections
	}
	if override.SourceMap {
		result.SourceMap = override.SourceMap
	}
	if override.Theme != "" {
		result.Theme = override.Theme
	}
	if override.GFMExtensions {
		result.GFMExtensions = override.GFMExtensions
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs
// taking precedence.
func MergeAll(configs ...*Config) *Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
