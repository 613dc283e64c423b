package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	result.Backend = mergeBackend(result.Backend, override.Backend)

	if override.Patch != nil {
		patch := *override.Patch
		result.Patch = &patch
	}

	result.Keybindings = mergeKeybindings(result.Keybindings, override.Keybindings)

	// Merge extensions
	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(result.Extensions)+len(override.Extensions))
		for key, value := range result.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}

func mergeBackend(base, override *BackendConfig) *BackendConfig {
	if override == nil {
		return base
	}
	if base == nil {
		copied := *override
		return &copied
	}

	result := *base
	if override.Transport != "" {
		result.Transport = override.Transport
	}
	if override.Socket != "" {
		result.Socket = override.Socket
	}
	if override.URL != "" {
		result.URL = override.URL
	}
	if override.DialTimeout != "" {
		result.DialTimeout = override.DialTimeout
	}
	return &result
}

// mergeKeybindings overrides bindings per action; actions the override does not
// mention keep their base bindings.
func mergeKeybindings(base, override *KeybindingsConfig) *KeybindingsConfig {
	if override == nil {
		return base
	}
	result := &KeybindingsConfig{Editor: KeybindingSectionConfig{}}
	if base != nil {
		for action, keys := range base.Editor {
			result.Editor[action] = keys
		}
	}
	for action, keys := range override.Editor {
		result.Editor[action] = keys
	}
	return result
}
