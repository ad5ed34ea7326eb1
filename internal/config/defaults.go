package config

const (
	defaultConfigPath        = "~/.config/timelinekit/config.toml"
	defaultDataDir           = "~/.local/share/timelinekit"
	defaultCatalogFile       = "catalog.db"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultPrecision         = -1
	defaultUnknownFields     = "preserve"
	defaultSanitizeRate      = 24.0
	defaultIDNamespace       = "timelinekit"
	defaultBusyTimeoutMillis = 5000
	maxPrecision             = 17
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Codec: Codec{
			Precision:     defaultPrecision,
			Pretty:        true,
			UnknownFields: defaultUnknownFields,
		},
		Sanitize: Sanitize{
			DefaultRate: defaultSanitizeRate,
		},
		IDs: IDs{
			Namespace: defaultIDNamespace,
		},
		Catalog: Catalog{
			BusyTimeoutMillis: defaultBusyTimeoutMillis,
		},
	}
}
