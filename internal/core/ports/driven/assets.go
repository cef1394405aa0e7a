package driven

// AssetStore writes binary assets under fixed, content-type-specific
// public sub-paths with sanitised file names.
type AssetStore interface {
	// StoreFile copies the source file into the public files area and
	// returns the public path of the copy.
	StoreFile(srcPath string) (string, error)

	// StoreImage writes an extracted image into the public images area
	// and returns its public path. name should already carry the image
	// extension.
	StoreImage(name string, data []byte) (string, error)
}

// ConfigStore provides read access to configuration values.
type ConfigStore interface {
	// GetString retrieves a string value, empty if unset.
	GetString(key string) string

	// GetInt retrieves an integer value, zero if unset.
	GetInt(key string) int

	// Set stores a configuration value.
	Set(key string, value any) error

	// Save persists the configuration.
	Save() error
}
