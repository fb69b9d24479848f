package mines

// ConfigurationError is returned when game parameters can not describe a
// playable board. It is the only error the engine surfaces; every other
// rejected input is silently ignored.
type ConfigurationError struct {
	message string
}

// [ConfigurationError] implements [error]
func (e ConfigurationError) Error() string {
	return e.message
}
