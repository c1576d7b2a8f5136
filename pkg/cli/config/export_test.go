package config

import "time"

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(configPath, taxonomyPath, theme, language string) *App {
	return &App{
		configPath: configPath,
		taxonomy:   taxonomyPath,
		theme:      theme,
		language:   language,
	}
}

// NewBackendForTest creates a Backend config for testing purposes
func NewBackendForTest(baseURL, username, password string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL:  baseURL,
		username: username,
		password: password,
		timeout:  timeout,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
