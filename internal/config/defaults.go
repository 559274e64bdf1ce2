package config

// Default returns the built-in configuration used when no file exists.
func Default() Config {
	return Config{
		Uploader: Uploader{
			Binary:          "vidsync",
			DeadlineSeconds: 120,
		},
		Transfer: Transfer{
			ChunkSizeMiB: 1,
		},
		Progress: Progress{
			TickMillis:         100,
			Smoothing:          0.3,
			Margin:             0.015,
			IdleTimeoutSeconds: 30,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Paths: Paths{
			LockFile: "~/.local/state/shuttle/shuttle.lock",
		},
	}
}
