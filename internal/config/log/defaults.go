package log

func defaultOptions() *LogOptions {
	return &LogOptions{
		Level:      "info",
		ToConsole:  true,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
}
