package initializer

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fammee/finance/pkg/config"
)

var levelColors = map[log.Level]lipgloss.AdaptiveColor{
	log.DebugLevel: {Light: "#7E57C2", Dark: "#7E57C2"},
	log.InfoLevel:  {Light: "#04B575", Dark: "#04B575"},
	log.WarnLevel:  {Light: "#EE6FF8", Dark: "#EE6FF8"},
	log.ErrorLevel: {Light: "#FF6B6B", Dark: "#FF6B6B"},
}

var levelLabels = map[log.Level]string{
	log.DebugLevel: "DEBU",
	log.InfoLevel:  "INFO",
	log.WarnLevel:  "WARN",
	log.ErrorLevel: "ERRO",
}

// setupLogger builds the process logger: a charmbracelet handler behind slog,
// installed as the slog default.
func setupLogger(cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text"}
	}
	styles := log.DefaultStyles()
	for level, color := range levelColors {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(levelLabels[level]).
			Bold(true).
			Padding(0, 1).
			Foreground(color)
	}
	keyColor := levelColors[log.DebugLevel]
	for _, key := range []string{"error", "operation", "family_id", "account_id", "transaction_id"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(keyColor)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(levelColors[log.ErrorLevel])

	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
