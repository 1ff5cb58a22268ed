package main

import (
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	roleboard "github.com/roleboard/roleboard/internal"
	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	_ = godotenv.Load()

	configurationLocation := flag.String("configuration", envOr("CONFIGURATION_LOCATION", "roleboard.yaml"), "Path of configuration file")
	prometheusAddress := flag.String("prometheusAddress", envOr("PROMETHEUS_ADDRESS", ":9091"), "Prometheus address")
	httpHost := flag.String("httpHost", envOr("HTTP_HOST", ":8080"), "REST API host")
	gatewayHost := flag.String("gatewayHost", envOr("GATEWAY_HOST", ":8081"), "Roster gateway host")

	loggingLevel := flag.String("level", envOr("LOGGING_LEVEL", "info"), "Logging level")
	loggingFileLoggingEnabled := flag.Bool("fileLoggingEnabled", envOr("LOGGING_FILE_LOGGING_ENABLED", "false") == "true", "When enabled, will log to file")
	loggingDirectory := flag.String("directory", envOr("LOGGING_DIRECTORY", "logs"), "Directory to log to")
	loggingFilename := flag.String("filename", envOr("LOGGING_FILENAME", "roleboard.log"), "Filename to log to")
	loggingMaxSize := flag.Int("maxSize", 100, "Maximum log file size in MB before rotating")
	loggingMaxBackups := flag.Int("maxBackups", 10, "Maximum number of rotated log files")
	loggingMaxAge := flag.Int("maxAge", 31, "Maximum age of rotated log files in days")
	loggingCompress := flag.Bool("compress", true, "When enabled, will compress rotated log files")

	flag.Parse()

	level, err := zerolog.ParseLevel(*loggingLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}

	var writer io.Writer = consoleWriter

	if *loggingFileLoggingEnabled {
		if err := os.MkdirAll(*loggingDirectory, roleboard.PermissionsDefault); err != nil {
			println("Failed to create logging directory:", err.Error())
			os.Exit(1)
		}

		writer = io.MultiWriter(consoleWriter, &lumberjack.Logger{
			Filename:   *loggingDirectory + "/" + *loggingFilename,
			MaxSize:    *loggingMaxSize,
			MaxBackups: *loggingMaxBackups,
			MaxAge:     *loggingMaxAge,
			Compress:   *loggingCompress,
		})
	}

	rb, err := roleboard.NewRoleboard(writer, roleboard.RoleboardOptions{
		ConfigurationLocation: *configurationLocation,
		PrometheusAddress:     *prometheusAddress,
		HTTPHost:              *httpHost,
		GatewayHost:           *gatewayHost,
	})
	if err != nil {
		println("Failed to create roleboard:", err.Error())
		os.Exit(1)
	}

	rb.Open()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if err = rb.Close(); err != nil {
		rb.Logger.Warn().Err(err).Msg("Exceptions whilst closing roleboard")
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
