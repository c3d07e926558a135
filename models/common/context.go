package common

import (
	"fmt"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/network"
	"github.com/moerenett/toppbefaring-services/tracker"
	"github.com/moerenett/toppbefaring-services/util/logger"
	"github.com/op/go-logging"
)

type Context struct {
	Config          *Config
	Logger          *logging.Logger
	ArcGISClient    *network.ArcGISClient
	ImageGridClient *network.ImageGridClient
	Tracker         tracker.UploadTracker
	RunStore        *tracker.RunStore
}

func NewContext() *Context {
	config := NewConfig()
	_logger := getLogger(config)
	return &Context{
		Config:          config,
		Logger:          _logger,
		ArcGISClient:    getArcGISClient(config, _logger),
		ImageGridClient: getImageGridClient(config, _logger),
		Tracker:         getTracker(config),
		RunStore:        getRunStore(config),
	}
}

// Close releases the tracker and the run database. The HTTP clients
// hold nothing worth closing.
func (context *Context) Close() {
	if context.Tracker != nil {
		context.Tracker.Close()
	}
	if context.RunStore != nil {
		context.RunStore.Close()
	}
}

func getLogger(config *Config) *logging.Logger {
	logger, _ := logger.InitLogger(config.LogDir, config.LogLevel)
	return logger
}

func getArcGISClient(config *Config, logger *logging.Logger) *network.ArcGISClient {
	return network.NewArcGISClient(
		config.ArcGISTokenURL,
		config.ArcGISLayerURL,
		config.ArcGISUsername,
		config.ArcGISPassword,
		config.ArcGISRequestIP,
		logger)
}

func getImageGridClient(config *Config, logger *logging.Logger) *network.ImageGridClient {
	return network.NewImageGridClient(
		config.ImageGridAPIURL,
		config.ImageGridTokenURL,
		config.ImageGridClientID,
		config.ImageGridClientSecret,
		config.ImageGridTenant,
		config.ImageGridSchema,
		logger)
}

func getTracker(config *Config) tracker.UploadTracker {
	if config.TrackerBackend == constants.TrackerBackendRedis {
		redisTracker, err := tracker.NewRedisTracker(
			config.RedisURL,
			config.RedisPassword,
			config.RedisDefaultDB)
		if err != nil {
			panic(fmt.Sprintf("Could not initialize Redis tracker: %v", err))
		}
		return redisTracker
	}
	csvTracker, err := tracker.NewCSVTracker(config.TrackingFile)
	if err != nil {
		panic(fmt.Sprintf("Could not initialize CSV tracker: %v", err))
	}
	return csvTracker
}

// getRunStore returns nil when no stats database is configured. Run
// history is optional; the upload itself never depends on it.
func getRunStore(config *Config) *tracker.RunStore {
	if config.StatsDBPath == "" {
		return nil
	}
	store, err := tracker.NewRunStore(config.StatsDBPath)
	if err != nil {
		panic(fmt.Sprintf("Could not initialize run database: %v", err))
	}
	return store
}
