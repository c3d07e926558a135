package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/moerenett/toppbefaring-services/constants"
	"github.com/moerenett/toppbefaring-services/util"
	"github.com/op/go-logging"
	"github.com/spf13/viper"
)

type Config struct {
	ArcGISLayerURL        string
	ArcGISPassword        string
	ArcGISRequestIP       string
	ArcGISTokenURL        string
	ArcGISUsername        string
	ConfigName            string
	HashAlgorithm         string
	ImageGridAPIURL       string
	ImageGridClientID     string
	ImageGridClientSecret string
	ImageGridSchema       string
	ImageGridTenant       string
	ImageGridTokenURL     string
	Kilde                 string
	LogDir                string
	LogLevel              logging.Level
	MatchRadiusMeters     float64
	RedisDefaultDB        int
	RedisPassword         string
	RedisURL              string
	StatsDBPath           string
	TrackerBackend        string
	TrackingFile          string
	UploadFolder          string
}

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// NewConfig returns a config loaded from the .env file that env vars
// TOPPBEFARING_CONFIG_DIR and TOPPBEFARING_CONFIG point to.
func NewConfig() *Config {
	config := loadConfig()
	config.expandPaths()
	config.sanityCheck()
	config.makeDirs()
	return config
}

func loadConfig() *Config {
	configDir, envName := getEnvVars()
	v := viper.New()
	v.AddConfigPath(configDir)
	v.SetConfigName(".env." + envName)
	v.SetConfigType("env")
	v.SetDefault("HASH_ALGORITHM", constants.DefaultHashAlgorithm)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("MATCH_RADIUS_METERS", constants.DefaultMatchRadiusMeters)
	v.SetDefault("TRACKER_BACKEND", constants.TrackerBackendCSV)
	err := v.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}
	return &Config{
		ArcGISLayerURL:        v.GetString("ARCGIS_LAYER_URL"),
		ArcGISPassword:        v.GetString("ARCGIS_PASSWORD"),
		ArcGISRequestIP:       v.GetString("ARCGIS_REQUEST_IP"),
		ArcGISTokenURL:        v.GetString("ARCGIS_TOKEN_URL"),
		ArcGISUsername:        v.GetString("ARCGIS_USERNAME"),
		ConfigName:            envName,
		HashAlgorithm:         v.GetString("HASH_ALGORITHM"),
		ImageGridAPIURL:       v.GetString("IMAGEGRID_API_URL"),
		ImageGridClientID:     v.GetString("IMAGEGRID_CLIENT_ID"),
		ImageGridClientSecret: v.GetString("IMAGEGRID_CLIENT_SECRET"),
		ImageGridSchema:       v.GetString("IMAGEGRID_SCHEMA"),
		ImageGridTenant:       v.GetString("IMAGEGRID_TENANT"),
		ImageGridTokenURL:     v.GetString("IMAGEGRID_TOKEN_URL"),
		Kilde:                 v.GetString("KILDE"),
		LogDir:                v.GetString("LOG_DIR"),
		LogLevel:              logLevels[v.GetString("LOG_LEVEL")],
		MatchRadiusMeters:     v.GetFloat64("MATCH_RADIUS_METERS"),
		RedisDefaultDB:        v.GetInt("REDIS_DEFAULT_DB"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisURL:              v.GetString("REDIS_URL"),
		StatsDBPath:           v.GetString("STATS_DB_PATH"),
		TrackerBackend:        v.GetString("TRACKER_BACKEND"),
		TrackingFile:          v.GetString("TRACKING_FILE"),
		UploadFolder:          v.GetString("UPLOAD_FOLDER"),
	}
}

func getEnvVars() (string, string) {
	configDir := getRequiredEnvVar("TOPPBEFARING_CONFIG_DIR")
	envName := getRequiredEnvVar("TOPPBEFARING_CONFIG")
	return configDir, envName
}

func getRequiredEnvVar(varName string) string {
	value := os.Getenv(varName)
	if value == "" {
		panic(fmt.Sprintf("Required env var %s not set", varName))
	}
	return value
}

// Expand ~ to home dir in path settings.
func (c *Config) expandPaths() {
	c.LogDir = expandPath(c.LogDir)
	c.StatsDBPath = expandPath(c.StatsDBPath)
	c.TrackingFile = expandPath(c.TrackingFile)
	c.UploadFolder = expandPath(c.UploadFolder)
}

func expandPath(dirName string) string {
	dir, err := util.ExpandTilde(dirName)
	if err != nil {
		panic(err)
	}
	return dir
}

// sanityCheck panics on settings that would make a run misbehave in
// ways the user would only notice after the uploads are done: an
// unknown tracker backend, an unknown hash algorithm, or a nonsense
// match radius.
func (c *Config) sanityCheck() {
	if !util.StringListContains(constants.TrackerBackends, c.TrackerBackend) {
		panic(fmt.Sprintf("Unknown tracker backend: %s", c.TrackerBackend))
	}
	if !util.AlgorithmIsValid(c.HashAlgorithm) {
		panic(fmt.Sprintf("Unknown hash algorithm: %s", c.HashAlgorithm))
	}
	if c.MatchRadiusMeters <= 0 {
		panic(fmt.Sprintf("Match radius must be positive, got %v", c.MatchRadiusMeters))
	}
	if c.TrackerBackend == constants.TrackerBackendCSV && c.TrackingFile == "" {
		panic("TRACKING_FILE must be set when TRACKER_BACKEND is csv")
	}
	if c.TrackerBackend == constants.TrackerBackendRedis && c.RedisURL == "" {
		panic("REDIS_URL must be set when TRACKER_BACKEND is redis")
	}
}

func (c *Config) makeDirs() {
	dirs := []string{
		c.LogDir,
		c.UploadFolder,
	}
	if c.StatsDBPath != "" {
		dirs = append(dirs, filepath.Dir(c.StatsDBPath))
	}
	if c.TrackingFile != "" {
		dirs = append(dirs, filepath.Dir(c.TrackingFile))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			panic(err)
		}
	}
}
