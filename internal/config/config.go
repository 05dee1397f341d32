package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds every enumerated option from spec.md §6.5.
type Settings struct {
	AppEnv string

	ServerPort    int
	WebsocketPort int

	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	QueueURL string // redis addr for asynq + pub/sub broker
	RedisDB  int

	MediaRoot      string
	MinFreeSpaceGb float64

	JWTSecret     string
	JWTExpiresIn  time.Duration
	AdminUsername string
	AdminPassword string

	DownloadConcurrency int
	DubbingConcurrency  int
	MuxingConcurrency   int

	DefaultTargetLang   string
	DefaultContainer    string
	DefaultFormatPreset string

	DuckingLevel      float64
	NormalizationLUFS float64

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	ArchiveBucket  string

	VotEndpoint string // base URL of the translation service capability
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	required := []string{
		"MARIADB_DSN", "MARIADB_MAX_OPEN_CONN", "MARIADB_MAX_IDLE_CONNS",
		"MARIADB_CONN_MAX_LIFETIME", "SERVER_PORT", "QUEUE_URL", "MEDIA_ROOT",
		"JWT_SECRET",
	}
	for _, key := range required {
		if !viper.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	appEnv := strings.ToLower(viper.GetString("APP_ENV"))

	// spec.md §9 Open Question: admin bootstrap must come from env vars and
	// fail startup in production mode when either is absent; non-production
	// modes may leave them unset (no admin user is created).
	adminUsername := viper.GetString("ADMIN_USERNAME")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	if appEnv == "production" && (adminUsername == "" || adminPassword == "") {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are both required when APP_ENV=production")
	}
	if adminUsername == "" || adminPassword == "" {
		log.Println("Warning: ADMIN_USERNAME/ADMIN_PASSWORD not set — no admin user will be bootstrapped")
	}

	jwtExpiresIn := viper.GetDuration("JWT_EXPIRES_IN")
	if jwtExpiresIn == 0 {
		jwtExpiresIn = 24 * time.Hour
	}

	return &Settings{
		AppEnv: appEnv,

		ServerPort:    viper.GetInt("SERVER_PORT"),
		WebsocketPort: getIntDefault("WEBSOCKET_PORT", 8081),

		MariaDBDSN:      viper.GetString("MARIADB_DSN"),
		MaxOpenConns:    viper.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    viper.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(viper.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,

		QueueURL: viper.GetString("QUEUE_URL"),
		RedisDB:  viper.GetInt("REDIS_DB"),

		MediaRoot:      viper.GetString("MEDIA_ROOT"),
		MinFreeSpaceGb: getFloatDefault("MIN_FREE_SPACE_GB", 5),

		JWTSecret:     viper.GetString("JWT_SECRET"),
		JWTExpiresIn:  jwtExpiresIn,
		AdminUsername: adminUsername,
		AdminPassword: adminPassword,

		DownloadConcurrency: getIntDefault("DOWNLOAD_CONCURRENCY", 1),
		DubbingConcurrency:  getIntDefault("DUBBING_CONCURRENCY", 3),
		MuxingConcurrency:   getIntDefault("MUXING_CONCURRENCY", 2),

		DefaultTargetLang:   getStringDefault("DEFAULT_TARGET_LANG", "ru"),
		DefaultContainer:    getStringDefault("DEFAULT_CONTAINER", "mkv"),
		DefaultFormatPreset: getStringDefault("DEFAULT_FORMAT_PRESET", "bestvideo+bestaudio"),

		DuckingLevel:      getFloatDefault("DUCKING_LEVEL", 0.2),
		NormalizationLUFS: getFloatDefault("NORMALIZATION_LUFS", -14),

		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		ArchiveBucket:  getStringDefault("ARCHIVE_BUCKET", "vdm-archive"),

		VotEndpoint: getStringDefault("VOT_ENDPOINT", "http://localhost:9876"),
	}, nil
}

func getIntDefault(key string, def int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return def
}

func getFloatDefault(key string, def float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return def
}

func getStringDefault(key string, def string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return def
}
