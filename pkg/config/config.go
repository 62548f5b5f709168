package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	ServerAddr  string `json:"serverAddr"`  // The address the API endpoint binds to.
	MetricsAddr string `json:"metricsAddr"` // The address the metric endpoint binds to.

	Auth struct {
		// Shared secret for verifying bearer tokens minted by the external
		// identity provider. Token issuance never happens here.
		TokenSecret string `json:"tokenSecret"`
	} `json:"auth"`

	Postgres struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		DBName   string `json:"dbname"`
		User     string `json:"user"`
		Password string `json:"password"`
		SSLMode  string `json:"sslmode"`
		TimeZone string `json:"TimeZone"`
		// Optional read replica; reads are routed there when set.
		ReplicaHost string `json:"replicaHost"`
	} `json:"postgres"`

	// Clerk Settings for the external identity provider. Only the user
	// directory lookup (mention resolution) is consumed.
	Clerk struct {
		APIURL    string `json:"apiURL"`
		SecretKey string `json:"secretKey"`
	} `json:"clerk"`

	// Retention defaults, used to seed the cron job config on first boot.
	Retention struct {
		Spec             string `json:"spec"`             // cron spec, e.g. "0 3 * * *"
		VisitDays        int    `json:"visitDays"`        // prune visits older than N days
		NotificationDays int    `json:"notificationDays"` // prune read notifications older than N days
	} `json:"retention"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the configuration file. In debug mode it reads a local
// debug-config.yaml (path overridable via TRACKER_DEBUG_CONFIG_PATH);
// otherwise it reads the config.yaml mounted from the ConfigMap.
func initConfig() *Config {
	config := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("TRACKER_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("TRACKER_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	klog.Info("config path: ", configPath)

	if err := readConfig(configPath, config); err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	return config
}

func readConfig(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, into)
}
