package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Storage  StorageConfig  `yaml:"storage"`
	Crawler  CrawlerConfig  `yaml:"crawler"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	Mode      string `yaml:"mode"`
	RateLimit int    `yaml:"rate_limit"` // 每 IP 每分钟请求数
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type StorageConfig struct {
	UploadPath     string `yaml:"upload_path"`      // 对象存储根目录
	BaseURL        string `yaml:"base_url"`         // 对外访问地址前缀
	MaxPictureSize int64  `yaml:"max_picture_size"` // 单张图片大小上限
}

type CrawlerConfig struct {
	Endpoint       string `yaml:"endpoint"`        // 图片搜索源地址
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 抓取超时
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	// 首先尝试从 YAML 文件加载
	if data, err := os.ReadFile("configs/config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// 然后从环境变量覆盖
	cfg.overrideFromEnv()
	cfg.setDefaults()

	return cfg, nil
}

func (c *Config) overrideFromEnv() {
	// Database
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Database.Port = port
		}
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.DBName = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("GIN_MODE"); val != "" {
		c.Server.Mode = val
	}
	if val := os.Getenv("SERVER_RATE_LIMIT"); val != "" {
		if limit, err := strconv.Atoi(val); err == nil {
			c.Server.RateLimit = limit
		}
	}

	// Storage
	if val := os.Getenv("UPLOAD_PATH"); val != "" {
		c.Storage.UploadPath = val
	}
	if val := os.Getenv("STORAGE_BASE_URL"); val != "" {
		c.Storage.BaseURL = val
	}
	if val := os.Getenv("MAX_PICTURE_SIZE"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Storage.MaxPictureSize = size
		}
	}

	// Crawler
	if val := os.Getenv("CRAWLER_ENDPOINT"); val != "" {
		c.Crawler.Endpoint = val
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 60
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.ExpireHours == 0 {
		c.JWT.ExpireHours = 24
	}

	if c.Storage.UploadPath == "" {
		c.Storage.UploadPath = "./uploads"
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = "http://localhost:8080/uploads"
	}
	if c.Storage.MaxPictureSize == 0 {
		c.Storage.MaxPictureSize = 2 * 1024 * 1024 // 2MB
	}

	if c.Crawler.Endpoint == "" {
		c.Crawler.Endpoint = "https://cn.bing.com/images/async"
	}
	if c.Crawler.TimeoutSeconds == 0 {
		c.Crawler.TimeoutSeconds = 15
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "./logs/app.log"
	}
}

func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}
