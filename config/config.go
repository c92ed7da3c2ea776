package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Capture   CaptureConfig   `mapstructure:"capture"`
	Cutout    CutoutConfig    `mapstructure:"cutout"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Garments  []GarmentConfig `mapstructure:"garments"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Google    GoogleConfig    `mapstructure:"google"`
}

// SessionConfig 超过 IdleTimeout 未访问的编辑会话会被关闭
type SessionConfig struct {
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	// LocalSize Redis 不可用时进程内缓存的条目数
	LocalSize int `mapstructure:"local_size"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	// MaxPixels 解码前按文件头尺寸检查的像素上限，同时用于裁剪和合成的图片来源
	MaxPixels int `mapstructure:"max_pixels"`
}

// CaptureConfig 合成渲染相关配置
type CaptureConfig struct {
	AssetDir      string        `mapstructure:"asset_dir"`
	MaxParallel   int           `mapstructure:"max_parallel"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	MaxFetchBytes int64         `mapstructure:"max_fetch_bytes"`
}

type CutoutConfig struct {
	Iterations    int `mapstructure:"iterations"`
	BorderSize    int `mapstructure:"border_size"`
	MaxConcurrent int `mapstructure:"max_concurrent"`
	QueueTimeout  int `mapstructure:"queue_timeout"`
	MaxDimension  int `mapstructure:"max_dimension"`
	MaxPixels     int `mapstructure:"max_pixels"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LogConfig release 模式下的滚动日志文件
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// GarmentConfig 服装款式，Front/Back 为素材路径
type GarmentConfig struct {
	Type  string `mapstructure:"type"`
	Color string `mapstructure:"color"`
	Front string `mapstructure:"front"`
	Back  string `mapstructure:"back"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	ChatModel  string `mapstructure:"chat_model"`
	ImageModel string `mapstructure:"image_model"`
}

type GoogleConfig struct {
	APIKey                string `mapstructure:"api_key"`
	CX                    string `mapstructure:"cx"`
	ProjectID             string `mapstructure:"project_id"`
	PrivateKeyID          string `mapstructure:"private_key_id"`
	PrivateKey            string `mapstructure:"private_key"`
	ClientEmail           string `mapstructure:"client_email"`
	ClientID              string `mapstructure:"client_id"`
	DriveFolderID         string `mapstructure:"drive_folder_id"`
	DriveOverlaysFolderID string `mapstructure:"drive_overlays_folder_id"`
	// 测试时可指向本地服务
	SearchEndpoint string `mapstructure:"search_endpoint"`
	DriveEndpoint  string `mapstructure:"drive_endpoint"`
	TokenURL       string `mapstructure:"token_url"`
}

// 环境变量中的密钥
var envBindings = map[string]string{
	"openai.api_key":                  "OPENAI_API_KEY",
	"google.api_key":                  "GOOGLE_API_KEY",
	"google.cx":                       "GOOGLE_CX",
	"google.project_id":               "GOOGLE_PROJECT_ID",
	"google.private_key_id":           "GOOGLE_PRIVATE_KEY_ID",
	"google.private_key":              "GOOGLE_PRIVATE_KEY",
	"google.client_email":             "GOOGLE_CLIENT_EMAIL",
	"google.client_id":                "GOOGLE_CLIENT_ID",
	"google.drive_folder_id":          "GOOGLE_DRIVE_FOLDER_ID",
	"google.drive_overlays_folder_id": "GOOGLE_DRIVE_OVERLAYS_FOLDER_ID",
	"redis.addr":                      "REDIS_ADDR",
	"redis.password":                  "REDIS_PASSWORD",
	"server.port":                     "PORT",
	"server.mode":                     "GIN_MODE",
}

// Load 从 YAML 文件和环境变量加载配置，文件不存在时只使用默认值和环境变量
func Load(configPath string) (*Config, error) {
	// 开发环境下从 .env 读取密钥，已存在的环境变量优先
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// 设置默认值
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Garments) == 0 {
		cfg.Garments = DefaultGarments()
	}
	cfg.Google.PrivateKey = strings.ReplaceAll(cfg.Google.PrivateKey, `\n`, "\n")

	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() (*Config, error) {
	return Load("config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("redis.local_size", 256)

	v.SetDefault("session.idle_timeout", 2*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp"})
	v.SetDefault("upload.max_pixels", 40_000_000)

	v.SetDefault("capture.asset_dir", "./static")
	v.SetDefault("capture.max_parallel", 4)
	v.SetDefault("capture.fetch_timeout", 15*time.Second)
	v.SetDefault("capture.max_fetch_bytes", 20*1024*1024)

	v.SetDefault("cutout.iterations", 5)
	v.SetDefault("cutout.border_size", 10)
	v.SetDefault("cutout.max_concurrent", 3)
	v.SetDefault("cutout.queue_timeout", 30)
	v.SetDefault("cutout.max_dimension", 1200)
	v.SetDefault("cutout.max_pixels", 40_000_000)

	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("log.file", "./logs/dryp-preview.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)

	v.SetDefault("openai.chat_model", "gpt-4")
	v.SetDefault("openai.image_model", "dall-e-3")
}

// DefaultGarments 内置的服装素材
func DefaultGarments() []GarmentConfig {
	return []GarmentConfig{
		{Type: "tshirt", Color: "white", Front: "images/white-tshirt.png", Back: "images/white-tshirt-back.png"},
		{Type: "tshirt", Color: "black", Front: "images/black-tshirt.png", Back: "images/black-tshirt-back.png"},
		{Type: "hoodie", Color: "white", Front: "images/white-hoodie.png", Back: "images/white-hoodie-back.png"},
		{Type: "hoodie", Color: "black", Front: "images/black-hoodie.png", Back: "images/black-hoodie-back.png"},
	}
}

// ValidateSearch 检查图片搜索所需的密钥
func (g GoogleConfig) ValidateSearch() error {
	return requireAll(map[string]string{
		"GOOGLE_API_KEY": g.APIKey,
		"GOOGLE_CX":      g.CX,
	})
}

// ValidateDrive 检查云盘服务账号配置
func (g GoogleConfig) ValidateDrive() error {
	return requireAll(map[string]string{
		"GOOGLE_PRIVATE_KEY":              g.PrivateKey,
		"GOOGLE_CLIENT_EMAIL":             g.ClientEmail,
		"GOOGLE_DRIVE_FOLDER_ID":          g.DriveFolderID,
		"GOOGLE_DRIVE_OVERLAYS_FOLDER_ID": g.DriveOverlaysFolderID,
	})
}

func (o OpenAIConfig) Validate() error {
	return requireAll(map[string]string{"OPENAI_API_KEY": o.APIKey})
}

func requireAll(values map[string]string) error {
	var missing []string
	for name, val := range values {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
}
