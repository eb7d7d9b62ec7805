package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		Env                string   `mapstructure:"env"`
		ExposedHost        string   `mapstructure:"exposed_host"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Admin struct {
		SeedAlways bool   `mapstructure:"seed_always"`
		Email      string `mapstructure:"email"`
		Password   string `mapstructure:"password"`
	} `mapstructure:"admin"`

	Google struct {
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURL  string `mapstructure:"redirect_url"`
		AdminEmail   string `mapstructure:"admin_email"`
	} `mapstructure:"google"`

	Cloudinary struct {
		URL            string `mapstructure:"url"`
		RepairedFolder string `mapstructure:"repaired_folder"`
		UploadFolder   string `mapstructure:"upload_folder"`
		MaxDimension   int    `mapstructure:"max_dimension"`
		ThumbDimension int    `mapstructure:"thumb_dimension"`
		Quality        int    `mapstructure:"quality"`
		ThumbQuality   int    `mapstructure:"thumb_quality"`
	} `mapstructure:"cloudinary"`

	Uploads struct {
		Dir         string `mapstructure:"dir"`
		MaxFileSize int64  `mapstructure:"max_file_size"`
	} `mapstructure:"uploads"`

	S3 struct {
		Enabled   bool   `mapstructure:"enabled"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"s3"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.exposed_host", "localhost:5000")
	v.SetDefault("jwt.expiration_hours", 4)
	v.SetDefault("jwt.issuer", "jollybaba-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "jollybaba_db")
	v.SetDefault("admin.email", "admin@jollybaba.local")
	v.SetDefault("admin.password", "admin1234")
	v.SetDefault("cloudinary.repaired_folder", "Jollybaba_Repaired")
	v.SetDefault("cloudinary.upload_folder", "Jollybaba_Repair")
	v.SetDefault("cloudinary.max_dimension", 1600)
	v.SetDefault("cloudinary.thumb_dimension", 480)
	v.SetDefault("cloudinary.quality", 75)
	v.SetDefault("cloudinary.thumb_quality", 70)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_file_size", 10<<20)
	v.SetDefault("s3.region", "auto")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Server.Env = env
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if host := os.Getenv("EXPOSED_HOST"); host != "" {
		cfg.Server.ExposedHost = host
	}

	// Override JWT secret from environment if not set
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not set in config or environment")
		}
	}

	if os.Getenv("SEED_ADMIN_ALWAYS") == "true" {
		cfg.Admin.SeedAlways = true
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		cfg.Admin.Email = email
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Admin.Password = pass
	}

	// Google OAuth from environment
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		cfg.Google.ClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		cfg.Google.ClientSecret = secret
	}
	if url := os.Getenv("GOOGLE_REDIRECT_URL"); url != "" {
		cfg.Google.RedirectURL = url
	}
	if email := os.Getenv("GOOGLE_ADMIN_EMAIL"); email != "" {
		cfg.Google.AdminEmail = email
	}

	// Cloudinary from environment (single URL form)
	if url := os.Getenv("CLOUDINARY_URL"); url != "" {
		cfg.Cloudinary.URL = url
	}
	if folder := os.Getenv("CLOUDINARY_REPAIRED_FOLDER"); folder != "" {
		cfg.Cloudinary.RepairedFolder = folder
	}
	if folder := os.Getenv("CLOUDINARY_UPLOAD_FOLDER"); folder != "" {
		cfg.Cloudinary.UploadFolder = folder
	}

	// S3 mirror from environment
	if os.Getenv("S3_MIRROR_ENABLED") == "true" {
		cfg.S3.Enabled = true
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3.Endpoint = endpoint
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.S3.Bucket = bucket
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		cfg.S3.AccessKey = key
	}
	if key := os.Getenv("S3_SECRET_KEY"); key != "" {
		cfg.S3.SecretKey = key
	}

	return &cfg
}
