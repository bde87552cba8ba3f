package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string

		// SecretKey is shared with the identity provider; session tokens
		// are verified against it.
		SecretKey string

		FrontendBaseURL   string
		DiscordInviteURL  string
		SchoolEmailDomain string

		DefaultFromName string
		DefaultFromAddr string
		SendgridApiKey  string
		RollbarToken    string

		VerifyEmailTimeoutDelta  time.Duration
		VerifyEmailResendTimeout time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig

		WorkDir string
	}

	ServerConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (sc ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dc.Host, dc.Port)
}

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "BTHS Repair the World")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "+8&0ns4bf)y4!=i9%3s67mqb(1-1y6zv3#ky1r+60sr1$0+7a8")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("discordInviteURL", "")
	v.SetDefault("schoolEmailDomain", "nycstudents.net")
	v.SetDefault("defaultFromName", "BTHS Repair the World")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("verifyEmailTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("verifyEmailResendTimeout", 25*time.Second)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "repair")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Env:                      env,
		Debug:                    v.GetBool("debug"),
		TestMode:                 v.GetBool("testMode"),
		AppName:                  v.GetString("appName"),
		Build:                    v.GetString("build"),
		SecretKey:                v.GetString("secretKey"),
		FrontendBaseURL:          v.GetString("frontendBaseURL"),
		DiscordInviteURL:         v.GetString("discordInviteURL"),
		SchoolEmailDomain:        v.GetString("schoolEmailDomain"),
		DefaultFromName:          v.GetString("defaultFromName"),
		DefaultFromAddr:          v.GetString("defaultFromAddr"),
		SendgridApiKey:           v.GetString("sendgridApiKey"),
		RollbarToken:             v.GetString("rollbarToken"),
		VerifyEmailTimeoutDelta:  v.GetDuration("verifyEmailTimeoutDelta"),
		VerifyEmailResendTimeout: v.GetDuration("verifyEmailResendTimeout"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Port:               v.GetInt("server.port"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		WorkDir: Getwd(),
	}
}
