package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug        bool
	TestMode     bool
	Env          string
	AppName      string
	Build        string
	Timezone     string
	RollbarToken string
	WorkDir      string

	Server struct {
		Host            string
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	API struct {
		BaseURL       string
		Timeout       time.Duration
		SessionCookie string // sent as-is in the Cookie header of every API request
	}

	Cache struct {
		TTL           time.Duration
		CourseRefresh string // cron spec
	}

	Quiz struct {
		AutoSubmit    bool
		IdleTimeout   time.Duration
		SweepSchedule string // cron spec
	}
}

// NewConfig reads the configuration of the current ENV (DEV by default) from the process environment,
// optionally seeded by `config/.env.<env>` found under the project root.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Canvas")
	v.SetDefault("build", "dev")
	v.SetDefault("timezone", "Local")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("api.baseURL", "http://localhost:8000")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.sessionCookie", "")
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("cache.courseRefresh", "@every 5m")
	v.SetDefault("quiz.autoSubmit", true)
	v.SetDefault("quiz.idleTimeout", 2*time.Hour)
	v.SetDefault("quiz.sweepSchedule", "@every 10m")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Timezone:     v.GetString("timezone"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
	}
	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.DisableReqLogs = v.GetBool("server.disableReqLogs")
	conf.API.BaseURL = strings.TrimRight(v.GetString("api.baseURL"), "/")
	conf.API.Timeout = v.GetDuration("api.timeout")
	conf.API.SessionCookie = v.GetString("api.sessionCookie")
	conf.Cache.TTL = v.GetDuration("cache.ttl")
	conf.Cache.CourseRefresh = v.GetString("cache.courseRefresh")
	conf.Quiz.AutoSubmit = v.GetBool("quiz.autoSubmit")
	conf.Quiz.IdleTimeout = v.GetDuration("quiz.idleTimeout")
	conf.Quiz.SweepSchedule = v.GetString("quiz.sweepSchedule")
	return conf
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
