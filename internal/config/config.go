package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "KOTLENS_"

type Application struct {
	Server   Server   `koanf:"server"`
	Frontend Frontend `koanf:"frontend"`
	Kot      Kot      `koanf:"kot"`
	Auth     Auth     `koanf:"auth"`
	Mail     Mail     `koanf:"mail"`
	Schedule Schedule `koanf:"schedule"`
	Database Database `koanf:"db"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Kot struct {
	BaseURL string `koanf:"baseurl"`
	APIKey  string `koanf:"apikey"`
	// Timeout of a single API call, in seconds.
	Timeout int `koanf:"timeout"`
}

func (k Kot) TimeoutDuration() time.Duration {
	return time.Duration(k.Timeout) * time.Second
}

type Auth struct {
	Password string `koanf:"password"`
	// PasswordHash is a bcrypt hash and takes precedence over Password.
	PasswordHash  string `koanf:"passwordhash"`
	SessionSecret string `koanf:"sessionsecret"`
	// SessionMaxAge in hours.
	SessionMaxAge int  `koanf:"sessionmaxage"`
	SecureCookie  bool `koanf:"securecookie"`
}

type Mail struct {
	Transport string `koanf:"transport"`
	From      string `koanf:"from"`
	// To is a comma separated recipient list.
	To    string `koanf:"to"`
	SMTP  SMTP   `koanf:"smtp"`
	Gmail Gmail  `koanf:"gmail"`
}

// Recipients splits To, dropping empty entries.
func (m Mail) Recipients() []string {
	recipients := make([]string, 0)
	for _, r := range strings.Split(m.To, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}

type SMTP struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
}

type Gmail struct {
	CredentialsFile string `koanf:"credentialsfile"`
	TokenFile       string `koanf:"tokenfile"`
}

type Schedule struct {
	Enabled  bool   `koanf:"enabled"`
	Cron     string `koanf:"cron"`
	Timezone string `koanf:"timezone"`
}

type Database struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	User    string `koanf:"user"`
	Pass    string `koanf:"pass"`
	Name    string `koanf:"name"`
	Schema  string `koanf:"schema"`
}

func defaults() Application {
	return Application{
		Server: Server{Addr: ":3001"},
		Frontend: Frontend{
			Enabled: true,
			Dir:     "frontend",
		},
		Kot: Kot{
			BaseURL: "https://api.kingtime.jp/v1.0",
			Timeout: 30,
		},
		Auth: Auth{
			Password:      "admin",
			SessionSecret: "kotlens-session-secret-change-me",
			SessionMaxAge: 8,
		},
		Mail: Mail{
			Transport: "smtp",
			From:      "KOT Analysis <noreply@example.com>",
			SMTP: SMTP{
				Host: "smtp.gmail.com",
				Port: 587,
			},
		},
		Schedule: Schedule{
			Enabled:  true,
			Cron:     "0 9 * * 5",
			Timezone: "Asia/Tokyo",
		},
		Database: Database{
			Enabled: false,
			Host:    "localhost",
			Port:    5432,
			User:    "kotlens",
			Pass:    "",
			Name:    "kotlens",
			Schema:  "kotlens",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
