package main

import (
	"github.com/modernmen/notifier/modules/notifications"
	"github.com/modernmen/notifier/pkg/email"
	"github.com/modernmen/notifier/pkg/httpserver"
	"github.com/modernmen/notifier/pkg/logger"
	notify "github.com/modernmen/notifier/pkg/notifications"
	"github.com/modernmen/notifier/pkg/push"
	"github.com/modernmen/notifier/pkg/redis"
	"github.com/modernmen/notifier/pkg/sms"
)

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

// Config aggregates every package config. Postgres settings are loaded
// separately because DATABASE_URL is only required with postgres storage.
type Config struct {
	Storage        string `env:"NOTIFY_STORAGE" envDefault:"postgres"`
	Brand          string `env:"NOTIFY_BRAND" envDefault:"Notifications"`
	ContactsPrefix string `env:"NOTIFY_CONTACTS_PREFIX" envDefault:"notify:contact"`
	StatsPrefix    string `env:"NOTIFY_STATS_PREFIX" envDefault:"notify:dispatch"`
	PrefsPrefix    string `env:"NOTIFY_PREFS_PREFIX" envDefault:"notify:prefs"`

	Log    logger.Config
	HTTP   httpserver.Config
	Notify notify.Config
	Stream notifications.Config
	Redis  redis.Config
	Mail   email.Config
	SMS    sms.Config
	Push   push.Config
}
