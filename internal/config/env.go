package config

import (
	"github.com/JaimeStill/pdf-editor/internal/editor"
	"github.com/JaimeStill/pdf-editor/internal/toolkit"
	"github.com/JaimeStill/pdf-editor/pkg/database"
	"github.com/JaimeStill/pdf-editor/pkg/logging"
	"github.com/JaimeStill/pdf-editor/pkg/middleware"
	"github.com/JaimeStill/pdf-editor/pkg/openapi"
	"github.com/JaimeStill/pdf-editor/pkg/storage"
)

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
	SSLMode:         "DATABASE_SSL_MODE",
}

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
	Source: "LOGGING_SOURCE",
}

var storageEnv = &storage.Env{
	BasePath:      "STORAGE_BASE_PATH",
	MaxUploadSize: "STORAGE_MAX_UPLOAD_SIZE",
}

var toolkitEnv = &toolkit.Env{
	Binary:          "PDFTK_BINARY_PATH",
	Timeout:         "PDFTK_TIMEOUT",
	Flatten:         "PDFTK_FLATTEN",
	NeedAppearances: "PDFTK_NEED_APPEARANCES",
}

var sessionsEnv = &editor.Env{
	Store:        "SESSIONS_STORE",
	TTL:          "SESSIONS_TTL",
	ReapSchedule: "SESSIONS_REAP_SCHEDULE",
	BadgerPath:   "SESSIONS_BADGER_PATH",
	BatchEdits:   "SESSIONS_BATCH_EDITS",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "API_CORS_ENABLED",
	Origins:          "API_CORS_ORIGINS",
	AllowedMethods:   "API_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "API_CORS_ALLOWED_HEADERS",
	AllowCredentials: "API_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "API_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "API_OPENAPI_TITLE",
	Description: "API_OPENAPI_DESCRIPTION",
}
