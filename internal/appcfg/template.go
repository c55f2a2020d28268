package appcfg

import (
	"fmt"
	"strings"
	"text/template"
)

type configParams struct {
	Version      string
	AppName      string
	AppIcon      string
	Favicon      string
	SecretKey    string
	HomeDir      string
	BrandingDir  string
	PortEnvVar   string
	StaticPrefix string
}

var configTemplate = template.Must(template.New("superset_config").Parse(`# PASreporter Superset Configuration
# Generated automatically - edit with care
# Version: {{.Version}}

import os
from pathlib import Path

# =============================================================================
# Application Identity
# =============================================================================
APP_NAME = "{{.AppName}}"
APP_ICON = "{{.AppIcon}}"
FAVICONS = [
    {"href": "{{.Favicon}}", "sizes": "16x16", "type": "image/png"},
]

# =============================================================================
# Flask Configuration
# =============================================================================
SECRET_KEY = "{{.SecretKey}}"
FLASK_USE_RELOAD = True

# =============================================================================
# Database Configuration (SQLite - no Postgres required)
# =============================================================================
SQLALCHEMY_DATABASE_URI = "sqlite:///{{.HomeDir}}/superset.db?check_same_thread=false"

# =============================================================================
# Feature Flags
# =============================================================================
FEATURE_FLAGS = {
    "ENABLE_TEMPLATE_PROCESSING": True,
    "DASHBOARD_NATIVE_FILTERS": True,
    "DASHBOARD_CROSS_FILTERS": True,
    "DASHBOARD_NATIVE_FILTERS_SET": True,
    "EMBEDDED_SUPERSET": True,
    # Disable features requiring Celery/Redis
    "ALERT_REPORTS": False,
    "SCHEDULED_QUERIES": False,
}

# =============================================================================
# Cache Configuration (Filesystem - no Redis required)
# =============================================================================
CACHE_CONFIG = {
    "CACHE_TYPE": "FileSystemCache",
    "CACHE_DIR": "{{.HomeDir}}/cache",
    "CACHE_DEFAULT_TIMEOUT": 300,
    "CACHE_THRESHOLD": 100,
}

DATA_CACHE_CONFIG = {
    "CACHE_TYPE": "FileSystemCache",
    "CACHE_DIR": "{{.HomeDir}}/data_cache",
    "CACHE_DEFAULT_TIMEOUT": 86400,
    "CACHE_THRESHOLD": 100,
}

FILTER_STATE_CACHE_CONFIG = {
    "CACHE_TYPE": "FileSystemCache",
    "CACHE_DIR": "{{.HomeDir}}/filter_cache",
    "CACHE_DEFAULT_TIMEOUT": 86400,
    "CACHE_THRESHOLD": 100,
}

EXPLORE_FORM_DATA_CACHE_CONFIG = {
    "CACHE_TYPE": "FileSystemCache",
    "CACHE_DIR": "{{.HomeDir}}/explore_cache",
    "CACHE_DEFAULT_TIMEOUT": 86400,
    "CACHE_THRESHOLD": 100,
}

# =============================================================================
# Celery Configuration (Disabled - no Redis/broker required)
# =============================================================================
class CeleryConfig:
    broker_url = None
    result_backend = None

CELERY_CONFIG = CeleryConfig

# Disable async queries (requires Celery)
SQLLAB_ASYNC_TIME_LIMIT_SEC = 0

# =============================================================================
# Security Configuration
# =============================================================================
WTF_CSRF_ENABLED = True
SESSION_COOKIE_HTTPONLY = True
SESSION_COOKIE_SECURE = False  # Set True if using HTTPS
TALISMAN_ENABLED = False  # Disable for local development

# =============================================================================
# SQL Lab Configuration
# =============================================================================
SQLLAB_TIMEOUT = 300
SQL_MAX_ROW = 100000
DISPLAY_MAX_ROW = 10000

# =============================================================================
# Upload Configuration
# =============================================================================
UPLOAD_FOLDER = "{{.HomeDir}}/uploads"
ALLOWED_EXTENSIONS = {"csv", "xlsx", "xls", "json", "parquet"}

# =============================================================================
# Logging Configuration
# =============================================================================
LOG_LEVEL = "INFO"
ENABLE_TIME_ROTATE = True
TIME_ROTATE_LOG_LEVEL = "INFO"
FILENAME = "{{.HomeDir}}/logs/superset.log"

# =============================================================================
# Branding Static Assets
# =============================================================================
def FLASK_APP_MUTATOR(app):
    """Serve the branding static assets under {{.StaticPrefix}}."""
    import os
    branding_dir = "{{.BrandingDir}}"
    if os.path.isdir(branding_dir):
        from flask import send_from_directory
        @app.route("{{.StaticPrefix}}/<path:filename>")
        def pasreporter_static(filename):
            return send_from_directory(branding_dir, filename)

# =============================================================================
# DuckDB Configuration
# =============================================================================
# DuckDB is supported via duckdb-engine
# Connection string format: duckdb:///path/to/file.duckdb
# Or in-memory: duckdb:///:memory:

PREFERRED_DATABASES = [
    "DuckDB",
    "SQLite",
    "PostgreSQL",
    "MySQL",
]

# =============================================================================
# Additional Settings
# =============================================================================
SUPERSET_WEBSERVER_PORT = int(os.environ.get("{{.PortEnvVar}}", 8088))
SUPERSET_WEBSERVER_TIMEOUT = 60

# Enable data upload
CSV_UPLOAD = True
EXCEL_UPLOAD = True

# Prevent loading examples (faster startup)
SUPERSET_LOAD_EXAMPLES = False
`))

func renderConfig(params configParams) (string, error) {
	var sb strings.Builder
	if err := configTemplate.Execute(&sb, params); err != nil {
		return "", fmt.Errorf("rendering config: %w", err)
	}
	return sb.String(), nil
}
