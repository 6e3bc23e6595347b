package environment_variables

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

type EnvironmentVariable struct {
	API_PORT           int
	ALLOWED_CORS_HOSTS []string

	DB_POSTGRESQL_WRITE_DSN string
	DB_POSTGRESQL_READ1_DSN string

	CACHE_TYPE     string
	CACHE_URL      string
	CACHE_PASSWORD string
	CACHE_DB       string
	REDIS_URL      string
	REDIS_PASSWORD string
	REDIS_DB       string

	APIKEY_SECRET string
	JWT_SECRET    string
	ADMIN_API_KEY string

	ADS_API_BASE_URL       string
	ADS_APP_ID             string
	ADS_APP_SECRET         string
	ADS_OAUTH_REDIRECT_URL string

	UPSTREAM_HTTP_TIMEOUT_SECONDS int

	IP_RATE_LIMIT                int
	IP_RATE_WINDOW_SECONDS       int
	IDENTITY_RATE_LIMIT          int
	IDENTITY_RATE_WINDOW_SECONDS int

	RESERVOIR_CAPACITY        int
	RESERVOIR_MAX_CONCURRENCY int
	RESERVOIR_MIN_SPACING_MS  int
}

func (ev *EnvironmentVariable) LoadFromEnv() {
	v := reflect.ValueOf(ev).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		envKey := field.Name
		envValue := os.Getenv(envKey)
		if envValue == "" {
			fmt.Printf("Missing SYSENV: %s\n", envKey)
			continue
		}
		switch v.Field(i).Kind() {
		case reflect.String:
			v.Field(i).SetString(envValue)
		case reflect.Int:
			if n, err := strconv.Atoi(envValue); err == nil {
				v.Field(i).SetInt(int64(n))
			}
		case reflect.Slice:
			if field.Type.Elem().Kind() == reflect.String {
				parts := strings.Split(envValue, ",")
				for j := range parts {
					parts[j] = strings.TrimSpace(parts[j])
				}
				v.Field(i).Set(reflect.ValueOf(parts))
			}
		}
	}
}

// Singleton
var EnvironmentVariables = EnvironmentVariable{}
