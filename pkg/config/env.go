package config

const (
	EnvPrefix = "petalpost"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PETALPOST_DB_DSN"
	EnvDBHost = "PETALPOST_DB_HOST"
	EnvDBUser = "PETALPOST_DB_USER"
	EnvDBName = "PETALPOST_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
