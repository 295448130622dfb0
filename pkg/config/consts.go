package config

// EnvPrefix namespaces every environment variable the platform reads.
const EnvPrefix = "TOURCLEAN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "TOURCLEAN_DB_DSN"
	EnvDBHost = "TOURCLEAN_DB_HOST"
	EnvDBUser = "TOURCLEAN_DB_USER"
	EnvDBName = "TOURCLEAN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
