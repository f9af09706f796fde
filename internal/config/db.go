package config

// DB holds the database configuration settings.
type DB struct {
	Engine   string // gorm engine: "mysql" or "postgres"
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}
