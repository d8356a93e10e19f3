package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

type Config struct {
	Host        string `env:"DB_HOST,required"`
	User        string `env:"DB_USER,required"`
	Password    string `env:"DB_PASSWORD,required"`
	Name        string `env:"DB_NAME,required"`
	Port        int    `env:"DB_PORT,required" validate:"min=1,max=65535"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE,default=false"`
	MaxConns    int32  `env:"DB_MAX_CONNS,default=4" validate:"min=1"`
}

func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable&pool_max_conns=%d",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		c.Name,
		c.MaxConns,
	)
}
