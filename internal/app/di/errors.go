package di

import "errors"

// ErrRedisRequired is returned when Redis is unavailable and APP_ENV is not development.
var ErrRedisRequired = errors.New("redis is required unless APP_ENV=development")
