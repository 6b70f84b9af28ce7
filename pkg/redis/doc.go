// Package redis connects the service to Redis with github.com/redis/go-redis/v9.
//
// Connect parses a redis:// URL and pings until the server answers or the
// retry budget runs out. The returned client backs the enrollment session
// store and the shared rate limiter.
package redis
