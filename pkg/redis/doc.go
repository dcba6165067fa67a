// Package redis connects to Redis with go-redis and exposes a health probe.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// The hub uses the client for cross-node notification fan-out through
// notifications.RedisDeliverer.
//
// Errors returned by Connect wrap the go-redis cause with errors.Join, so
// both the sentinel and the cause are reachable through errors.Is.
package redis
