// Package redis connects the go-redis client used for push publishing and
// dispatch counters.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
