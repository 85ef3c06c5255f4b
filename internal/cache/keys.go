package cache

import "fmt"

func BatchKey(batchHash string) string {
	return fmt.Sprintf("gen:batch:%s", batchHash)
}

func RateLimitKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:%s", clientIP)
}
